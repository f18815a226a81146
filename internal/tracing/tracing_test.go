package tracing

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewNoneIsNoop(t *testing.T) {
	tr, err := New(context.Background(), Config{Exporter: ExporterNone})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, span := tr.StartCommand(context.Background(), "id", "workspace", "1", "Mod4-1")
	span.End(nil)
	if err := tr.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestNewRejectsUnknownExporter(t *testing.T) {
	if _, err := New(context.Background(), Config{Exporter: "jaeger"}); err == nil {
		t.Fatalf("expected error for unknown exporter")
	}
}

func TestStdoutExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(context.Background(), Config{Exporter: ExporterStdout, Output: &buf, Version: "test"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	_, span := tr.StartCommand(context.Background(), "job-1", "split", "vertical", "Mod4-v")
	span.End(errors.New("no focused window"))

	if err := tr.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"command.execute", "job-1", "no focused window"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected exported span to contain %q, got:\n%s", want, out)
		}
	}
}
