// Package tracing wires OpenTelemetry spans around command execution.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	// TracerName is the instrumentation scope for splitwm spans.
	TracerName = "github.com/1broseidon/splitwm"

	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// Config selects the span exporter.
type Config struct {
	Exporter    string
	ServiceName string
	Version     string
	// Output receives stdout spans; defaults to os.Stderr so it does not mix
	// with command output.
	Output io.Writer
}

// Tracer wraps an OpenTelemetry tracer and its provider.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// Noop returns a tracer that records nothing.
func Noop() *Tracer {
	return &Tracer{tracer: noop.NewTracerProvider().Tracer(TracerName)}
}

// New creates a tracer for cfg. An empty or "none" exporter yields Noop.
func New(ctx context.Context, cfg Config) (*Tracer, error) {
	switch cfg.Exporter {
	case "", ExporterNone:
		return Noop(), nil
	case ExporterStdout:
	default:
		return nil, fmt.Errorf("unsupported tracing exporter: %q", cfg.Exporter)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	exporter, err := stdouttrace.New(
		stdouttrace.WithPrettyPrint(),
		stdouttrace.WithWriter(out),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "splitwm"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(name),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	return &Tracer{
		tracer:   provider.Tracer(TracerName),
		provider: provider,
	}, nil
}

// Shutdown flushes pending spans.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// CommandSpan covers one command execution.
type CommandSpan struct {
	span trace.Span
}

// StartCommand starts a span for a dispatched command.
func (t *Tracer) StartCommand(ctx context.Context, jobID, kind, arg, chord string) (context.Context, *CommandSpan) {
	if t == nil {
		t = Noop()
	}
	ctx, span := t.tracer.Start(ctx, "command.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("command.job_id", jobID),
			attribute.String("command.kind", kind),
			attribute.String("command.arg", arg),
			attribute.String("command.chord", chord),
		),
	)
	return ctx, &CommandSpan{span: span}
}

// End ends the span, recording err when set.
func (s *CommandSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
