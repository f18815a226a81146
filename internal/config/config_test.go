package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/1broseidon/splitwm/internal/commands"
)

func writeConfig(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_ValidAndCompiles(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	bindings, rules, err := cfg.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(bindings) != len(cfg.Bindings) {
		t.Fatalf("expected %d bindings, got %d", len(cfg.Bindings), len(bindings))
	}
	if len(rules) != 0 {
		t.Fatalf("expected no default rules, got %d", len(rules))
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != "info" || len(res.Files) != 0 {
		t.Fatalf("expected defaults, got level %q files %v", res.Config.LogLevel, res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Dispatch.Workers != 4 || res.Config.ReconcileIntervalSeconds != DefaultReconcileInterval {
		t.Fatalf("unexpected defaults: %+v", res.Config)
	}
}

func TestLoadFromPath_FullConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, strings.Join([]string{
		"log_level: debug",
		"screen_padding:",
		"  top: 24",
		"  left: 4",
		"bindings:",
		"  - keys: Mod4-1",
		"    command: workspace",
		"    arg: \"1\"",
		"  - keys: Mod4-q",
		"    command: close",
		"mouse_bindings:",
		"  - buttons: Mod4-2",
		"    command: floating",
		"rules:",
		"  - class: ^Firefox$",
		"    action: move_to_workspace",
		"    workspace: web",
		"  - class: __focused__",
		"    title: Preferences",
		"    action: floating",
		"dispatch:",
		"  workers: 2",
		"launch:",
		"  delay_ms: 100",
		"reconcile_interval_seconds: 0",
		"tracing:",
		"  exporter: stdout",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug, got %q", cfg.LogLevel)
	}
	if p := cfg.Padding(); p.Top != 24 || p.Left != 4 || p.Bottom != 0 {
		t.Fatalf("unexpected padding %+v", p)
	}
	if cfg.Dispatch.Workers != 2 || cfg.Dispatch.QueueSize != 64 {
		t.Fatalf("expected partial dispatch override, got %+v", cfg.Dispatch)
	}
	if cfg.Launch.Attempts != 20 || cfg.Launch.DelayMS != 100 {
		t.Fatalf("expected partial launch override, got %+v", cfg.Launch)
	}
	if cfg.ReconcileIntervalSeconds != 0 || cfg.Tracing.Exporter != "stdout" {
		t.Fatalf("unexpected reconcile/tracing: %d %q", cfg.ReconcileIntervalSeconds, cfg.Tracing.Exporter)
	}

	bindings, rules, err := cfg.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(bindings) != 3 {
		t.Fatalf("expected configured bindings to replace defaults, got %d", len(bindings))
	}
	if bindings[0].Chord != "Mod4-1" || bindings[0].Command.Kind != commands.Workspace || bindings[0].Command.Arg != "1" {
		t.Fatalf("unexpected first binding %+v", bindings[0])
	}
	if !bindings[2].Mouse || bindings[2].Command.Kind != commands.Floating {
		t.Fatalf("expected mouse binding last, got %+v", bindings[2])
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[1].Action.String() != "floating" {
		t.Fatalf("expected rules in configured order, got %s", rules[1].Action)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorsCarrySource(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
	}{
		{name: "log level", data: "log_level: loud\n", path: "log_level"},
		{name: "unknown command", data: "bindings:\n  - keys: Mod4-x\n    command: teleport\n", path: "bindings.0.command"},
		{name: "missing arg", data: "bindings:\n  - keys: Mod4-x\n    command: workspace\n", path: "bindings.0.command"},
		{name: "duplicate chord", data: "bindings:\n  - keys: Mod4-x\n    command: close\n  - keys: Mod4-x\n    command: floating\n", path: "bindings.1.keys"},
		{name: "rule without pattern", data: "rules:\n  - action: floating\n", path: "rules.0"},
		{name: "rule bad action", data: "rules:\n  - class: x\n    action: explode\n", path: "rules.0.action"},
		{name: "rule bad pattern", data: "rules:\n  - class: \"(\"\n    action: floating\n", path: "rules.0"},
		{name: "workers", data: "dispatch:\n  workers: 0\n", path: "dispatch.workers"},
		{name: "padding", data: "screen_padding:\n  top: -1\n", path: "screen_padding.top"},
		{name: "exporter", data: "tracing:\n  exporter: jaeger\n", path: "tracing.exporter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			writeConfig(t, path, tt.data)

			_, err := LoadFromPath(path)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q (%v)", tt.path, verr.Path, err)
			}
			if verr.Source.Kind != SourceFile || verr.Source.Line == 0 {
				t.Fatalf("expected file source, got %+v", verr.Source)
			}
		})
	}
}

func TestLoadFromPath_IncludeMergesBindingsByChord(t *testing.T) {
	dir := t.TempDir()
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, filepath.Join(configD, "10-base.yaml"), strings.Join([]string{
		"log_level: warn",
		"bindings:",
		"  - keys: Mod4-1",
		"    command: workspace",
		"    arg: \"1\"",
		"  - keys: Mod4-Return",
		"    command: exec",
		"    arg: xterm",
		"rules:",
		"  - class: mpv",
		"    action: floating",
		"",
	}, "\n"))

	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, strings.Join([]string{
		"include:",
		"  - config.d",
		"log_level: error",
		"bindings:",
		"  - keys: Mod4-Return",
		"    command: exec",
		"    arg: alacritty",
		"rules:",
		"  - class: Gimp",
		"    action: floating",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.LogLevel != "error" {
		t.Fatalf("expected main file to override includes, got %q", cfg.LogLevel)
	}
	if len(cfg.Bindings) != 2 || cfg.Bindings[1].Arg != "alacritty" {
		t.Fatalf("expected Mod4-Return rebound in place, got %+v", cfg.Bindings)
	}
	if len(cfg.Rules) != 2 || cfg.Rules[0].Class != "mpv" || cfg.Rules[1].Class != "Gimp" {
		t.Fatalf("expected rules accumulated in load order, got %+v", cfg.Rules)
	}
	if len(res.Files) != 2 {
		t.Fatalf("expected 2 loaded files, got %v", res.Files)
	}

	// The main file's first rule is the second merged rule.
	_, src, err := Explain(res, "rules.1.class")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if filepath.Base(src.File) != "config.yaml" || src.Line != 9 {
		t.Fatalf("rules.1.class source = %+v, want config.yaml line 9", src)
	}
	_, src, err = Explain(res, "rules.0.class")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if filepath.Base(src.File) != "10-base.yaml" || src.Line != 10 {
		t.Fatalf("rules.0.class source = %+v, want 10-base.yaml line 10", src)
	}
}

func TestShiftIndex(t *testing.T) {
	tests := []struct {
		key    string
		offset int
		want   string
	}{
		{"rules.0.class", 2, "rules.2.class"},
		{"rules.1", 3, "rules.4"},
		{"rules", 3, "rules"},
		{"bindings.0.keys", 3, "bindings.0.keys"},
		{"rules.0.class", 0, "rules.0.class"},
	}
	for _, tt := range tests {
		if got := shiftIndex(tt.key, "rules.", tt.offset); got != tt.want {
			t.Fatalf("shiftIndex(%q, %d) = %q, want %q", tt.key, tt.offset, got, tt.want)
		}
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeConfig(t, a, "include: b.yaml\n")
	writeConfig(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "screen_padding:\n  top: 10\nrules:\n  - class: mpv\n    action: floating\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	value, src, err := Explain(res, "screen_padding.top")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != 10 || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("unexpected value %v source %+v", value, src)
	}

	value, src, err = Explain(res, "rules.0.class")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != "mpv" || src.Kind != SourceFile || src.Line != 4 {
		t.Fatalf("unexpected value %v source %+v", value, src)
	}

	value, src, err = Explain(res, "dispatch.queue_size")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != 64 || src.Kind != SourceDefault {
		t.Fatalf("unexpected value %v source %+v", value, src)
	}

	for _, bad := range []string{"", "nope", "rules.5", "log_level.x"} {
		if _, _, err := Explain(res, bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	cfg.Rules = []RuleConfig{{Title: "Picture-in-Picture", Action: "floating"}}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != "warn" || len(res.Config.Rules) != 1 {
		t.Fatalf("unexpected loaded config %+v", res.Config)
	}
}

func TestWatcherDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "log_level: info\n")

	var calls int32
	w, err := NewWatcher([]string{path}, 50*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Unrelated files in the same directory are ignored.
	writeConfig(t, filepath.Join(dir, "other.yaml"), "x: 1\n")
	for i := 0; i < 3; i++ {
		writeConfig(t, path, "log_level: debug\n")
	}

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&calls) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one debounced notification, got %d", got)
	}
}
