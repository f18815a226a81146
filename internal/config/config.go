package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/1broseidon/splitwm/internal/commands"
	"github.com/1broseidon/splitwm/internal/rules"
	"github.com/1broseidon/splitwm/internal/tiling"
	"gopkg.in/yaml.v3"
)

// Margins represents an inset applied to every monitor's usable area.
type Margins struct {
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// BindingConfig attaches a command to a key chord such as "Mod4-Shift-1".
type BindingConfig struct {
	Keys    string `yaml:"keys"`
	Command string `yaml:"command"`
	Arg     string `yaml:"arg,omitempty"`
}

// MouseBindingConfig attaches a command to a button chord such as "Mod4-3".
type MouseBindingConfig struct {
	Buttons string `yaml:"buttons"`
	Command string `yaml:"command"`
	Arg     string `yaml:"arg,omitempty"`
}

// RuleConfig is one for_window rule. Class and Title are patterns; either
// may be "__focused__" to match the window focused when the rule runs.
type RuleConfig struct {
	Class     string `yaml:"class,omitempty"`
	Title     string `yaml:"title,omitempty"`
	Action    string `yaml:"action"`
	Workspace string `yaml:"workspace,omitempty"`
}

// DispatchConfig sizes the command worker pool.
type DispatchConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// LaunchConfig bounds how long exec_on_workspace waits for a window.
type LaunchConfig struct {
	Attempts int `yaml:"attempts"`
	DelayMS  int `yaml:"delay_ms"`
}

// TracingConfig selects the span exporter.
type TracingConfig struct {
	Exporter string `yaml:"exporter"`
}

// Config is the effective window-manager configuration.
type Config struct {
	LogLevel                 string               `yaml:"log_level"`
	ScreenPadding            Margins              `yaml:"screen_padding"`
	Bindings                 []BindingConfig      `yaml:"bindings"`
	MouseBindings            []MouseBindingConfig `yaml:"mouse_bindings"`
	Rules                    []RuleConfig         `yaml:"rules"`
	Dispatch                 DispatchConfig       `yaml:"dispatch"`
	Launch                   LaunchConfig         `yaml:"launch"`
	ReconcileIntervalSeconds int                  `yaml:"reconcile_interval_seconds"`
	Tracing                  TracingConfig        `yaml:"tracing"`
}

const (
	DefaultTerminal          = "xterm"
	DefaultReconcileInterval = 5
)

// DefaultConfig returns the built-in configuration: i3-style bindings on the
// Super key and no rules.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:                 "info",
		Bindings:                 defaultBindings(),
		MouseBindings:            []MouseBindingConfig{},
		Rules:                    []RuleConfig{},
		Dispatch:                 DispatchConfig{Workers: 4, QueueSize: 64},
		Launch:                   LaunchConfig{Attempts: 20, DelayMS: 250},
		ReconcileIntervalSeconds: DefaultReconcileInterval,
		Tracing:                  TracingConfig{Exporter: "none"},
	}
}

func defaultBindings() []BindingConfig {
	out := []BindingConfig{
		{Keys: "Mod4-Return", Command: "exec", Arg: DefaultTerminal},
		{Keys: "Mod4-Shift-Return", Command: "exec_on_workspace", Arg: DefaultTerminal},
		{Keys: "Mod4-Left", Command: "focus", Arg: "left"},
		{Keys: "Mod4-Right", Command: "focus", Arg: "right"},
		{Keys: "Mod4-Shift-Left", Command: "move", Arg: "left"},
		{Keys: "Mod4-Shift-Right", Command: "move", Arg: "right"},
		{Keys: "Mod4-Control-Left", Command: "focus_monitor", Arg: "left"},
		{Keys: "Mod4-Control-Right", Command: "focus_monitor", Arg: "right"},
		{Keys: "Mod4-Control-Shift-Left", Command: "move_to_monitor", Arg: "left"},
		{Keys: "Mod4-Control-Shift-Right", Command: "move_to_monitor", Arg: "right"},
		{Keys: "Mod4-Tab", Command: "workspace_next"},
		{Keys: "Mod4-Shift-Tab", Command: "workspace_prev"},
		{Keys: "Mod4-h", Command: "split", Arg: "horizontal"},
		{Keys: "Mod4-v", Command: "split", Arg: "vertical"},
		{Keys: "Mod4-f", Command: "fullscreen"},
		{Keys: "Mod4-Shift-space", Command: "floating"},
		{Keys: "Mod4-Shift-q", Command: "close"},
		{Keys: "Mod4-Shift-r", Command: "reload"},
	}
	for i := 1; i <= 9; i++ {
		n := strconv.Itoa(i)
		out = append(out,
			BindingConfig{Keys: "Mod4-" + n, Command: "workspace", Arg: n},
			BindingConfig{Keys: "Mod4-Shift-" + n, Command: "move_to_workspace", Arg: n},
		)
	}
	return out
}

// Padding converts the screen padding to the tiling type.
func (c *Config) Padding() tiling.Padding {
	return tiling.Padding{
		Top:    c.ScreenPadding.Top,
		Bottom: c.ScreenPadding.Bottom,
		Left:   c.ScreenPadding.Left,
		Right:  c.ScreenPadding.Right,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("must be one of debug, info, warn, error (got %q)", c.LogLevel)}
	}

	for name, v := range map[string]int{
		"screen_padding.top":    c.ScreenPadding.Top,
		"screen_padding.bottom": c.ScreenPadding.Bottom,
		"screen_padding.left":   c.ScreenPadding.Left,
		"screen_padding.right":  c.ScreenPadding.Right,
	} {
		if v < 0 {
			return &ValidationError{Path: name, Err: fmt.Errorf("must be non-negative")}
		}
	}

	seen := make(map[string]string)
	for i, b := range c.Bindings {
		path := fmt.Sprintf("bindings.%d", i)
		if strings.TrimSpace(b.Keys) == "" {
			return &ValidationError{Path: path + ".keys", Err: fmt.Errorf("must not be empty")}
		}
		if prev, ok := seen["key:"+b.Keys]; ok {
			return &ValidationError{Path: path + ".keys", Err: fmt.Errorf("chord %q already bound at %s", b.Keys, prev)}
		}
		seen["key:"+b.Keys] = path
		if _, err := compileCommand(b.Command, b.Arg); err != nil {
			return &ValidationError{Path: path + ".command", Err: err}
		}
	}

	for i, b := range c.MouseBindings {
		path := fmt.Sprintf("mouse_bindings.%d", i)
		if strings.TrimSpace(b.Buttons) == "" {
			return &ValidationError{Path: path + ".buttons", Err: fmt.Errorf("must not be empty")}
		}
		if prev, ok := seen["mouse:"+b.Buttons]; ok {
			return &ValidationError{Path: path + ".buttons", Err: fmt.Errorf("chord %q already bound at %s", b.Buttons, prev)}
		}
		seen["mouse:"+b.Buttons] = path
		if _, err := compileCommand(b.Command, b.Arg); err != nil {
			return &ValidationError{Path: path + ".command", Err: err}
		}
	}

	for i, r := range c.Rules {
		path := fmt.Sprintf("rules.%d", i)
		if r.Class == "" && r.Title == "" {
			return &ValidationError{Path: path, Err: fmt.Errorf("class or title is required")}
		}
		action, err := rules.ParseAction(r.Action, r.Workspace)
		if err != nil {
			return &ValidationError{Path: path + ".action", Err: err}
		}
		if _, err := rules.New(r.Class, r.Title, action); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
	}

	if c.Dispatch.Workers < 1 {
		return &ValidationError{Path: "dispatch.workers", Err: fmt.Errorf("must be >= 1")}
	}
	if c.Dispatch.QueueSize < 1 {
		return &ValidationError{Path: "dispatch.queue_size", Err: fmt.Errorf("must be >= 1")}
	}
	if c.Launch.Attempts < 1 {
		return &ValidationError{Path: "launch.attempts", Err: fmt.Errorf("must be >= 1")}
	}
	if c.Launch.DelayMS < 1 {
		return &ValidationError{Path: "launch.delay_ms", Err: fmt.Errorf("must be >= 1")}
	}
	if c.ReconcileIntervalSeconds < 0 {
		return &ValidationError{Path: "reconcile_interval_seconds", Err: fmt.Errorf("must be >= 0 (0 disables)")}
	}
	switch c.Tracing.Exporter {
	case "none", "stdout":
	default:
		return &ValidationError{Path: "tracing.exporter", Err: fmt.Errorf("must be none or stdout (got %q)", c.Tracing.Exporter)}
	}
	return nil
}

// Compile turns the configuration into the ordered bindings and rules the
// window manager consumes.
func (c *Config) Compile() ([]commands.Binding, []rules.Rule, error) {
	bindings := make([]commands.Binding, 0, len(c.Bindings)+len(c.MouseBindings))
	for i, b := range c.Bindings {
		cmd, err := compileCommand(b.Command, b.Arg)
		if err != nil {
			return nil, nil, &ValidationError{Path: fmt.Sprintf("bindings.%d.command", i), Err: err}
		}
		bindings = append(bindings, commands.Binding{Chord: b.Keys, Command: cmd})
	}
	for i, b := range c.MouseBindings {
		cmd, err := compileCommand(b.Command, b.Arg)
		if err != nil {
			return nil, nil, &ValidationError{Path: fmt.Sprintf("mouse_bindings.%d.command", i), Err: err}
		}
		bindings = append(bindings, commands.Binding{Chord: b.Buttons, Mouse: true, Command: cmd})
	}

	compiled := make([]rules.Rule, 0, len(c.Rules))
	for i, r := range c.Rules {
		action, err := rules.ParseAction(r.Action, r.Workspace)
		if err != nil {
			return nil, nil, &ValidationError{Path: fmt.Sprintf("rules.%d.action", i), Err: err}
		}
		rule, err := rules.New(r.Class, r.Title, action)
		if err != nil {
			return nil, nil, &ValidationError{Path: fmt.Sprintf("rules.%d", i), Err: err}
		}
		compiled = append(compiled, rule)
	}
	return bindings, compiled, nil
}

func compileCommand(name, arg string) (*commands.Command, error) {
	kind, err := commands.ParseKind(name)
	if err != nil {
		return nil, err
	}
	return commands.New(kind, arg)
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
