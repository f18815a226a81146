package config

import (
	"fmt"
)

// ValidationError ties a configuration error to its YAML path and, when
// known, the file position that set it.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies a merged raw config on top of the defaults.
// Binding and rule lists replace the defaults wholesale when present.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.ScreenPadding != nil {
		cfg.ScreenPadding = Margins{
			Top:    derefInt(raw.ScreenPadding.Top, cfg.ScreenPadding.Top),
			Bottom: derefInt(raw.ScreenPadding.Bottom, cfg.ScreenPadding.Bottom),
			Left:   derefInt(raw.ScreenPadding.Left, cfg.ScreenPadding.Left),
			Right:  derefInt(raw.ScreenPadding.Right, cfg.ScreenPadding.Right),
		}
	}
	if raw.Bindings != nil {
		cfg.Bindings = append([]BindingConfig(nil), raw.Bindings...)
	}
	if raw.MouseBindings != nil {
		cfg.MouseBindings = append([]MouseBindingConfig(nil), raw.MouseBindings...)
	}
	if raw.Rules != nil {
		cfg.Rules = append([]RuleConfig(nil), raw.Rules...)
	}
	if raw.Dispatch != nil {
		cfg.Dispatch.Workers = derefInt(raw.Dispatch.Workers, cfg.Dispatch.Workers)
		cfg.Dispatch.QueueSize = derefInt(raw.Dispatch.QueueSize, cfg.Dispatch.QueueSize)
	}
	if raw.Launch != nil {
		cfg.Launch.Attempts = derefInt(raw.Launch.Attempts, cfg.Launch.Attempts)
		cfg.Launch.DelayMS = derefInt(raw.Launch.DelayMS, cfg.Launch.DelayMS)
	}
	if raw.ReconcileIntervalSeconds != nil {
		cfg.ReconcileIntervalSeconds = *raw.ReconcileIntervalSeconds
	}
	if raw.Tracing != nil && raw.Tracing.Exporter != nil {
		cfg.Tracing.Exporter = *raw.Tracing.Exporter
	}

	for i := range cfg.Rules {
		if cfg.Rules[i].Action == "" {
			return nil, &ValidationError{Path: fmt.Sprintf("rules.%d.action", i), Err: fmt.Errorf("is required")}
		}
	}

	return cfg, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
