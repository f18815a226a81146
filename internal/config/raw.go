package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawMargins struct {
	Top    *int `yaml:"top"`
	Bottom *int `yaml:"bottom"`
	Left   *int `yaml:"left"`
	Right  *int `yaml:"right"`
}

type RawDispatch struct {
	Workers   *int `yaml:"workers"`
	QueueSize *int `yaml:"queue_size"`
}

type RawLaunch struct {
	Attempts *int `yaml:"attempts"`
	DelayMS  *int `yaml:"delay_ms"`
}

type RawTracing struct {
	Exporter *string `yaml:"exporter"`
}

// RawConfig is one file's view of the configuration. Nil fields were not
// set by that file.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	LogLevel                 *string              `yaml:"log_level"`
	ScreenPadding            *RawMargins          `yaml:"screen_padding"`
	Bindings                 []BindingConfig      `yaml:"bindings"`
	MouseBindings            []MouseBindingConfig `yaml:"mouse_bindings"`
	Rules                    []RuleConfig         `yaml:"rules"`
	Dispatch                 *RawDispatch         `yaml:"dispatch"`
	Launch                   *RawLaunch           `yaml:"launch"`
	ReconcileIntervalSeconds *int                 `yaml:"reconcile_interval_seconds"`
	Tracing                  *RawTracing          `yaml:"tracing"`
}

// merge layers overlay on top of c. Scalars in overlay win. Bindings are
// merged by chord so a later file can rebind a chord in place; rules
// accumulate in load order.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.ScreenPadding != nil {
		base := RawMargins{}
		if out.ScreenPadding != nil {
			base = *out.ScreenPadding
		}
		merged := mergeRawMargins(base, *overlay.ScreenPadding)
		out.ScreenPadding = &merged
	}
	if overlay.Bindings != nil {
		out.Bindings = mergeBindings(out.Bindings, overlay.Bindings)
	}
	if overlay.MouseBindings != nil {
		out.MouseBindings = mergeMouseBindings(out.MouseBindings, overlay.MouseBindings)
	}
	if overlay.Rules != nil {
		rules := make([]RuleConfig, 0, len(out.Rules)+len(overlay.Rules))
		rules = append(rules, out.Rules...)
		out.Rules = append(rules, overlay.Rules...)
	}
	if overlay.Dispatch != nil {
		base := RawDispatch{}
		if out.Dispatch != nil {
			base = *out.Dispatch
		}
		if overlay.Dispatch.Workers != nil {
			base.Workers = overlay.Dispatch.Workers
		}
		if overlay.Dispatch.QueueSize != nil {
			base.QueueSize = overlay.Dispatch.QueueSize
		}
		out.Dispatch = &base
	}
	if overlay.Launch != nil {
		base := RawLaunch{}
		if out.Launch != nil {
			base = *out.Launch
		}
		if overlay.Launch.Attempts != nil {
			base.Attempts = overlay.Launch.Attempts
		}
		if overlay.Launch.DelayMS != nil {
			base.DelayMS = overlay.Launch.DelayMS
		}
		out.Launch = &base
	}
	if overlay.ReconcileIntervalSeconds != nil {
		out.ReconcileIntervalSeconds = overlay.ReconcileIntervalSeconds
	}
	if overlay.Tracing != nil {
		base := RawTracing{}
		if out.Tracing != nil {
			base = *out.Tracing
		}
		if overlay.Tracing.Exporter != nil {
			base.Exporter = overlay.Tracing.Exporter
		}
		out.Tracing = &base
	}

	return out
}

func mergeRawMargins(base RawMargins, overlay RawMargins) RawMargins {
	out := base
	if overlay.Top != nil {
		out.Top = overlay.Top
	}
	if overlay.Bottom != nil {
		out.Bottom = overlay.Bottom
	}
	if overlay.Left != nil {
		out.Left = overlay.Left
	}
	if overlay.Right != nil {
		out.Right = overlay.Right
	}
	return out
}

func mergeBindings(base, overlay []BindingConfig) []BindingConfig {
	out := make([]BindingConfig, len(base), len(base)+len(overlay))
	copy(out, base)
	index := make(map[string]int, len(out))
	for i, b := range out {
		index[b.Keys] = i
	}
	for _, b := range overlay {
		if i, ok := index[b.Keys]; ok {
			out[i] = b
			continue
		}
		index[b.Keys] = len(out)
		out = append(out, b)
	}
	return out
}

func mergeMouseBindings(base, overlay []MouseBindingConfig) []MouseBindingConfig {
	out := make([]MouseBindingConfig, len(base), len(base)+len(overlay))
	copy(out, base)
	index := make(map[string]int, len(out))
	for i, b := range out {
		index[b.Buttons] = i
	}
	for _, b := range overlay {
		if i, ok := index[b.Buttons]; ok {
			out[i] = b
			continue
		}
		index[b.Buttons] = len(out)
		out = append(out, b)
	}
	return out
}
