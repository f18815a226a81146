// Package rules evaluates for_window style rules against newly admitted windows.
package rules

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/splitwm/internal/tiling"
	"github.com/dlclark/regexp2"
)

// FocusedSentinel as a pattern matches against the focused window's own
// class or title, read when the condition is evaluated.
const FocusedSentinel = "__focused__"

// matchTimeout bounds a single backtracking match.
const matchTimeout = 250 * time.Millisecond

// Target is the window-manager surface rules read from and act on.
type Target interface {
	FocusedWindow() *tiling.Window
	SetFloating(w *tiling.Window)
	MoveToWorkspace(w *tiling.Window, name string) error
}

// Pattern is a compiled match pattern, or the focused-window sentinel.
type Pattern struct {
	source string
	self   bool
	re     *regexp2.Regexp
}

// CompilePattern compiles expr once. The sentinel defers compilation to
// every evaluation.
func CompilePattern(expr string) (Pattern, error) {
	if expr == FocusedSentinel {
		return Pattern{source: expr, self: true}, nil
	}
	re, err := compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	return Pattern{source: expr, re: re}, nil
}

// MustCompilePattern is like CompilePattern but panics on error.
func MustCompilePattern(expr string) Pattern {
	p, err := CompilePattern(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source expression.
func (p Pattern) String() string {
	return p.source
}

// SelfReferential reports whether p is the focused-window sentinel.
func (p Pattern) SelfReferential() bool {
	return p.self
}

func (p Pattern) matches(subject string, focused func() (string, bool)) bool {
	re := p.re
	if p.self {
		value, ok := focused()
		if !ok {
			return false
		}
		var err error
		re, err = compile("^" + regexp2.Escape(value) + "$")
		if err != nil {
			return false
		}
	}
	if re == nil {
		return false
	}
	ok, err := re.MatchString(subject)
	return err == nil && ok
}

func compile(expr string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = matchTimeout
	return re, nil
}

// Condition decides whether a rule applies to a window. Evaluation never
// mutates the target.
type Condition interface {
	Applies(t Target, w *tiling.Window) bool
}

// ClassMatches matches the window class.
type ClassMatches struct {
	Pattern Pattern
}

// Applies implements Condition.
func (c ClassMatches) Applies(t Target, w *tiling.Window) bool {
	return c.Pattern.matches(w.Class(), func() (string, bool) {
		f := t.FocusedWindow()
		if f == nil {
			return "", false
		}
		return f.Class(), true
	})
}

// TitleMatches matches the window title.
type TitleMatches struct {
	Pattern Pattern
}

// Applies implements Condition.
func (c TitleMatches) Applies(t Target, w *tiling.Window) bool {
	return c.Pattern.matches(w.Title(), func() (string, bool) {
		f := t.FocusedWindow()
		if f == nil {
			return "", false
		}
		return f.Title(), true
	})
}

// All holds when every sub-condition holds. It stops at the first failure.
type All []Condition

// Applies implements Condition.
func (a All) Applies(t Target, w *tiling.Window) bool {
	for _, c := range a {
		if !c.Applies(t, w) {
			return false
		}
	}
	return true
}

// Action is a side effect run for a matching window. Running an action twice
// on the same window has the same effect as running it once.
type Action interface {
	Exec(t Target, w *tiling.Window) error
	String() string
}

// SetFloating forces the window to float.
type SetFloating struct{}

// Exec implements Action.
func (SetFloating) Exec(t Target, w *tiling.Window) error {
	t.SetFloating(w)
	return nil
}

func (SetFloating) String() string { return "floating" }

// MoveToWorkspace places the window on a named workspace.
type MoveToWorkspace struct {
	Workspace string
}

// Exec implements Action.
func (m MoveToWorkspace) Exec(t Target, w *tiling.Window) error {
	return t.MoveToWorkspace(w, m.Workspace)
}

func (m MoveToWorkspace) String() string { return "move_to_workspace " + m.Workspace }

// ParseAction builds an action from its config name.
func ParseAction(name, workspace string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "floating", "float":
		return SetFloating{}, nil
	case "move_to_workspace", "workspace":
		if strings.TrimSpace(workspace) == "" {
			return nil, fmt.Errorf("action %q requires a workspace", name)
		}
		return MoveToWorkspace{Workspace: strings.TrimSpace(workspace)}, nil
	default:
		return nil, fmt.Errorf("unknown rule action %q", name)
	}
}

// Rule pairs a condition with the action it triggers.
type Rule struct {
	Condition Condition
	Action    Action
}

// New builds a rule matching class and/or title. Empty patterns are ignored;
// at least one must be set.
func New(class, title string, action Action) (Rule, error) {
	var conds All
	if class != "" {
		p, err := CompilePattern(class)
		if err != nil {
			return Rule{}, err
		}
		conds = append(conds, ClassMatches{Pattern: p})
	}
	if title != "" {
		p, err := CompilePattern(title)
		if err != nil {
			return Rule{}, err
		}
		conds = append(conds, TitleMatches{Pattern: p})
	}
	if len(conds) == 0 {
		return Rule{}, errors.New("rule needs a class or title pattern")
	}
	if action == nil {
		return Rule{}, errors.New("rule needs an action")
	}

	var cond Condition = conds
	if len(conds) == 1 {
		cond = conds[0]
	}
	return Rule{Condition: cond, Action: action}, nil
}

// Apply evaluates rules in order and runs the action of every match. A
// failing action does not stop later rules; failures are joined.
func Apply(rules []Rule, t Target, w *tiling.Window) (matched int, err error) {
	var errs []error
	for i, r := range rules {
		if r.Condition == nil || r.Action == nil {
			continue
		}
		if !r.Condition.Applies(t, w) {
			continue
		}
		matched++
		if execErr := r.Action.Exec(t, w); execErr != nil {
			errs = append(errs, fmt.Errorf("rule %d (%s): %w", i, r.Action, execErr))
		}
	}
	return matched, errors.Join(errs...)
}
