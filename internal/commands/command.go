// Package commands maps bound input chords to director operations and runs
// them on a bounded worker pool.
package commands

import (
	"fmt"
	"strings"
	"sync"
)

// Kind enumerates the operations a binding can trigger.
type Kind int

const (
	Workspace Kind = iota
	WorkspaceNext
	WorkspacePrev
	MoveToWorkspace
	FocusMonitor
	MoveToMonitor
	Focus
	Move
	Floating
	Fullscreen
	Close
	Split
	Exec
	ExecOnWorkspace
	Refresh
	Reload
)

var kindNames = []string{
	Workspace:       "workspace",
	WorkspaceNext:   "workspace_next",
	WorkspacePrev:   "workspace_prev",
	MoveToWorkspace: "move_to_workspace",
	FocusMonitor:    "focus_monitor",
	MoveToMonitor:   "move_to_monitor",
	Focus:           "focus",
	Move:            "move",
	Floating:        "floating",
	Fullscreen:      "fullscreen",
	Close:           "close",
	Split:           "split",
	Exec:            "exec",
	ExecOnWorkspace: "exec_on_workspace",
	Refresh:         "refresh",
	Reload:          "reload",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// NeedsArg reports whether the kind requires an argument.
func (k Kind) NeedsArg() bool {
	switch k {
	case Workspace, MoveToWorkspace, FocusMonitor, MoveToMonitor, Focus, Move, Split, Exec, ExecOnWorkspace:
		return true
	default:
		return false
	}
}

// ParseKind resolves a command name.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", name)
}

// Kinds returns every command name in declaration order.
func Kinds() []string {
	out := make([]string, len(kindNames))
	copy(out, kindNames)
	return out
}

// Command is one bound operation. Executions of the same Command never
// overlap; jobs that arrive while it runs wait in pending.
type Command struct {
	Kind Kind
	Arg  string

	mu      sync.Mutex
	running bool
	pending []job
}

// claim marks the command as running. When it already is, j is parked
// behind the current execution and claim reports false.
func (c *Command) claim(j job) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.pending = append(c.pending, j)
		return false
	}
	c.running = true
	return true
}

// next hands over the oldest parked job, or clears the running mark.
func (c *Command) next() (job, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		c.running = false
		return job{}, false
	}
	j := c.pending[0]
	c.pending = c.pending[1:]
	return j, true
}

// drop discards parked jobs and clears the running mark.
func (c *Command) drop() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.pending)
	c.pending = nil
	c.running = false
	return n
}

func (c *Command) backlog() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// New validates and builds a command.
func New(kind Kind, arg string) (*Command, error) {
	arg = strings.TrimSpace(arg)
	if kind.NeedsArg() && arg == "" {
		return nil, fmt.Errorf("command %s requires an argument", kind)
	}
	return &Command{Kind: kind, Arg: arg}, nil
}

// Parse builds a command from "name arg..." text.
func Parse(text string) (*Command, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(text), " ")
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return New(kind, arg)
}

func (c *Command) String() string {
	if c.Arg == "" {
		return c.Kind.String()
	}
	return c.Kind.String() + " " + c.Arg
}

// Binding attaches a command to an input chord such as "Mod4-Return" or
// "Mod4-1" for mouse button 1.
type Binding struct {
	Chord   string
	Mouse   bool
	Command *Command
}
