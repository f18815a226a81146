package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/1broseidon/splitwm/internal/tiling"
)

// Director is the window-manager surface commands operate on.
type Director interface {
	SwitchWorkspace(name string) error
	CycleWorkspace(delta int) error
	MoveActiveToWorkspace(name string) error
	FocusMonitor(dir tiling.Direction) error
	MoveActiveToMonitor(dir tiling.Direction) error
	FocusDirection(dir tiling.Direction) error
	MoveActive(dir tiling.Direction) error
	ToggleFloating() error
	ToggleFullscreen() error
	CloseActive() error
	Split(orientation tiling.Orientation) error
	Refresh() error
	ActiveWorkspace() string
}

// Executor runs a single command.
type Executor interface {
	Execute(ctx context.Context, cmd *Command) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, cmd *Command) error

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, cmd *Command) error {
	return f(ctx, cmd)
}

// ErrNoLauncher is returned for exec commands when no launcher is configured.
var ErrNoLauncher = errors.New("no launcher configured")

// Runner executes commands against a Director.
type Runner struct {
	Director Director
	Launcher *Launcher
	Reload   func() error
}

// Execute implements Executor.
func (r *Runner) Execute(ctx context.Context, cmd *Command) error {
	d := r.Director

	switch cmd.Kind {
	case Workspace:
		return d.SwitchWorkspace(cmd.Arg)
	case WorkspaceNext:
		return d.CycleWorkspace(1)
	case WorkspacePrev:
		return d.CycleWorkspace(-1)
	case MoveToWorkspace:
		return d.MoveActiveToWorkspace(cmd.Arg)
	case FocusMonitor, MoveToMonitor, Focus, Move:
		dir, err := tiling.ParseDirection(cmd.Arg)
		if err != nil {
			return err
		}
		switch cmd.Kind {
		case FocusMonitor:
			return d.FocusMonitor(dir)
		case MoveToMonitor:
			return d.MoveActiveToMonitor(dir)
		case Focus:
			return d.FocusDirection(dir)
		default:
			return d.MoveActive(dir)
		}
	case Floating:
		return d.ToggleFloating()
	case Fullscreen:
		return d.ToggleFullscreen()
	case Close:
		return d.CloseActive()
	case Split:
		orientation, err := tiling.ParseOrientation(cmd.Arg)
		if err != nil {
			return err
		}
		return d.Split(orientation)
	case Exec:
		if r.Launcher == nil {
			return ErrNoLauncher
		}
		_, err := r.Launcher.Start(cmd.Arg)
		return err
	case ExecOnWorkspace:
		if r.Launcher == nil {
			return ErrNoLauncher
		}
		return r.Launcher.LaunchOnWorkspace(ctx, cmd.Arg, d.ActiveWorkspace())
	case Refresh:
		return d.Refresh()
	case Reload:
		if r.Reload == nil {
			return errors.New("reload is not available")
		}
		return r.Reload()
	default:
		return fmt.Errorf("unsupported command %s", cmd.Kind)
	}
}
