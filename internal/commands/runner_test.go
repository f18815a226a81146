package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/1broseidon/splitwm/internal/tiling"
)

type fakeDirector struct {
	calls  []string
	active string
	err    error
}

func (f *fakeDirector) record(format string, args ...any) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.err
}

func (f *fakeDirector) SwitchWorkspace(name string) error { return f.record("switch %s", name) }
func (f *fakeDirector) CycleWorkspace(delta int) error    { return f.record("cycle %d", delta) }
func (f *fakeDirector) MoveActiveToWorkspace(name string) error {
	return f.record("move-ws %s", name)
}
func (f *fakeDirector) FocusMonitor(dir tiling.Direction) error {
	return f.record("focus-mon %s", dir)
}
func (f *fakeDirector) MoveActiveToMonitor(dir tiling.Direction) error {
	return f.record("move-mon %s", dir)
}
func (f *fakeDirector) FocusDirection(dir tiling.Direction) error { return f.record("focus %s", dir) }
func (f *fakeDirector) MoveActive(dir tiling.Direction) error     { return f.record("move %s", dir) }
func (f *fakeDirector) ToggleFloating() error                     { return f.record("floating") }
func (f *fakeDirector) ToggleFullscreen() error                   { return f.record("fullscreen") }
func (f *fakeDirector) CloseActive() error                        { return f.record("close") }
func (f *fakeDirector) Split(o tiling.Orientation) error          { return f.record("split %s", o) }
func (f *fakeDirector) Refresh() error                            { return f.record("refresh") }
func (f *fakeDirector) ActiveWorkspace() string                   { return f.active }

func TestRunnerMapsCommands(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "workspace web", want: "switch web"},
		{text: "workspace_next", want: "cycle 1"},
		{text: "workspace_prev", want: "cycle -1"},
		{text: "move_to_workspace 2", want: "move-ws 2"},
		{text: "focus_monitor right", want: "focus-mon right"},
		{text: "move_to_monitor left", want: "move-mon left"},
		{text: "focus left", want: "focus left"},
		{text: "move right", want: "move right"},
		{text: "floating", want: "floating"},
		{text: "fullscreen", want: "fullscreen"},
		{text: "close", want: "close"},
		{text: "split vertical", want: "split vertical"},
		{text: "refresh", want: "refresh"},
	}

	for _, tt := range tests {
		d := &fakeDirector{}
		r := &Runner{Director: d}
		if err := r.Execute(context.Background(), mustCommand(t, tt.text)); err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.text, err)
		}
		if len(d.calls) != 1 || d.calls[0] != tt.want {
			t.Fatalf("%s: calls = %v, want [%s]", tt.text, d.calls, tt.want)
		}
	}
}

func TestRunnerRejectsBadArguments(t *testing.T) {
	d := &fakeDirector{}
	r := &Runner{Director: d}
	for _, text := range []string{"focus sideways", "split diagonal"} {
		if err := r.Execute(context.Background(), mustCommand(t, text)); err == nil {
			t.Fatalf("%s: expected error", text)
		}
	}
	if len(d.calls) != 0 {
		t.Fatalf("expected no director calls, got %v", d.calls)
	}
}

func TestRunnerPropagatesDirectorErrors(t *testing.T) {
	want := errors.New("no focused window")
	r := &Runner{Director: &fakeDirector{err: want}}
	if err := r.Execute(context.Background(), mustCommand(t, "close")); !errors.Is(err, want) {
		t.Fatalf("expected director error, got %v", err)
	}
}

func TestRunnerExecWithoutLauncher(t *testing.T) {
	r := &Runner{Director: &fakeDirector{}}
	for _, text := range []string{"exec xterm", "exec_on_workspace xterm"} {
		if err := r.Execute(context.Background(), mustCommand(t, text)); !errors.Is(err, ErrNoLauncher) {
			t.Fatalf("%s: expected ErrNoLauncher, got %v", text, err)
		}
	}
}

func TestRunnerReload(t *testing.T) {
	r := &Runner{Director: &fakeDirector{}}
	if err := r.Execute(context.Background(), mustCommand(t, "reload")); err == nil {
		t.Fatalf("expected error without reload hook")
	}

	reloaded := false
	r.Reload = func() error {
		reloaded = true
		return nil
	}
	if err := r.Execute(context.Background(), mustCommand(t, "reload")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reloaded {
		t.Fatalf("expected reload hook to run")
	}
}
