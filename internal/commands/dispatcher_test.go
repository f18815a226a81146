package commands

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func mustCommand(t *testing.T, text string) *Command {
	t.Helper()
	cmd, err := Parse(text)
	if err != nil {
		t.Fatalf("parse %q: %v", text, err)
	}
	return cmd
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestDispatchSameChordIsSerialized(t *testing.T) {
	var running, maxRunning, done int32
	exec := ExecutorFunc(func(ctx context.Context, cmd *Command) error {
		n := atomic.AddInt32(&running, 1)
		for {
			m := atomic.LoadInt32(&maxRunning)
			if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		atomic.AddInt32(&done, 1)
		return nil
	})

	d := NewDispatcher(exec, DispatcherConfig{Workers: 4, QueueSize: 16})
	d.Replace([]Binding{{Chord: "Mod4-Return", Command: mustCommand(t, "workspace 1")}})
	d.Start(context.Background())
	defer d.Stop()

	for i := 0; i < 5; i++ {
		if _, err := d.Dispatch("Mod4-Return"); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
	waitFor(t, "all executions", func() bool { return atomic.LoadInt32(&done) == 5 })

	if got := atomic.LoadInt32(&maxRunning); got != 1 {
		t.Fatalf("expected executions of one chord to never overlap, saw %d at once", got)
	}
}

func TestDispatchDifferentChordsRunConcurrently(t *testing.T) {
	var barrier sync.WaitGroup
	barrier.Add(2)
	released := make(chan struct{})
	var finished int32

	exec := ExecutorFunc(func(ctx context.Context, cmd *Command) error {
		barrier.Done()
		<-released
		atomic.AddInt32(&finished, 1)
		return nil
	})

	d := NewDispatcher(exec, DispatcherConfig{Workers: 2, QueueSize: 4})
	d.Replace([]Binding{
		{Chord: "Mod4-1", Command: mustCommand(t, "workspace 1")},
		{Chord: "Mod4-2", Command: mustCommand(t, "workspace 2")},
	})
	d.Start(context.Background())
	defer d.Stop()

	if _, err := d.Dispatch("Mod4-1"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := d.Dispatch("Mod4-2"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	both := make(chan struct{})
	go func() {
		barrier.Wait()
		close(both)
	}()
	select {
	case <-both:
	case <-time.After(2 * time.Second):
		t.Fatalf("different chords did not execute concurrently")
	}
	close(released)
	waitFor(t, "both executions", func() bool { return atomic.LoadInt32(&finished) == 2 })
}

func TestDispatchBusyChordLeavesWorkersForOthers(t *testing.T) {
	release := make(chan struct{})
	var slowRuns, fastRuns int32

	exec := ExecutorFunc(func(ctx context.Context, cmd *Command) error {
		if cmd.Kind == Close {
			atomic.AddInt32(&fastRuns, 1)
			return nil
		}
		atomic.AddInt32(&slowRuns, 1)
		<-release
		return nil
	})

	d := NewDispatcher(exec, DispatcherConfig{Workers: 2, QueueSize: 8})
	d.Replace([]Binding{
		{Chord: "Mod4-a", Command: mustCommand(t, "exec_on_workspace xterm")},
		{Chord: "Mod4-b", Command: mustCommand(t, "close")},
	})
	d.Start(context.Background())
	defer d.Stop()

	for i := 0; i < 2; i++ {
		if _, err := d.Dispatch("Mod4-a"); err != nil {
			t.Fatalf("dispatch Mod4-a: %v", err)
		}
	}
	waitFor(t, "first Mod4-a execution", func() bool { return atomic.LoadInt32(&slowRuns) == 1 })

	if _, err := d.Dispatch("Mod4-b"); err != nil {
		t.Fatalf("dispatch Mod4-b: %v", err)
	}
	waitFor(t, "Mod4-b while Mod4-a is busy", func() bool { return atomic.LoadInt32(&fastRuns) == 1 })

	if got := atomic.LoadInt32(&slowRuns); got != 1 {
		t.Fatalf("second Mod4-a started before the first finished (%d runs)", got)
	}
	close(release)
	waitFor(t, "parked Mod4-a execution", func() bool { return atomic.LoadInt32(&slowRuns) == 2 })
}

func TestSubmitSerializesSameCommandText(t *testing.T) {
	var running, maxRunning, done int32
	exec := ExecutorFunc(func(ctx context.Context, cmd *Command) error {
		n := atomic.AddInt32(&running, 1)
		for {
			m := atomic.LoadInt32(&maxRunning)
			if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		atomic.AddInt32(&done, 1)
		return nil
	})

	d := NewDispatcher(exec, DispatcherConfig{Workers: 4, QueueSize: 16})
	bound := mustCommand(t, "workspace 2")
	d.Replace([]Binding{{Chord: "Mod4-2", Command: bound}})
	d.Start(context.Background())
	defer d.Stop()

	tabs := []Tab{{Workspace: "2", X: 0, Y: 0, Width: 40, Height: 20}}
	for i := 0; i < 2; i++ {
		if _, err := d.Submit(mustCommand(t, "workspace 2")); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, err := d.Click(5, 5, tabs); err != nil {
			t.Fatalf("click: %v", err)
		}
		if _, err := d.Dispatch("Mod4-2"); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
	}
	waitFor(t, "all executions", func() bool { return atomic.LoadInt32(&done) == 6 })

	if got := atomic.LoadInt32(&maxRunning); got != 1 {
		t.Fatalf("expected requests for one command to never overlap, saw %d at once", got)
	}
	if d.canonical(mustCommand(t, "workspace 2")) != bound {
		t.Fatalf("expected submitted text to resolve to the bound command")
	}
	first := d.canonical(mustCommand(t, "workspace 9"))
	if d.canonical(mustCommand(t, "workspace 9")) != first {
		t.Fatalf("expected unbound requests with equal text to share a command")
	}
}

func TestDispatchUnknownChord(t *testing.T) {
	d := NewDispatcher(ExecutorFunc(func(context.Context, *Command) error { return nil }), DispatcherConfig{})
	d.Start(context.Background())
	defer d.Stop()

	if _, err := d.Dispatch("Mod4-z"); !errors.Is(err, ErrUnknownChord) {
		t.Fatalf("expected ErrUnknownChord, got %v", err)
	}
}

func TestDispatchQueueFull(t *testing.T) {
	block := make(chan struct{})
	exec := ExecutorFunc(func(context.Context, *Command) error {
		<-block
		return nil
	})
	d := NewDispatcher(exec, DispatcherConfig{Workers: 1, QueueSize: 1})
	d.Replace([]Binding{{Chord: "a", Command: mustCommand(t, "close")}})

	// Workers are not started, so the single slot fills immediately.
	if _, err := d.Dispatch("a"); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if _, err := d.Dispatch("a"); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	close(block)
	d.Start(context.Background())
	d.Stop()

	if _, err := d.Dispatch("a"); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after Stop, got %v", err)
	}
}

func TestDispatchReturnsDistinctJobIDs(t *testing.T) {
	d := NewDispatcher(ExecutorFunc(func(context.Context, *Command) error { return nil }), DispatcherConfig{QueueSize: 8})
	d.Replace([]Binding{{Chord: "a", Command: mustCommand(t, "refresh")}})

	first, err := d.Dispatch("a")
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	second, err := d.Dispatch("a")
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if first == "" || first == second {
		t.Fatalf("expected distinct job ids, got %q and %q", first, second)
	}
	d.Start(context.Background())
	d.Stop()
}

func TestReplaceKeepsUnchangedCommands(t *testing.T) {
	d := NewDispatcher(ExecutorFunc(func(context.Context, *Command) error { return nil }), DispatcherConfig{})
	original := mustCommand(t, "workspace 1")
	d.Replace([]Binding{
		{Chord: "Mod4-1", Command: original},
		{Chord: "Mod4-2", Command: mustCommand(t, "workspace 2")},
	})

	d.Replace([]Binding{
		{Chord: "Mod4-1", Command: mustCommand(t, "workspace 1")},
		{Chord: "Mod4-3", Command: mustCommand(t, "workspace 3")},
	})

	got, ok := d.Lookup("Mod4-1")
	if !ok || got != original {
		t.Fatalf("expected unchanged binding to keep its command identity")
	}
	if _, ok := d.Lookup("Mod4-2"); ok {
		t.Fatalf("expected removed binding to be gone")
	}
	if _, ok := d.Lookup("Mod4-3"); !ok {
		t.Fatalf("expected new binding to be present")
	}
}

func TestWorkerRecoversFromPanic(t *testing.T) {
	var calls int32
	exec := ExecutorFunc(func(ctx context.Context, cmd *Command) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("boom")
		}
		return nil
	})
	d := NewDispatcher(exec, DispatcherConfig{Workers: 1})
	d.Replace([]Binding{{Chord: "a", Command: mustCommand(t, "close")}})
	d.Start(context.Background())
	defer d.Stop()

	if _, err := d.Dispatch("a"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := d.Dispatch("a"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	waitFor(t, "second execution after panic", func() bool { return atomic.LoadInt32(&calls) == 2 })
}

func TestClickSwitchesToTab(t *testing.T) {
	got := make(chan string, 1)
	exec := ExecutorFunc(func(ctx context.Context, cmd *Command) error {
		got <- cmd.String()
		return nil
	})
	d := NewDispatcher(exec, DispatcherConfig{})
	d.Start(context.Background())
	defer d.Stop()

	tabs := []Tab{{Workspace: "1", Width: 10, Height: 10}, {Workspace: "2", X: 10, Width: 10, Height: 10}}
	if _, err := d.Click(15, 5, tabs); err != nil {
		t.Fatalf("click: %v", err)
	}
	select {
	case s := <-got:
		if s != "workspace 2" {
			t.Fatalf("unexpected command %q", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("click command never ran")
	}

	if _, err := d.Click(50, 50, tabs); !errors.Is(err, ErrNoTab) {
		t.Fatalf("expected ErrNoTab, got %v", err)
	}
}
