package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/splitwm/internal/platform"
	"github.com/1broseidon/splitwm/internal/platform/platformtest"
)

type fakePlacer struct {
	mu      sync.Mutex
	tracked map[platform.WindowID]bool
	moved   map[platform.WindowID]string
}

func newFakePlacer() *fakePlacer {
	return &fakePlacer{tracked: make(map[platform.WindowID]bool), moved: make(map[platform.WindowID]string)}
}

func (p *fakePlacer) track(id platform.WindowID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracked[id] = true
}

func (p *fakePlacer) Tracks(id platform.WindowID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracked[id]
}

func (p *fakePlacer) MoveWindowToWorkspace(id platform.WindowID, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.moved[id] = name
	return nil
}

func newTestLauncher(backend platform.Backend, placer Placer, pid int, tree map[int]bool, onStart func()) *Launcher {
	l := NewLauncher(backend, placer, LauncherConfig{Attempts: 10, Delay: 5 * time.Millisecond})
	l.start = func(string) (int, error) {
		if onStart != nil {
			onStart()
		}
		return pid, nil
	}
	l.descendants = func(int) map[int]bool {
		out := make(map[int]bool, len(tree))
		for k, v := range tree {
			out[k] = v
		}
		return out
	}
	return l
}

func TestLaunchOnWorkspacePlacesDescendantWindow(t *testing.T) {
	backend := platformtest.New(platformtest.Display(1, "DP-1", 0, 0, 1000, 800))
	backend.AddWindow(platform.Window{ID: 1, PID: 4242})
	placer := newFakePlacer()
	placer.track(1)

	l := newTestLauncher(backend, placer, 100, map[int]bool{101: true}, func() {
		// The shell forks the real program, which maps a window.
		backend.AddWindow(platform.Window{ID: 7, PID: 101})
		placer.track(7)
	})

	if err := l.LaunchOnWorkspace(context.Background(), "xterm", "web"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := placer.moved[7]; got != "web" {
		t.Fatalf("expected window 7 on web, got %q", got)
	}
	if _, ok := placer.moved[1]; ok {
		t.Fatalf("pre-existing window must not be moved")
	}
}

func TestLaunchOnWorkspaceWaitsUntilTracked(t *testing.T) {
	backend := platformtest.New(platformtest.Display(1, "DP-1", 0, 0, 1000, 800))
	placer := newFakePlacer()

	l := newTestLauncher(backend, placer, 100, nil, func() {
		backend.AddWindow(platform.Window{ID: 9, PID: 100})
		go func() {
			time.Sleep(15 * time.Millisecond)
			placer.track(9)
		}()
	})

	if err := l.LaunchOnWorkspace(context.Background(), "xterm", "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if placer.moved[9] != "2" {
		t.Fatalf("expected window placed once tracked, got %v", placer.moved)
	}
}

func TestLaunchOnWorkspaceIgnoresForeignWindows(t *testing.T) {
	backend := platformtest.New(platformtest.Display(1, "DP-1", 0, 0, 1000, 800))
	placer := newFakePlacer()

	l := newTestLauncher(backend, placer, 100, map[int]bool{101: true}, func() {
		backend.AddWindow(platform.Window{ID: 3, PID: 555})
		placer.track(3)
	})

	err := l.LaunchOnWorkspace(context.Background(), "xterm", "2")
	if !errors.Is(err, ErrLaunchTimeout) {
		t.Fatalf("expected ErrLaunchTimeout, got %v", err)
	}
	if len(placer.moved) != 0 {
		t.Fatalf("expected nothing moved, got %v", placer.moved)
	}
}

func TestLaunchOnWorkspaceHonoursContext(t *testing.T) {
	backend := platformtest.New(platformtest.Display(1, "DP-1", 0, 0, 1000, 800))
	l := newTestLauncher(backend, newFakePlacer(), 100, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.LaunchOnWorkspace(ctx, "xterm", "2"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLauncherStartError(t *testing.T) {
	backend := platformtest.New()
	l := NewLauncher(backend, newFakePlacer(), LauncherConfig{})
	l.start = func(string) (int, error) { return 0, errors.New("no such file") }
	if _, err := l.Start("missing-binary"); err == nil {
		t.Fatalf("expected start error")
	}
}
