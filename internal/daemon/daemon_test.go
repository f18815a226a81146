package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/splitwm/internal/director"
	"github.com/1broseidon/splitwm/internal/platform"
	"github.com/1broseidon/splitwm/internal/platform/platformtest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDirector(t *testing.T) (*platformtest.Backend, *director.Director) {
	t.Helper()
	backend := platformtest.New(platformtest.Display(0, "DP-1", 0, 0, 1000, 800))
	d := director.New(backend, director.Options{Logger: quietLogger()})
	if err := d.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return backend, d
}

func TestReconcileNowCorrectsDrift(t *testing.T) {
	backend, d := newDirector(t)
	backend.AddWindow(platform.Window{ID: 1, Class: "a", Bounds: platform.Rect{X: 10, Y: 10, Width: 100, Height: 100}})
	if err := d.AddWindow("DP-1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Window 1 vanished without a destroy event; window 2 appeared unseen.
	backend.RemoveWindow(1)
	backend.AddWindow(platform.Window{ID: 2, Class: "b", Bounds: platform.Rect{X: 10, Y: 10, Width: 100, Height: 100}})

	r := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, d)
	removed, added := r.ReconcileNow()
	if removed != 1 || added != 1 {
		t.Fatalf("expected 1 removed and 1 added, got %d and %d", removed, added)
	}
	if d.Tracks(1) || !d.Tracks(2) {
		t.Fatalf("expected only window 2 tracked")
	}

	removed, added = r.ReconcileNow()
	if removed != 0 || added != 0 {
		t.Fatalf("expected a second pass to be a no-op, got %d/%d", removed, added)
	}
}

type panickyTarget struct{ calls int }

func (p *panickyTarget) Reconcile() (int, int, error) {
	p.calls++
	if p.calls == 1 {
		panic("boom")
	}
	return 0, 0, errors.New("list failed")
}

func TestReconcilerRecoversAndKeepsRunning(t *testing.T) {
	target := &panickyTarget{}
	r := NewReconciler(ReconcilerConfig{Interval: 5 * time.Millisecond, Logger: quietLogger()}, target)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if target.calls < 2 {
		t.Fatalf("expected reconciler to keep ticking after a panic, got %d calls", target.calls)
	}
}

func TestStateSynchronizerForwardsEvents(t *testing.T) {
	backend, d := newDirector(t)
	s := NewStateSynchronizer(d, quietLogger())
	if err := s.Attach(backend); err != nil {
		t.Fatalf("attach: %v", err)
	}

	backend.AddWindow(platform.Window{ID: 5, Class: "term", Bounds: platform.Rect{X: 0, Y: 0, Width: 50, Height: 50}})
	backend.Emit(platform.Event{Kind: platform.WindowCreated, Window: 5})
	if !d.Tracks(5) {
		t.Fatalf("expected created window to be admitted")
	}

	backend.Emit(platform.Event{Kind: platform.WindowDestroyed, Window: 5})
	if d.Tracks(5) {
		t.Fatalf("expected destroyed window to be removed")
	}
}

type panickyHandler struct{}

func (panickyHandler) HandleEvent(platform.Event) { panic("boom") }

func TestStateSynchronizerRecoversFromPanics(t *testing.T) {
	s := NewStateSynchronizer(panickyHandler{}, quietLogger())
	s.Handle(platform.Event{Kind: platform.WindowActivated, Window: 1})
}
