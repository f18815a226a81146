package daemon

import (
	"context"
	"log/slog"
	"time"
)

// Target is the state the reconciler keeps in line with the window system.
type Target interface {
	Reconcile() (removed, added int, err error)
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically drops windows the window system no longer lists
// and admits manageable windows whose creation event was missed.
type Reconciler struct {
	interval time.Duration
	target   Target
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, target Target) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		target:   target,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() (removed, added int) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	removed, added, err := r.target.Reconcile()
	if err != nil {
		r.logger.Warn("reconciler: pass incomplete", "error", err)
	}
	if removed > 0 || added > 0 {
		r.logger.Info("reconciler: drift corrected",
			"removed", removed,
			"added", added)
	}
	return removed, added
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() (removed, added int) {
	return r.reconcile()
}
