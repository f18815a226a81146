package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"

	"github.com/1broseidon/splitwm/internal/platform"
	"github.com/shirou/gopsutil/v4/process"
)

// ErrLaunchTimeout is returned when a launched process shows no window
// within the polling budget.
var ErrLaunchTimeout = errors.New("launched process did not map a window in time")

// Placer moves a tracked window to a workspace.
type Placer interface {
	Tracks(id platform.WindowID) bool
	MoveWindowToWorkspace(id platform.WindowID, name string) error
}

// LauncherConfig bounds the wait for a launched window.
type LauncherConfig struct {
	Attempts int
	Delay    time.Duration
	Logger   *slog.Logger
}

// Launcher starts external processes and optionally places their first
// window on the workspace that was active at launch.
type Launcher struct {
	backend  platform.Backend
	placer   Placer
	attempts int
	delay    time.Duration
	logger   *slog.Logger

	start       func(cmdline string) (int, error)
	descendants func(pid int) map[int]bool
}

// NewLauncher creates a launcher. Zero config values fall back to 20
// attempts 250ms apart.
func NewLauncher(backend platform.Backend, placer Placer, cfg LauncherConfig) *Launcher {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 20
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Launcher{
		backend:     backend,
		placer:      placer,
		attempts:    attempts,
		delay:       delay,
		logger:      logger,
		start:       startShell,
		descendants: processTree,
	}
}

// Start runs cmdline through /bin/sh and returns the shell's pid.
func (l *Launcher) Start(cmdline string) (int, error) {
	pid, err := l.start(cmdline)
	if err != nil {
		return 0, fmt.Errorf("failed to launch %q: %w", cmdline, err)
	}
	l.logger.Info("process launched", "cmd", cmdline, "pid", pid)
	return pid, nil
}

// LaunchOnWorkspace starts cmdline and polls for a new window owned by the
// process or one of its descendants. The first such window that the
// director tracks is moved to workspace. Polling is bounded by the
// configured attempts and delay.
func (l *Launcher) LaunchOnWorkspace(ctx context.Context, cmdline, workspace string) error {
	before := make(map[platform.WindowID]bool)
	if windows, err := l.backend.Windows(); err == nil {
		for _, w := range windows {
			before[w.ID] = true
		}
	}

	pid, err := l.Start(cmdline)
	if err != nil {
		return err
	}

	timer := time.NewTimer(l.delay)
	defer timer.Stop()

	for attempt := 1; attempt <= l.attempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		if id, ok := l.findWindow(pid, before); ok {
			if err := l.placer.MoveWindowToWorkspace(id, workspace); err != nil {
				return fmt.Errorf("failed to place window %d: %w", id, err)
			}
			l.logger.Info("launched window placed",
				"window", id,
				"workspace", workspace,
				"attempt", attempt)
			return nil
		}
		timer.Reset(l.delay)
	}

	l.logger.Warn("launched window not found", "cmd", cmdline, "pid", pid, "attempts", l.attempts)
	return ErrLaunchTimeout
}

func (l *Launcher) findWindow(pid int, before map[platform.WindowID]bool) (platform.WindowID, bool) {
	windows, err := l.backend.Windows()
	if err != nil {
		l.logger.Debug("window list failed", "error", err)
		return 0, false
	}

	var owners map[int]bool
	for _, w := range windows {
		if before[w.ID] || w.PID == 0 {
			continue
		}
		if owners == nil {
			owners = l.descendants(pid)
			owners[pid] = true
		}
		if owners[w.PID] && l.placer.Tracks(w.ID) {
			return w.ID, true
		}
	}
	return 0, false
}

func startShell(cmdline string) (int, error) {
	cmd := exec.Command("/bin/sh", "-c", cmdline)
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	// Reap the child; launched programs are long-lived.
	go func() { _ = cmd.Wait() }()
	return pid, nil
}

// processTree returns the pids of every descendant of pid.
func processTree(pid int) map[int]bool {
	out := make(map[int]bool)
	queue := []int32{int32(pid)}
	for len(queue) > 0 {
		p, err := process.NewProcess(queue[0])
		queue = queue[1:]
		if err != nil {
			continue
		}
		children, err := p.Children()
		if err != nil {
			continue
		}
		for _, child := range children {
			if out[int(child.Pid)] {
				continue
			}
			out[int(child.Pid)] = true
			queue = append(queue, child.Pid)
		}
	}
	return out
}
