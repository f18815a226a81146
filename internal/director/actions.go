package director

import (
	"fmt"

	"github.com/1broseidon/splitwm/internal/platform"
	"github.com/1broseidon/splitwm/internal/tiling"
)

// SwitchWorkspace focuses the named workspace, creating it on the focused
// monitor when no monitor owns it. When the owning monitor differs from the
// focused one, focus moves there and the pointer is warped to its center.
func (d *Director) SwitchWorkspace(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.switchWorkspaceLocked(name, true)
}

func (d *Director) switchWorkspaceLocked(name string, warp bool) error {
	ws, err := d.showWorkspaceLocked(name, warp)
	if err != nil {
		return err
	}
	d.focusWindowLocked(ws.FocusedWindow())
	return nil
}

// showWorkspaceLocked makes name the focused workspace and arranges it
// without moving input focus.
func (d *Director) showWorkspaceLocked(name string, warp bool) (*tiling.Workspace, error) {
	if name == "" {
		return nil, fmt.Errorf("empty workspace name: %w", ErrWorkspaceNotFound)
	}
	current := d.focusedMonitorLocked()
	if current == nil {
		return nil, ErrNoMonitors
	}

	ws, owner := d.findWorkspaceLocked(name)
	if ws == nil {
		owner = current
		ws = owner.createWorkspace(name)
		d.names.Reserve(name)
		d.logger.Debug("workspace created", "workspace", name, "monitor", owner.name)
	}

	owner.focused = name
	d.focused = owner.name
	d.collectLocked()
	d.arrangeMonitorLocked(owner)

	if warp && owner != current {
		x, y := owner.center()
		if err := d.backend.WarpPointer(x, y); err != nil {
			d.logger.Warn("pointer warp failed", "monitor", owner.name, "error", err)
		}
	}
	return ws, nil
}

// CycleWorkspace moves to the next (delta > 0) or previous workspace of the
// focused monitor in name order, wrapping at the ends.
func (d *Director) CycleWorkspace(delta int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := d.focusedMonitorLocked()
	if m == nil {
		return ErrNoMonitors
	}
	names := m.sortedNames()
	if len(names) < 2 || delta == 0 {
		return nil
	}

	idx := 0
	for i, name := range names {
		if name == m.focused {
			idx = i
			break
		}
	}
	next := ((idx+delta)%len(names) + len(names)) % len(names)
	return d.switchWorkspaceLocked(names[next], false)
}

// MoveActiveToWorkspace moves the active window to the named workspace. A
// missing workspace is created on the focused monitor.
func (d *Director) MoveActiveToWorkspace(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	w := d.activeWindowLocked()
	if w == nil {
		return tiling.ErrNoFocusedWindow
	}
	if err := d.moveWindowLocked(w, name); err != nil {
		return err
	}
	d.arrangeAllLocked()
	return nil
}

// MoveWindowToWorkspace moves a tracked window to the named workspace.
func (d *Director) MoveWindowToWorkspace(id platform.WindowID, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	w, _ := d.locateLocked(id)
	if w == nil {
		return tiling.ErrWindowNotFound
	}
	if err := d.moveWindowLocked(w, name); err != nil {
		return err
	}
	d.arrangeAllLocked()
	return nil
}

func (d *Director) moveWindowLocked(w *tiling.Window, name string) error {
	if name == "" {
		return fmt.Errorf("empty workspace name: %w", ErrWorkspaceNotFound)
	}
	var source *tiling.Workspace
	for _, m := range d.monitors {
		if source = m.containing(w); source != nil {
			break
		}
	}
	if source == nil {
		return tiling.ErrWindowNotFound
	}
	if source.Name() == name {
		return nil
	}

	target, _ := d.findWorkspaceLocked(name)
	if target == nil {
		m := d.focusedMonitorLocked()
		if m == nil {
			return ErrNoMonitors
		}
		target = m.createWorkspace(name)
		d.names.Reserve(name)
	}

	if err := source.RemoveWindow(w); err != nil {
		return err
	}
	if err := target.AddWindow(w); err != nil {
		return err
	}
	d.collectLocked()
	d.logger.Debug("window moved", "window", w.ID, "from", source.Name(), "to", name)
	return nil
}

// FocusMonitor focuses the previous (Left) or next (Right) monitor in
// enumeration order, wrapping, and warps the pointer to its center.
func (d *Director) FocusMonitor(dir tiling.Direction) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next, err := d.neighborMonitorLocked(dir)
	if err != nil || next == nil {
		return err
	}
	d.focused = next.name
	x, y := next.center()
	if err := d.backend.WarpPointer(x, y); err != nil {
		d.logger.Warn("pointer warp failed", "monitor", next.name, "error", err)
	}
	d.focusWindowLocked(next.focusedWorkspace().FocusedWindow())
	return nil
}

// MoveActiveToMonitor moves the active window to the focused workspace of
// the neighboring monitor.
func (d *Director) MoveActiveToMonitor(dir tiling.Direction) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	w := d.activeWindowLocked()
	if w == nil {
		return tiling.ErrNoFocusedWindow
	}
	next, err := d.neighborMonitorLocked(dir)
	if err != nil || next == nil {
		return err
	}
	if err := d.moveWindowLocked(w, next.focused); err != nil {
		return err
	}
	d.arrangeAllLocked()
	return nil
}

// neighborMonitorLocked returns nil when there is only one monitor.
func (d *Director) neighborMonitorLocked(dir tiling.Direction) (*Monitor, error) {
	if dir != tiling.Left && dir != tiling.Right {
		return nil, fmt.Errorf("monitor %s: %w", dir, tiling.ErrUnsupportedDirection)
	}
	if len(d.monitors) == 0 {
		return nil, ErrNoMonitors
	}
	if len(d.monitors) == 1 {
		return nil, nil
	}

	idx := 0
	for i, m := range d.monitors {
		if m.name == d.focused {
			idx = i
			break
		}
	}
	step := 1
	if dir == tiling.Left {
		step = -1
	}
	n := len(d.monitors)
	return d.monitors[((idx+step)%n+n)%n], nil
}

// ToggleFloating flips the floating flag of the active window.
func (d *Director) ToggleFloating() error {
	return d.withActiveWorkspace(func(m *Monitor, ws *tiling.Workspace, w *tiling.Window) error {
		if _, err := ws.ToggleFloating(w); err != nil {
			return err
		}
		d.arrangeMonitorLocked(m)
		return nil
	})
}

// ToggleFullscreen toggles fullscreen for the active window.
func (d *Director) ToggleFullscreen() error {
	return d.withActiveWorkspace(func(m *Monitor, ws *tiling.Workspace, _ *tiling.Window) error {
		if _, err := ws.ToggleFullscreen(); err != nil {
			return err
		}
		d.arrangeMonitorLocked(m)
		return nil
	})
}

// CloseActive asks the active window to close. Removal happens when the
// destroy event arrives.
func (d *Director) CloseActive() error {
	return d.withActiveWorkspace(func(_ *Monitor, _ *tiling.Workspace, w *tiling.Window) error {
		return d.backend.Close(w.ID)
	})
}

// Split splits the active window's leaf.
func (d *Director) Split(orientation tiling.Orientation) error {
	return d.withActiveWorkspace(func(m *Monitor, ws *tiling.Workspace, _ *tiling.Window) error {
		if err := ws.Split(orientation); err != nil {
			return err
		}
		d.arrangeMonitorLocked(m)
		return nil
	})
}

// MoveActive swaps the active window with its neighbor in the same leaf.
func (d *Director) MoveActive(dir tiling.Direction) error {
	return d.withActiveWorkspace(func(m *Monitor, ws *tiling.Workspace, _ *tiling.Window) error {
		if err := ws.MoveFocusedWindow(dir); err != nil {
			return err
		}
		d.arrangeMonitorLocked(m)
		return nil
	})
}

// FocusDirection moves focus to the neighboring window of the active workspace.
func (d *Director) FocusDirection(dir tiling.Direction) error {
	return d.withActiveWorkspace(func(_ *Monitor, ws *tiling.Workspace, _ *tiling.Window) error {
		w, err := ws.FocusDirection(dir)
		if err != nil {
			return err
		}
		d.focusWindowLocked(w)
		return nil
	})
}

func (d *Director) withActiveWorkspace(fn func(*Monitor, *tiling.Workspace, *tiling.Window) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := d.focusedMonitorLocked()
	if m == nil {
		return ErrNoMonitors
	}
	ws := m.focusedWorkspace()
	w := ws.FocusedWindow()
	if w == nil {
		return tiling.ErrNoFocusedWindow
	}
	return fn(m, ws, w)
}

func (d *Director) focusWindowLocked(w *tiling.Window) {
	if w == nil {
		return
	}
	if err := d.backend.Focus(w.ID); err != nil {
		d.logger.Debug("focus failed", "window", w.ID, "error", err)
	}
}
