package director

import (
	"fmt"

	"github.com/1broseidon/splitwm/internal/platform"
	"github.com/1broseidon/splitwm/internal/tiling"
)

// WorkspaceState is a read-only view of one workspace.
type WorkspaceState struct {
	Name       string `json:"name"`
	Windows    int    `json:"windows"`
	Focused    bool   `json:"focused"`
	Layout     string `json:"layout"`
	Fullscreen bool   `json:"fullscreen,omitempty"`
}

// MonitorState is a read-only view of one monitor for status bars.
type MonitorState struct {
	Name             string           `json:"name"`
	X                int              `json:"x"`
	Y                int              `json:"y"`
	Width            int              `json:"width"`
	Height           int              `json:"height"`
	Focused          bool             `json:"focused"`
	FocusedWorkspace string           `json:"focused_workspace"`
	Workspaces       []WorkspaceState `json:"workspaces"`
}

// FocusedMonitor returns the name of the focused monitor, or "" before the
// first refresh.
func (d *Director) FocusedMonitor() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focused
}

// IsFocusedMonitor reports whether name is the focused monitor.
func (d *Director) IsFocusedMonitor(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focused != "" && d.focused == name
}

// FocusedWorkspace returns the focused workspace of the named monitor.
func (d *Director) FocusedWorkspace(monitorName string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := d.monitorLocked(monitorName)
	if m == nil {
		return "", fmt.Errorf("%s: %w", monitorName, ErrMonitorNotFound)
	}
	return m.focused, nil
}

// Workspaces returns the workspace names of the named monitor in display order.
func (d *Director) Workspaces(monitorName string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := d.monitorLocked(monitorName)
	if m == nil {
		return nil, fmt.Errorf("%s: %w", monitorName, ErrMonitorNotFound)
	}
	return m.sortedNames(), nil
}

// ActiveWorkspace returns the focused workspace of the focused monitor.
func (d *Director) ActiveWorkspace() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := d.focusedMonitorLocked()
	if m == nil {
		return ""
	}
	return m.focused
}

// WorkspaceOf returns the name of the workspace holding the window.
func (d *Director) WorkspaceOf(id platform.WindowID) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	w, m := d.locateLocked(id)
	if w == nil {
		return "", false
	}
	return m.containing(w).Name(), true
}

// Tracks reports whether the window is managed.
func (d *Director) Tracks(id platform.WindowID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, _ := d.locateLocked(id)
	return w != nil
}

// WindowCount returns the number of managed windows.
func (d *Director) WindowCount() int {
	return d.registry.Len()
}

// Snapshot returns the state of every monitor in enumeration order.
func (d *Director) Snapshot() []MonitorState {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]MonitorState, 0, len(d.monitors))
	for _, m := range d.monitors {
		state := MonitorState{
			Name:             m.name,
			X:                m.bounds.X,
			Y:                m.bounds.Y,
			Width:            m.bounds.Width,
			Height:           m.bounds.Height,
			Focused:          m.name == d.focused,
			FocusedWorkspace: m.focused,
		}
		for _, name := range m.sortedNames() {
			ws := m.workspaces[name]
			state.Workspaces = append(state.Workspaces, WorkspaceState{
				Name:       name,
				Windows:    ws.Count(),
				Focused:    name == m.focused,
				Layout:     ws.Root().Signature(),
				Fullscreen: ws.FullscreenWindow() != nil,
			})
		}
		out = append(out, state)
	}
	return out
}

// ActiveWindow returns the focused window of the active workspace.
func (d *Director) ActiveWindow() (*tiling.Window, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w := d.activeWindowLocked()
	return w, w != nil
}
