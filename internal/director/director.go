// Package director coordinates monitors, workspaces and window admission.
//
// Every exported method takes the director lock for its whole duration, so
// operations issued concurrently by the event source and by command workers
// are applied one at a time.
package director

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/1broseidon/splitwm/internal/platform"
	"github.com/1broseidon/splitwm/internal/rules"
	"github.com/1broseidon/splitwm/internal/tiling"
)

var (
	// ErrMonitorNotFound is returned when a named monitor does not exist.
	ErrMonitorNotFound = errors.New("monitor not found")
	// ErrWorkspaceNotFound is returned when a named workspace does not exist.
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrNoMonitors is returned before the first successful refresh.
	ErrNoMonitors = errors.New("no monitors")
)

// Options configures a Director.
type Options struct {
	Padding tiling.Padding
	Rules   []rules.Rule
	Logger  *slog.Logger
}

// Director owns the monitor list, the focused monitor and the rule list.
type Director struct {
	mu       sync.Mutex
	backend  platform.Backend
	registry *tiling.Registry
	names    *tiling.NameCounter
	padding  tiling.Padding
	rules    []rules.Rule
	logger   *slog.Logger

	monitors []*Monitor
	focused  string
}

// New creates a Director. Call Refresh to discover monitors.
func New(backend platform.Backend, opts Options) *Director {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Director{
		backend:  backend,
		registry: tiling.NewRegistry(),
		names:    tiling.NewNameCounter(),
		padding:  opts.Padding,
		rules:    opts.Rules,
		logger:   logger,
	}
}

// SetRules replaces the rule list used for future admissions.
func (d *Director) SetRules(r []rules.Rule) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rules = r
}

// SetPadding changes the screen padding and re-arranges every monitor.
func (d *Director) SetPadding(p tiling.Padding) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	areas := make([]tiling.Rect, len(d.monitors))
	for i, m := range d.monitors {
		area, err := tiling.ApplyPadding(m.usable, p)
		if err != nil {
			return fmt.Errorf("monitor %s: %w", m.name, err)
		}
		areas[i] = area
	}
	d.padding = p
	for i, m := range d.monitors {
		m.area = areas[i]
	}
	d.arrangeAllLocked()
	return nil
}

// Refresh re-enumerates displays and rebuilds the monitor list from scratch.
// The first display becomes focused. Live windows are then re-admitted to
// the monitor containing their center.
func (d *Director) Refresh() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refreshLocked()
}

func (d *Director) refreshLocked() error {
	displays, err := d.backend.Displays()
	if err != nil {
		return fmt.Errorf("failed to enumerate displays: %w", err)
	}
	if len(displays) == 0 {
		return ErrNoMonitors
	}

	usables := make([]tiling.Rect, len(displays))
	areas := make([]tiling.Rect, len(displays))
	for i, disp := range displays {
		usable := disp.Usable
		if usable.Width <= 0 || usable.Height <= 0 {
			usable = disp.Bounds
		}
		usables[i] = tiling.RectFromPlatform(usable)
		padded, err := tiling.ApplyPadding(usables[i], d.padding)
		if err != nil {
			return fmt.Errorf("monitor %s: %w", disp.Name, err)
		}
		areas[i] = padded
	}

	for _, id := range d.registry.IDs() {
		d.registry.Forget(id)
	}
	d.names.Reset()

	monitors := make([]*Monitor, 0, len(displays))
	for i, disp := range displays {
		m := newMonitor(disp.ID, disp.Name, tiling.RectFromPlatform(disp.Bounds), d.names.Next())
		m.usable = usables[i]
		m.area = areas[i]
		monitors = append(monitors, m)
	}
	d.monitors = monitors
	d.focused = monitors[0].name

	d.logger.Info("monitors refreshed", "count", len(monitors), "focused", d.focused)

	d.scanLocked()
	d.arrangeAllLocked()
	return nil
}

// scanLocked admits every manageable window the backend lists.
func (d *Director) scanLocked() {
	windows, err := d.backend.Windows()
	if err != nil {
		d.logger.Warn("window scan failed", "error", err)
		return
	}
	for _, info := range windows {
		if _, tracked := d.locateLocked(info.ID); tracked != nil {
			continue
		}
		cx, cy := info.Bounds.Center()
		m := d.monitorAtLocked(cx, cy)
		if err := d.admitLocked(m, info); err != nil {
			d.logger.Warn("failed to admit window", "window", info.ID, "error", err)
		}
	}
}

// AddWindow admits a window to the focused workspace of the named monitor,
// runs the rule list against it and re-arranges.
func (d *Director) AddWindow(monitorName string, id platform.WindowID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := d.monitorLocked(monitorName)
	if m == nil {
		return fmt.Errorf("%s: %w", monitorName, ErrMonitorNotFound)
	}
	if w, _ := d.locateLocked(id); w != nil {
		return tiling.ErrWindowExists
	}
	info, err := d.backend.WindowInfo(id)
	if err != nil {
		return err
	}
	if err := d.admitLocked(m, info); err != nil {
		return err
	}
	d.arrangeAllLocked()
	return nil
}

func (d *Director) admitLocked(m *Monitor, info platform.Window) error {
	previous := d.activeWindowLocked()

	w := d.registry.Get(info.ID)
	w.SetInfo(info.Class, info.Title)
	w.SetGeometry(tiling.RectFromPlatform(info.Bounds))

	ws := m.focusedWorkspace()
	if err := ws.AddWindow(w); err != nil {
		d.registry.Forget(info.ID)
		return err
	}
	d.logger.Debug("window admitted",
		"window", info.ID,
		"class", info.Class,
		"monitor", m.name,
		"workspace", ws.Name())

	target := ruleTarget{d: d, focused: previous}
	matched, err := rules.Apply(d.rules, target, w)
	if matched > 0 {
		d.logger.Debug("rules matched", "window", info.ID, "count", matched)
	}
	if err != nil {
		d.logger.Warn("rule action failed", "window", info.ID, "error", err)
	}
	return nil
}

// RemoveWindow forgets a window, trying each monitor in order.
func (d *Director) RemoveWindow(id platform.WindowID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.removeLocked(id)
}

func (d *Director) removeLocked(id platform.WindowID) error {
	w, ok := d.registry.Lookup(id)
	if !ok {
		return tiling.ErrWindowNotFound
	}

	for _, m := range d.monitors {
		ws := m.containing(w)
		if ws == nil {
			continue
		}
		if err := ws.RemoveWindow(w); err != nil {
			return err
		}
		d.registry.Forget(id)
		d.collectLocked()
		d.arrangeMonitorLocked(m)
		return nil
	}
	d.registry.Forget(id)
	return tiling.ErrWindowNotFound
}

// SetActiveWindow switches to the workspace holding the window and focuses it.
func (d *Director) SetActiveWindow(id platform.WindowID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	w, m := d.locateLocked(id)
	if w == nil {
		return tiling.ErrWindowNotFound
	}
	ws := m.containing(w)
	if m.focused != ws.Name() || d.focused != m.name {
		if _, err := d.showWorkspaceLocked(ws.Name(), false); err != nil {
			return err
		}
	}
	if err := ws.SetFocusedWindow(w); err != nil {
		return err
	}
	d.arrangeMonitorLocked(m)
	// The window system usually reports an activation it already made;
	// focusing again would echo another event back.
	if active, err := d.backend.ActiveWindow(); err != nil || active != w.ID {
		d.focusWindowLocked(w)
	}
	return nil
}

// HandleEvent applies a window lifecycle event. New windows go to the
// focused monitor. Events about unknown windows are ignored.
func (d *Director) HandleEvent(ev platform.Event) {
	var err error
	switch ev.Kind {
	case platform.WindowCreated:
		if !d.backend.IsManageable(ev.Window) {
			return
		}
		err = d.AddWindow(d.FocusedMonitor(), ev.Window)
		if errors.Is(err, tiling.ErrWindowExists) {
			err = nil
		}
	case platform.WindowDestroyed:
		err = d.RemoveWindow(ev.Window)
		if errors.Is(err, tiling.ErrWindowNotFound) {
			err = nil
		}
	case platform.WindowActivated:
		err = d.SetActiveWindow(ev.Window)
		if errors.Is(err, tiling.ErrWindowNotFound) {
			err = nil
		}
	case platform.DisplaysChanged:
		err = d.Refresh()
	}
	if err != nil {
		d.logger.Warn("event handling failed", "event", ev.Kind.String(), "window", ev.Window, "error", err)
	}
}

// Reconcile drops tracked windows the backend no longer lists and admits
// manageable windows that were missed.
func (d *Director) Reconcile() (removed, added int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.monitors) == 0 {
		return 0, 0, ErrNoMonitors
	}
	windows, err := d.backend.Windows()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list windows: %w", err)
	}

	live := make(map[platform.WindowID]platform.Window, len(windows))
	for _, info := range windows {
		live[info.ID] = info
	}

	for _, id := range d.registry.IDs() {
		if _, ok := live[id]; ok {
			continue
		}
		if d.removeLocked(id) == nil {
			removed++
		}
	}
	for _, info := range windows {
		if w, _ := d.locateLocked(info.ID); w != nil {
			continue
		}
		cx, cy := info.Bounds.Center()
		if d.admitLocked(d.monitorAtLocked(cx, cy), info) == nil {
			added++
		}
	}
	if added > 0 {
		d.arrangeAllLocked()
	}
	return removed, added, nil
}

// Arrange re-lays out every monitor.
func (d *Director) Arrange() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.arrangeAllLocked()
}

func (d *Director) arrangeAllLocked() {
	for _, m := range d.monitors {
		d.arrangeMonitorLocked(m)
	}
}

// arrangeMonitorLocked lays out the focused workspace of m and minimizes the
// others. Backend failures are logged and skipped.
func (d *Director) arrangeMonitorLocked(m *Monitor) {
	for name, ws := range m.workspaces {
		if name == m.focused {
			continue
		}
		if err := ws.Minimize(d.backend); err != nil {
			d.logger.Debug("minimize incomplete", "workspace", name, "error", err)
		}
	}
	if ws := m.focusedWorkspace(); ws != nil {
		if err := ws.Arrange(d.backend, m.area); err != nil {
			d.logger.Debug("arrange incomplete", "workspace", ws.Name(), "error", err)
		}
	}
}

// collectLocked destroys empty workspaces that no monitor focuses and
// releases their numeric names.
func (d *Director) collectLocked() {
	for _, m := range d.monitors {
		for name, ws := range m.workspaces {
			if name == m.focused || !ws.Empty() {
				continue
			}
			delete(m.workspaces, name)
			d.names.Release(name)
			d.logger.Debug("workspace destroyed", "workspace", name, "monitor", m.name)
		}
	}
}

func (d *Director) monitorLocked(name string) *Monitor {
	for _, m := range d.monitors {
		if m.name == name {
			return m
		}
	}
	return nil
}

func (d *Director) focusedMonitorLocked() *Monitor {
	return d.monitorLocked(d.focused)
}

// monitorAtLocked returns the monitor containing the point, or the focused one.
func (d *Director) monitorAtLocked(x, y int) *Monitor {
	for _, m := range d.monitors {
		if m.containsPoint(x, y) {
			return m
		}
	}
	return d.focusedMonitorLocked()
}

// locateLocked finds the tracked window and its monitor.
func (d *Director) locateLocked(id platform.WindowID) (*tiling.Window, *Monitor) {
	w, ok := d.registry.Lookup(id)
	if !ok {
		return nil, nil
	}
	for _, m := range d.monitors {
		if m.containing(w) != nil {
			return w, m
		}
	}
	return nil, nil
}

// findWorkspaceLocked returns the workspace with the given name and its owner.
func (d *Director) findWorkspaceLocked(name string) (*tiling.Workspace, *Monitor) {
	for _, m := range d.monitors {
		if ws := m.workspace(name); ws != nil {
			return ws, m
		}
	}
	return nil, nil
}

// activeWindowLocked is the focused window of the focused workspace of the
// focused monitor.
func (d *Director) activeWindowLocked() *tiling.Window {
	m := d.focusedMonitorLocked()
	if m == nil {
		return nil
	}
	ws := m.focusedWorkspace()
	if ws == nil {
		return nil
	}
	return ws.FocusedWindow()
}

// ruleTarget exposes director internals to rule actions while the lock is
// held. focused is the window that was active before the admission.
type ruleTarget struct {
	d       *Director
	focused *tiling.Window
}

func (t ruleTarget) FocusedWindow() *tiling.Window {
	return t.focused
}

func (t ruleTarget) SetFloating(w *tiling.Window) {
	w.SetFloating(true)
}

func (t ruleTarget) MoveToWorkspace(w *tiling.Window, name string) error {
	return t.d.moveWindowLocked(w, name)
}
