//go:build linux

package platform

import (
	"fmt"
	"log"
	"sort"

	"github.com/1broseidon/splitwm/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var (
	_ Backend     = (*LinuxBackend)(nil)
	_ EventSource = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops the X11 event loop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays ordered by RandR CRTC index.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: rectFromMonitor(m),
			Usable: rectFromMonitor(conn.UsableArea(m)),
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// Windows lists manageable top-level windows in client-list order.
func (b *LinuxBackend) Windows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ClientList()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, id := range clients {
		if !conn.IsManageable(id) {
			continue
		}
		info, err := b.WindowInfo(WindowID(id))
		if err != nil {
			// The window can disappear between listing and querying.
			continue
		}
		windows = append(windows, info)
	}
	return windows, nil
}

// WindowInfo returns class, title, pid and geometry for a window.
func (b *LinuxBackend) WindowInfo(windowID WindowID) (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return Window{}, err
	}

	id := xproto.Window(windowID)
	x, y, w, h, err := conn.WindowGeometry(id)
	if err != nil {
		return Window{}, fmt.Errorf("window %d: %w", windowID, err)
	}
	return Window{
		ID:     windowID,
		PID:    conn.WindowPID(id),
		Class:  conn.WindowClass(id),
		Title:  conn.WindowTitle(id),
		Bounds: Rect{X: x, Y: y, Width: w, Height: h},
	}, nil
}

// IsManageable reports whether a window should be tiled.
func (b *LinuxBackend) IsManageable(windowID WindowID) bool {
	conn, err := b.connection()
	if err != nil {
		return false
	}
	return conn.IsManageable(xproto.Window(windowID))
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	return conn.MoveResizeWindow(
		xproto.Window(windowID),
		bounds.X,
		bounds.Y,
		bounds.Width,
		bounds.Height,
	)
}

// Show maps a window that was minimized by a workspace switch.
func (b *LinuxBackend) Show(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MapWindow(xproto.Window(windowID))
}

// Minimize minimizes a window via WM_CHANGE_STATE.
func (b *LinuxBackend) Minimize(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MinimizeWindow(xproto.Window(windowID))
}

// Focus activates and raises a window.
func (b *LinuxBackend) Focus(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.FocusWindow(xproto.Window(windowID))
}

// Close requests graceful window close via WM_DELETE_WINDOW.
func (b *LinuxBackend) Close(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.CloseWindow(xproto.Window(windowID))
}

// WarpPointer moves the pointer to absolute screen coordinates.
func (b *LinuxBackend) WarpPointer(x, y int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.WarpPointer(x, y)
}

// Subscribe starts delivering window lifecycle events to handler. Delivery
// happens on the event-loop goroutine, so handler must not block.
func (b *LinuxBackend) Subscribe(handler func(Event)) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	watcher, err := x11.NewWatcher(conn, eventAdapter{handler: handler})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	log.Println("Window event watcher started")
	return nil
}

type eventAdapter struct {
	handler func(Event)
}

func (a eventAdapter) WindowAdded(id xproto.Window) {
	a.handler(Event{Kind: WindowCreated, Window: WindowID(id)})
}

func (a eventAdapter) WindowRemoved(id xproto.Window) {
	a.handler(Event{Kind: WindowDestroyed, Window: WindowID(id)})
}

func (a eventAdapter) WindowActivated(id xproto.Window) {
	a.handler(Event{Kind: WindowActivated, Window: WindowID(id)})
}

func (a eventAdapter) ScreenChanged() {
	a.handler(Event{Kind: DisplaysChanged})
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func rectFromMonitor(m x11.Monitor) Rect {
	return Rect{
		X:      m.X,
		Y:      m.Y,
		Width:  m.Width,
		Height: m.Height,
	}
}
