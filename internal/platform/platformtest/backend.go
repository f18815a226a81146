// Package platformtest provides an in-memory platform backend for tests.
package platformtest

import (
	"fmt"
	"sync"

	"github.com/1broseidon/splitwm/internal/platform"
)

// Call records one mutating backend call.
type Call struct {
	Op     string
	Window platform.WindowID
	Bounds platform.Rect
}

// Backend is a fake window system. Windows listed in Unmanaged are reported
// as not manageable; windows in Broken fail every mutating call.
type Backend struct {
	mu sync.Mutex

	displays  []platform.Display
	windows   map[platform.WindowID]platform.Window
	order     []platform.WindowID
	active    platform.WindowID
	unmanaged map[platform.WindowID]bool
	broken    map[platform.WindowID]bool
	calls     []Call
	pointerX  int
	pointerY  int
	handler   func(platform.Event)
}

var (
	_ platform.Backend     = (*Backend)(nil)
	_ platform.EventSource = (*Backend)(nil)
)

// New creates a backend with the given displays.
func New(displays ...platform.Display) *Backend {
	return &Backend{
		displays:  displays,
		windows:   make(map[platform.WindowID]platform.Window),
		unmanaged: make(map[platform.WindowID]bool),
		broken:    make(map[platform.WindowID]bool),
	}
}

// Display builds a display whose usable area equals its bounds.
func Display(id int, name string, x, y, w, h int) platform.Display {
	r := platform.Rect{X: x, Y: y, Width: w, Height: h}
	return platform.Display{ID: id, Name: name, Bounds: r, Usable: r}
}

// SetDisplays replaces the display list.
func (b *Backend) SetDisplays(displays ...platform.Display) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.displays = displays
}

// AddWindow registers a native window.
func (b *Backend) AddWindow(w platform.Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.windows[w.ID]; !ok {
		b.order = append(b.order, w.ID)
	}
	b.windows[w.ID] = w
}

// RemoveWindow drops a native window.
func (b *Backend) RemoveWindow(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.windows, id)
	for i, existing := range b.order {
		if existing == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// SetUnmanaged marks a window as shell chrome.
func (b *Backend) SetUnmanaged(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unmanaged[id] = true
}

// SetBroken makes every mutating call on id fail.
func (b *Backend) SetBroken(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broken[id] = true
}

// SetActive sets the window reported by ActiveWindow.
func (b *Backend) SetActive(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = id
}

// Emit delivers an event to the subscribed handler, if any.
func (b *Backend) Emit(ev platform.Event) {
	b.mu.Lock()
	handler := b.handler
	b.mu.Unlock()
	if handler != nil {
		handler(ev)
	}
}

// Calls returns a copy of the recorded calls.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// ResetCalls clears the call log.
func (b *Backend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

// LastBounds returns the most recent MoveResize bounds for id.
func (b *Backend) LastBounds(id platform.WindowID) (platform.Rect, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.calls) - 1; i >= 0; i-- {
		c := b.calls[i]
		if c.Op == "move" && c.Window == id {
			return c.Bounds, true
		}
	}
	return platform.Rect{}, false
}

// LastOp returns the most recent show/minimize/close op for id.
func (b *Backend) LastOp(id platform.WindowID) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.calls) - 1; i >= 0; i-- {
		c := b.calls[i]
		if c.Window == id && (c.Op == "show" || c.Op == "minimize" || c.Op == "close") {
			return c.Op
		}
	}
	return ""
}

// Pointer returns the last warped pointer position.
func (b *Backend) Pointer() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pointerX, b.pointerY
}

func (b *Backend) Displays() ([]platform.Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]platform.Display, len(b.displays))
	copy(out, b.displays)
	return out, nil
}

func (b *Backend) ActiveWindow() (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active, nil
}

func (b *Backend) Windows() ([]platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]platform.Window, 0, len(b.order))
	for _, id := range b.order {
		if b.unmanaged[id] {
			continue
		}
		out = append(out, b.windows[id])
	}
	return out, nil
}

func (b *Backend) WindowInfo(id platform.WindowID) (platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[id]
	if !ok {
		return platform.Window{}, fmt.Errorf("window %d: not found", id)
	}
	return w, nil
}

func (b *Backend) IsManageable(id platform.WindowID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.windows[id]
	return ok && !b.unmanaged[id]
}

func (b *Backend) MoveResize(id platform.WindowID, bounds platform.Rect) error {
	return b.record(Call{Op: "move", Window: id, Bounds: bounds})
}

func (b *Backend) Show(id platform.WindowID) error {
	return b.record(Call{Op: "show", Window: id})
}

func (b *Backend) Minimize(id platform.WindowID) error {
	return b.record(Call{Op: "minimize", Window: id})
}

func (b *Backend) Focus(id platform.WindowID) error {
	if err := b.record(Call{Op: "focus", Window: id}); err != nil {
		return err
	}
	b.mu.Lock()
	b.active = id
	b.mu.Unlock()
	return nil
}

func (b *Backend) Close(id platform.WindowID) error {
	return b.record(Call{Op: "close", Window: id})
}

func (b *Backend) WarpPointer(x, y int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pointerX, b.pointerY = x, y
	b.calls = append(b.calls, Call{Op: "warp", Bounds: platform.Rect{X: x, Y: y}})
	return nil
}

func (b *Backend) Subscribe(handler func(platform.Event)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = handler
	return nil
}

func (b *Backend) record(c Call) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.broken[c.Window] {
		return fmt.Errorf("window %d: bad window", c.Window)
	}
	b.calls = append(b.calls, c)
	return nil
}
