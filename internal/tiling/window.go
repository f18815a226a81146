package tiling

import (
	"sync"

	"github.com/1broseidon/splitwm/internal/platform"
)

// Window is the manager-side state of one native top-level window. Identity
// is the native handle; the Registry guarantees one instance per handle.
type Window struct {
	ID platform.WindowID

	mu       sync.Mutex
	class    string
	title    string
	floating bool
	geometry Rect
}

// Class returns the WM_CLASS recorded when the window was admitted.
func (w *Window) Class() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.class
}

// Title returns the last known title.
func (w *Window) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

// SetInfo records class and title from the backend.
func (w *Window) SetInfo(class, title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.class = class
	w.title = title
}

// Floating reports whether the window is excluded from tiling.
func (w *Window) Floating() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.floating
}

// SetFloating sets the floating flag.
func (w *Window) SetFloating(floating bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.floating = floating
}

// ToggleFloating flips the floating flag and returns the new value.
func (w *Window) ToggleFloating() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.floating = !w.floating
	return w.floating
}

// Geometry returns the last placed bounds.
func (w *Window) Geometry() Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.geometry
}

// SetGeometry records the last placed bounds.
func (w *Window) SetGeometry(r Rect) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.geometry = r
}

// Registry maps native handles to their canonical Window.
type Registry struct {
	mu      sync.Mutex
	windows map[platform.WindowID]*Window
}

// NewRegistry creates an empty window registry.
func NewRegistry() *Registry {
	return &Registry{windows: make(map[platform.WindowID]*Window)}
}

// Get returns the canonical Window for id, creating it on first sight.
// Concurrent callers observing the same handle receive the same instance.
func (r *Registry) Get(id platform.WindowID) *Window {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.windows[id]; ok {
		return w
	}
	w := &Window{ID: id}
	r.windows[id] = w
	return w
}

// Lookup returns the Window for id without creating one.
func (r *Registry) Lookup(id platform.WindowID) (*Window, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[id]
	return w, ok
}

// Forget drops id from the registry.
func (r *Registry) Forget(id platform.WindowID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.windows, id)
}

// IDs returns every registered handle.
func (r *Registry) IDs() []platform.WindowID {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]platform.WindowID, 0, len(r.windows))
	for id := range r.windows {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of registered windows.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.windows)
}
