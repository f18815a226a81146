package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Center returns the center point of r.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID
	PID    int
	Class  string
	Title  string
	Bounds Rect
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	ActiveWindow() (WindowID, error)
	Windows() ([]Window, error)
	WindowInfo(windowID WindowID) (Window, error)
	IsManageable(windowID WindowID) bool
	MoveResize(windowID WindowID, bounds Rect) error
	Show(windowID WindowID) error
	Minimize(windowID WindowID) error
	Focus(windowID WindowID) error
	Close(windowID WindowID) error
	WarpPointer(x, y int) error
}

// EventKind identifies a window lifecycle notification.
type EventKind int

const (
	WindowCreated EventKind = iota
	WindowDestroyed
	WindowActivated
	DisplaysChanged
)

// String returns the event kind name used in logs.
func (k EventKind) String() string {
	switch k {
	case WindowCreated:
		return "created"
	case WindowDestroyed:
		return "destroyed"
	case WindowActivated:
		return "activated"
	case DisplaysChanged:
		return "displays-changed"
	default:
		return "unknown"
	}
}

// Event is a single notification delivered by an EventSource.
type Event struct {
	Kind   EventKind
	Window WindowID
}

// EventSource delivers window lifecycle notifications on its own goroutine.
type EventSource interface {
	Subscribe(handler func(Event)) error
}
