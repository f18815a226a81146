package tiling

import (
	"errors"
	"fmt"
	"log"

	"github.com/1broseidon/splitwm/internal/platform"
)

// Workspace is one tiling tree plus focus and fullscreen keys. Focus and
// fullscreen are handles resolved against the tree on use, so a removed
// window never leaves a dangling reference.
//
// Workspace is not safe for concurrent use; the Director serializes access.
type Workspace struct {
	name       string
	root       *Container
	focused    platform.WindowID
	hasFocus   bool
	fullscreen platform.WindowID
	hasFull    bool
}

// Placement is the computed layout of a single window.
type Placement struct {
	Window   *Window
	Bounds   Rect
	Floating bool
	// Hidden is set for tiled windows covered by a fullscreen window.
	Hidden bool
}

// NewWorkspace creates a workspace whose tree is a single empty leaf.
func NewWorkspace(name string) *Workspace {
	return &Workspace{
		name: name,
		root: NewContainer(Horizontal),
	}
}

// Name returns the workspace name.
func (ws *Workspace) Name() string {
	return ws.name
}

// Root returns the tree root.
func (ws *Workspace) Root() *Container {
	return ws.root
}

// Contains reports whether w is anywhere in the tree.
func (ws *Workspace) Contains(w *Window) bool {
	return ws.root.Locate(w) != nil
}

// Windows returns all windows in depth-first order.
func (ws *Workspace) Windows() []*Window {
	return ws.root.Windows()
}

// Count returns the number of windows in the tree.
func (ws *Workspace) Count() int {
	return ws.root.Count()
}

// Empty reports whether the workspace holds no windows.
func (ws *Workspace) Empty() bool {
	return ws.root.FirstWindow() == nil
}

// FocusedWindow resolves the focus key, returning nil when unset or stale.
func (ws *Workspace) FocusedWindow() *Window {
	if !ws.hasFocus {
		return nil
	}
	return ws.find(ws.focused)
}

// FullscreenWindow resolves the fullscreen key.
func (ws *Workspace) FullscreenWindow() *Window {
	if !ws.hasFull {
		return nil
	}
	return ws.find(ws.fullscreen)
}

// AddWindow admits w. It joins the leaf of the focused window; on a
// workspace without focus it joins the first leaf and becomes focused.
func (ws *Workspace) AddWindow(w *Window) error {
	if ws.Contains(w) {
		return ErrWindowExists
	}

	if focused := ws.FocusedWindow(); focused != nil {
		return ws.root.Locate(focused).AddWindow(w)
	}

	leaf := ws.root.FirstLeaf()
	if first := ws.root.FirstWindow(); first != nil {
		leaf = ws.root.Locate(first)
	}
	if leaf == nil {
		return ErrNotLeaf
	}
	if err := leaf.AddWindow(w); err != nil {
		return err
	}
	ws.setFocus(w)
	return nil
}

// RemoveWindow detaches w and prunes the tree. Focus moves to the first
// remaining window when w was focused.
func (ws *Workspace) RemoveWindow(w *Window) error {
	if !ws.root.Remove(w) {
		return ErrWindowNotFound
	}
	ws.root.Prune()

	if ws.hasFull && ws.fullscreen == w.ID {
		ws.hasFull = false
	}
	if ws.hasFocus && ws.focused == w.ID {
		if next := ws.root.FirstWindow(); next != nil {
			ws.setFocus(next)
		} else {
			ws.hasFocus = false
		}
	}
	return nil
}

// SetFocusedWindow focuses w, which must be in the tree.
func (ws *Workspace) SetFocusedWindow(w *Window) error {
	if !ws.Contains(w) {
		return ErrWindowNotFound
	}
	ws.setFocus(w)
	return nil
}

// ToggleFloating flips w's floating flag in place and returns the new value.
func (ws *Workspace) ToggleFloating(w *Window) (bool, error) {
	if !ws.Contains(w) {
		return false, ErrWindowNotFound
	}
	return w.ToggleFloating(), nil
}

// ToggleFullscreen toggles fullscreen for the focused window.
func (ws *Workspace) ToggleFullscreen() (bool, error) {
	focused := ws.FocusedWindow()
	if focused == nil {
		return false, ErrNoFocusedWindow
	}
	if ws.hasFull && ws.fullscreen == focused.ID {
		ws.hasFull = false
		return false, nil
	}
	ws.fullscreen = focused.ID
	ws.hasFull = true
	return true, nil
}

// MoveFocusedWindow swaps the focused window with its neighbor in the same
// leaf. Moving past either end is a no-op. Up and Down are not resolved
// because a leaf is a one-dimensional strip.
func (ws *Workspace) MoveFocusedWindow(dir Direction) error {
	if dir == Up || dir == Down {
		return fmt.Errorf("move %s: %w", dir, ErrUnsupportedDirection)
	}
	focused := ws.FocusedWindow()
	if focused == nil {
		return ErrNoFocusedWindow
	}

	leaf := ws.root.Locate(focused)
	i := leaf.indexOf(focused)
	j := i - 1
	if dir == Right {
		j = i + 1
	}
	if j < 0 || j >= len(leaf.windows) {
		return nil
	}
	leaf.windows[i], leaf.windows[j] = leaf.windows[j], leaf.windows[i]
	return nil
}

// FocusDirection moves focus to the previous or next window in depth-first
// order and returns the newly focused window. The ends do not wrap.
func (ws *Workspace) FocusDirection(dir Direction) (*Window, error) {
	if dir == Up || dir == Down {
		return nil, fmt.Errorf("focus %s: %w", dir, ErrUnsupportedDirection)
	}
	focused := ws.FocusedWindow()
	if focused == nil {
		return nil, ErrNoFocusedWindow
	}

	windows := ws.root.Windows()
	for i, w := range windows {
		if w.ID != focused.ID {
			continue
		}
		j := i - 1
		if dir == Right {
			j = i + 1
		}
		if j < 0 || j >= len(windows) {
			return focused, nil
		}
		ws.setFocus(windows[j])
		return windows[j], nil
	}
	return nil, ErrWindowNotFound
}

// Split splits the focused window's leaf. If the leaf held other windows the
// focused window moves into a new sibling leaf so the split is visible.
func (ws *Workspace) Split(orientation Orientation) error {
	focused := ws.FocusedWindow()
	if focused == nil {
		return ErrNoFocusedWindow
	}

	leaf := ws.root.Locate(focused)
	hasSiblings := len(leaf.windows) > 1
	if err := leaf.Split(orientation); err != nil {
		return err
	}
	if !hasSiblings {
		return nil
	}

	inherited := leaf.children[0]
	inherited.Remove(focused)
	sibling := NewContainer(orientation)
	if err := sibling.AddWindow(focused); err != nil {
		return err
	}
	return leaf.AddChild(sibling)
}

// Layout computes placements for every window in area. Internal nodes divide
// their area by orientation; each leaf splits its width evenly among its
// tiled windows. Floating windows keep their stored geometry.
func (ws *Workspace) Layout(area Rect) []Placement {
	var placements []Placement

	if full := ws.FullscreenWindow(); full != nil {
		for _, w := range ws.root.Windows() {
			switch {
			case w.ID == full.ID:
				placements = append(placements, Placement{Window: w, Bounds: area})
			case w.Floating():
				placements = append(placements, Placement{Window: w, Bounds: w.Geometry(), Floating: true})
			default:
				placements = append(placements, Placement{Window: w, Hidden: true})
			}
		}
		return placements
	}

	regions := map[*Container]Rect{ws.root: area}
	ws.root.Traverse(func(n *Container) bool {
		region := regions[n]
		if !n.leaf {
			for i, r := range SplitArea(region, n.orientation, len(n.children)) {
				regions[n.children[i]] = r
			}
			return true
		}

		var tiled []*Window
		for _, w := range n.windows {
			if w.Floating() {
				placements = append(placements, Placement{Window: w, Bounds: w.Geometry(), Floating: true})
				continue
			}
			tiled = append(tiled, w)
		}
		for i, r := range PartitionWidth(region, len(tiled)) {
			placements = append(placements, Placement{Window: tiled[i], Bounds: r})
		}
		return true
	})
	return placements
}

// Arrange applies Layout(area) through the backend. A failing window is
// logged and skipped; the remaining windows are still arranged.
func (ws *Workspace) Arrange(backend platform.Backend, area Rect) error {
	var errs []error
	for _, p := range ws.Layout(area) {
		id := p.Window.ID
		if p.Hidden {
			if err := backend.Minimize(id); err != nil {
				log.Printf("Warning: failed to minimize window %d: %v", id, err)
				errs = append(errs, err)
			}
			continue
		}

		if err := backend.Show(id); err != nil {
			log.Printf("Warning: failed to show window %d: %v", id, err)
			errs = append(errs, err)
			continue
		}
		if p.Floating && p.Bounds.Empty() {
			continue
		}
		if err := backend.MoveResize(id, p.Bounds.toPlatform()); err != nil {
			log.Printf("Warning: failed to move window %d: %v", id, err)
			errs = append(errs, err)
			continue
		}
		if !p.Floating {
			p.Window.SetGeometry(p.Bounds)
		}
	}
	return errors.Join(errs...)
}

// Minimize hides every window of the workspace, best-effort.
func (ws *Workspace) Minimize(backend platform.Backend) error {
	var errs []error
	ws.root.Traverse(func(n *Container) bool {
		for _, w := range n.windows {
			if err := backend.Minimize(w.ID); err != nil {
				log.Printf("Warning: failed to minimize window %d: %v", w.ID, err)
				errs = append(errs, err)
			}
		}
		return true
	})
	return errors.Join(errs...)
}

func (ws *Workspace) setFocus(w *Window) {
	ws.focused = w.ID
	ws.hasFocus = true
}

func (ws *Workspace) find(id platform.WindowID) *Window {
	var found *Window
	ws.root.Traverse(func(n *Container) bool {
		for _, w := range n.windows {
			if w.ID == id {
				found = w
				return false
			}
		}
		return true
	})
	return found
}
