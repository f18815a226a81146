package tiling

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotLeaf is returned when a leaf-only operation targets an internal node.
	ErrNotLeaf = errors.New("container is not a leaf")
	// ErrNotInternal is returned when adding a child to a leaf.
	ErrNotInternal = errors.New("container is not an internal node")
	// ErrWindowExists is returned when admitting a window that is already in the tree.
	ErrWindowExists = errors.New("window already present")
	// ErrWindowNotFound is returned when a window is not in the tree.
	ErrWindowNotFound = errors.New("window not found")
	// ErrNoFocusedWindow is returned by focus-relative operations on an unfocused workspace.
	ErrNoFocusedWindow = errors.New("no focused window")
	// ErrUnsupportedDirection is returned for directions a one-dimensional leaf cannot resolve.
	ErrUnsupportedDirection = errors.New("unsupported direction")
)

// Orientation is the split axis of an internal node.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ParseOrientation accepts "horizontal"/"h" and "vertical"/"v".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	default:
		return Horizontal, fmt.Errorf("invalid orientation %q (expected horizontal or vertical)", s)
	}
}

// Direction is a focus or move direction.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// ParseDirection accepts left, right, up and down.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return Left, fmt.Errorf("invalid direction %q", s)
	}
}

// Container is a node of the tiling tree: a leaf holding an ordered list of
// windows, or an internal node holding ordered children split along an
// orientation.
type Container struct {
	orientation Orientation
	leaf        bool
	windows     []*Window
	children    []*Container
}

// NewContainer returns an empty leaf. The orientation applies once the leaf
// is split.
func NewContainer(orientation Orientation) *Container {
	return &Container{orientation: orientation, leaf: true}
}

// IsLeaf reports whether c holds windows directly.
func (c *Container) IsLeaf() bool {
	return c.leaf
}

// Orientation returns the node's split axis.
func (c *Container) Orientation() Orientation {
	return c.orientation
}

// Children returns a copy of an internal node's children.
func (c *Container) Children() []*Container {
	out := make([]*Container, len(c.children))
	copy(out, c.children)
	return out
}

// LeafWindows returns a copy of a leaf's own windows.
func (c *Container) LeafWindows() []*Window {
	out := make([]*Window, len(c.windows))
	copy(out, c.windows)
	return out
}

// AddChild appends child to an internal node.
func (c *Container) AddChild(child *Container) error {
	if c.leaf {
		return ErrNotInternal
	}
	c.children = append(c.children, child)
	return nil
}

// AddWindow appends w to a leaf.
func (c *Container) AddWindow(w *Window) error {
	if !c.leaf {
		return ErrNotLeaf
	}
	if c.indexOf(w) >= 0 {
		return ErrWindowExists
	}
	c.windows = append(c.windows, w)
	return nil
}

// Traverse visits c and its descendants in pre-order. Returning false from
// visit stops the walk.
func (c *Container) Traverse(visit func(*Container) bool) {
	c.traverse(visit)
}

func (c *Container) traverse(visit func(*Container) bool) bool {
	if !visit(c) {
		return false
	}
	for _, child := range c.children {
		if !child.traverse(visit) {
			return false
		}
	}
	return true
}

// Locate returns the leaf that owns w, or nil.
func (c *Container) Locate(w *Window) *Container {
	var owner *Container
	c.Traverse(func(n *Container) bool {
		if n.leaf && n.indexOf(w) >= 0 {
			owner = n
			return false
		}
		return true
	})
	return owner
}

// FirstWindow returns the first window in depth-first, left-to-right order.
func (c *Container) FirstWindow() *Window {
	var first *Window
	c.Traverse(func(n *Container) bool {
		if n.leaf && len(n.windows) > 0 {
			first = n.windows[0]
			return false
		}
		return true
	})
	return first
}

// FirstLeaf returns the first leaf in pre-order.
func (c *Container) FirstLeaf() *Container {
	var first *Container
	c.Traverse(func(n *Container) bool {
		if n.leaf {
			first = n
			return false
		}
		return true
	})
	return first
}

// Remove detaches w from its owning leaf and reports whether it was found.
func (c *Container) Remove(w *Window) bool {
	leaf := c.Locate(w)
	if leaf == nil {
		return false
	}
	i := leaf.indexOf(w)
	leaf.windows = append(leaf.windows[:i], leaf.windows[i+1:]...)
	return true
}

// Split converts a leaf into an internal node with the given orientation and
// a single child leaf that inherits the former windows.
func (c *Container) Split(orientation Orientation) error {
	if !c.leaf {
		return ErrNotLeaf
	}

	child := &Container{
		orientation: c.orientation,
		leaf:        true,
		windows:     c.windows,
	}
	c.leaf = false
	c.windows = nil
	c.orientation = orientation
	c.children = []*Container{child}
	return nil
}

// Prune removes empty leaves and childless internal nodes bottom-up. The
// root itself is never removed; an emptied root reverts to an empty leaf.
func (c *Container) Prune() {
	c.pruneChildren()
	if !c.leaf && len(c.children) == 0 {
		c.leaf = true
	}
}

func (c *Container) pruneChildren() {
	if c.leaf {
		return
	}
	kept := make([]*Container, 0, len(c.children))
	for _, child := range c.children {
		child.pruneChildren()
		if child.empty() {
			continue
		}
		kept = append(kept, child)
	}
	c.children = kept
}

func (c *Container) empty() bool {
	if c.leaf {
		return len(c.windows) == 0
	}
	return len(c.children) == 0
}

// Windows returns every window in depth-first order.
func (c *Container) Windows() []*Window {
	var out []*Window
	c.Traverse(func(n *Container) bool {
		out = append(out, n.windows...)
		return true
	})
	return out
}

// Count returns the number of windows in the tree.
func (c *Container) Count() int {
	count := 0
	c.Traverse(func(n *Container) bool {
		count += len(n.windows)
		return true
	})
	return count
}

// Signature encodes the tree shape in pre-order, I for internal and L for leaf.
func (c *Container) Signature() string {
	var b strings.Builder
	c.Traverse(func(n *Container) bool {
		if n.leaf {
			b.WriteByte('L')
		} else {
			b.WriteByte('I')
		}
		return true
	})
	return b.String()
}

func (c *Container) indexOf(w *Window) int {
	for i, existing := range c.windows {
		if existing.ID == w.ID {
			return i
		}
	}
	return -1
}
