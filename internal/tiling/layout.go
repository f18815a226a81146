package tiling

import (
	"fmt"

	"github.com/1broseidon/splitwm/internal/platform"
)

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Padding insets an area on each edge.
type Padding struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// ApplyPadding shrinks area by the given padding.
func ApplyPadding(area Rect, padding Padding) (Rect, error) {
	if padding == (Padding{}) {
		return area, nil
	}

	area.X += padding.Left
	area.Y += padding.Top
	area.Width -= padding.Left + padding.Right
	area.Height -= padding.Top + padding.Bottom

	if area.Width < 1 || area.Height < 1 {
		return area, fmt.Errorf(
			"screen_padding leaves no usable space: %dx%d at %d,%d",
			area.Width, area.Height, area.X, area.Y,
		)
	}
	return area, nil
}

// PartitionWidth splits area into n side-by-side columns of width area.Width/n
// at full height. Columns are contiguous from area.X; the integer-division
// remainder stays unused at the right edge.
func PartitionWidth(area Rect, n int) []Rect {
	if n <= 0 {
		return nil
	}

	width := area.Width / n
	positions := make([]Rect, n)
	for i := 0; i < n; i++ {
		positions[i] = Rect{
			X:      area.X + i*width,
			Y:      area.Y,
			Width:  width,
			Height: area.Height,
		}
	}
	return positions
}

// SplitArea divides area among n children of an internal node. Horizontal
// places children side by side, Vertical stacks them. The last child absorbs
// the integer-division remainder so the children cover area exactly.
func SplitArea(area Rect, orientation Orientation, n int) []Rect {
	if n <= 0 {
		return nil
	}

	regions := make([]Rect, n)
	switch orientation {
	case Vertical:
		height := area.Height / n
		for i := 0; i < n; i++ {
			regions[i] = Rect{X: area.X, Y: area.Y + i*height, Width: area.Width, Height: height}
		}
		regions[n-1].Height = area.Height - (n-1)*height
	default:
		width := area.Width / n
		for i := 0; i < n; i++ {
			regions[i] = Rect{X: area.X + i*width, Y: area.Y, Width: width, Height: area.Height}
		}
		regions[n-1].Width = area.Width - (n-1)*width
	}
	return regions
}

// RectFromPlatform converts a backend rect into a layout rect.
func RectFromPlatform(r platform.Rect) Rect {
	return Rect{
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
	}
}

func (r Rect) toPlatform() platform.Rect {
	return platform.Rect{
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
	}
}
