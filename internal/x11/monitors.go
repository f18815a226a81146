package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor is one active RandR output. Name is the output name ("DP-1"),
// which stays stable across refreshes.
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

func (m Monitor) overlap(x1, y1, x2, y2 int) (w, h int) {
	w = min(m.X+m.Width, x2) - max(m.X, x1)
	h = min(m.Y+m.Height, y2) - max(m.Y, y1)
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	return w, h
}

// GetMonitors lists enabled CRTCs in RandR order. A CRTC driving several
// outputs (mirroring) is reported once under its first output's name.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	xc := c.XUtil.Conn()
	if err := randr.Init(xc); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}
	res, err := randr.GetScreenResources(xc, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var out []Monitor
	for i, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(xc, crtc, res.ConfigTimestamp).Reply()
		if err != nil || info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}
		name := fmt.Sprintf("CRTC-%d", i)
		if o, err := randr.GetOutputInfo(xc, info.Outputs[0], res.ConfigTimestamp).Reply(); err == nil && len(o.Name) > 0 {
			name = string(o.Name)
		}
		if slices.ContainsFunc(out, func(m Monitor) bool { return m.Name == name }) {
			continue
		}
		out = append(out, Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}
	return out, nil
}

// UsableArea returns the monitor minus the space docks (status bars)
// reserve on it through _NET_WM_STRUT_PARTIAL or _NET_WM_STRUT.
func (c *Connection) UsableArea(m Monitor) Monitor {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return m
	}
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return m
	}
	rootW, rootH := int(geom.Width), int(geom.Height)

	var struts []*ewmh.WmStrutPartial
	for _, id := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, id)
		if err != nil || !slices.Contains(types, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, id); err == nil {
			struts = append(struts, sp)
		} else if s, err := ewmh.WmStrutGet(c.XUtil, id); err == nil {
			struts = append(struts, fullSpan(s, rootW, rootH))
		}
	}
	return insetByStruts(m, rootW, rootH, struts)
}

// fullSpan widens a legacy strut to cover the whole root edge.
func fullSpan(s *ewmh.WmStrut, rootW, rootH int) *ewmh.WmStrutPartial {
	return &ewmh.WmStrutPartial{
		Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
		LeftEndY: uint(rootH - 1), RightEndY: uint(rootH - 1),
		TopEndX: uint(rootW - 1), BottomEndX: uint(rootW - 1),
	}
}

// insetByStruts shrinks m by the largest reservation on each edge that
// overlaps it. Struts are in root coordinates, so a bar on one monitor
// leaves its neighbours alone.
func insetByStruts(m Monitor, rootW, rootH int, struts []*ewmh.WmStrutPartial) Monitor {
	var left, right, top, bottom int
	for _, sp := range struts {
		if sp.Top > 0 {
			_, h := m.overlap(int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top))
			top = max(top, h)
		}
		if sp.Bottom > 0 {
			_, h := m.overlap(int(sp.BottomStartX), rootH-int(sp.Bottom), int(sp.BottomEndX)+1, rootH)
			bottom = max(bottom, h)
		}
		if sp.Left > 0 {
			w, _ := m.overlap(0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1)
			left = max(left, w)
		}
		if sp.Right > 0 {
			w, _ := m.overlap(rootW-int(sp.Right), int(sp.RightStartY), rootW, int(sp.RightEndY)+1)
			right = max(right, w)
		}
	}

	m.X += left
	m.Y += top
	m.Width = max(1, m.Width-left-right)
	m.Height = max(1, m.Height-top-bottom)
	return m
}
