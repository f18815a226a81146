package director

import (
	"sort"

	"github.com/1broseidon/splitwm/internal/tiling"
)

// Monitor is a physical display owning a set of workspaces keyed by name.
// The focused workspace is held by name and always names a member of
// workspaces.
type Monitor struct {
	id         int
	name       string
	bounds     tiling.Rect
	usable     tiling.Rect
	area       tiling.Rect
	workspaces map[string]*tiling.Workspace
	focused    string
}

func newMonitor(id int, name string, bounds tiling.Rect, initial string) *Monitor {
	m := &Monitor{
		id:         id,
		name:       name,
		bounds:     bounds,
		usable:     bounds,
		area:       bounds,
		workspaces: make(map[string]*tiling.Workspace),
	}
	m.workspaces[initial] = tiling.NewWorkspace(initial)
	m.focused = initial
	return m
}

// Name returns the output name reported by the display server.
func (m *Monitor) Name() string {
	return m.name
}

// Area returns the arrangeable area after struts and padding.
func (m *Monitor) Area() tiling.Rect {
	return m.area
}

func (m *Monitor) focusedWorkspace() *tiling.Workspace {
	return m.workspaces[m.focused]
}

func (m *Monitor) workspace(name string) *tiling.Workspace {
	return m.workspaces[name]
}

func (m *Monitor) createWorkspace(name string) *tiling.Workspace {
	ws := tiling.NewWorkspace(name)
	m.workspaces[name] = ws
	return ws
}

// sortedNames returns workspace names in display order.
func (m *Monitor) sortedNames() []string {
	names := make([]string, 0, len(m.workspaces))
	for name := range m.workspaces {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return tiling.LessName(names[i], names[j])
	})
	return names
}

func (m *Monitor) containing(w *tiling.Window) *tiling.Workspace {
	for _, ws := range m.workspaces {
		if ws.Contains(w) {
			return ws
		}
	}
	return nil
}

func (m *Monitor) center() (int, int) {
	return m.bounds.X + m.bounds.Width/2, m.bounds.Y + m.bounds.Height/2
}

func (m *Monitor) containsPoint(x, y int) bool {
	b := m.bounds
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}
