package input

import (
	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/dashpanel/internal/app"
	"github.com/Gaurav-Gosain/dashpanel/internal/gesture"
	"github.com/Gaurav-Gosain/dashpanel/internal/model"
)

// handleMouseClick focuses the panel under the pointer and starts a gesture:
// a left press on the body drags, a left press on the bottom-right corner
// or a right press anywhere on the panel resizes.
func handleMouseClick(msg tea.MouseClickMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	mouse := msg.Mouse()

	if m.Mode != app.LayoutMode {
		return m, nil
	}
	if m.ShowHelp {
		m.ShowHelp = false
		return m, nil
	}

	// A press without a release (focus lost mid-drag) ends the old gesture.
	m.EndPointer()

	panel, ok := m.PanelAtCell(mouse.X, mouse.Y)
	if !ok {
		return m, nil
	}
	m.FocusPanel(panel.ID)

	var kind gesture.Kind
	switch {
	case mouse.Button == tea.MouseLeft && m.IsResizeHandle(panel, mouse.X, mouse.Y):
		kind = gesture.Resize
	case mouse.Button == tea.MouseLeft:
		kind = gesture.Drag
	case mouse.Button == tea.MouseRight:
		kind = gesture.Resize
	default:
		return m, nil
	}

	var started bool
	if kind == gesture.Drag {
		started = m.Engine.DragStart(panel.ID)
	} else {
		started = m.Engine.ResizeStart(panel.ID)
	}
	if !started {
		return m, nil
	}

	start := m.CellToPoint(mouse.X, mouse.Y)
	m.Pointer = &app.PointerGesture{
		PanelID: panel.ID,
		Kind:    kind,
		StartX:  start.X,
		StartY:  start.Y,
		Origin:  panel.Geometry,
	}
	return m, nil
}

// handleMouseMotion feeds pointer movement to the gesture in flight. Drags
// follow the pointer freely; snapping happens on release. Resizes are
// clamped to the size limits while moving.
func handleMouseMotion(msg tea.MouseMotionMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	p := m.Pointer
	if p == nil {
		return m, nil
	}
	mouse := msg.Mouse()
	pt := m.CellToPoint(mouse.X, mouse.Y)
	dx, dy := pt.X-p.StartX, pt.Y-p.StartY

	switch p.Kind {
	case gesture.Drag:
		m.Engine.DragMove(p.PanelID, model.Point{
			X: max(p.Origin.X+dx, 0),
			Y: max(p.Origin.Y+dy, 0),
		})
	case gesture.Resize:
		m.Engine.ResizeMove(p.PanelID, m.Engine.Policy().ClampSize(model.Size{
			Width:  p.Origin.Width + dx,
			Height: p.Origin.Height + dy,
		}))
	}
	return m, nil
}

// handleMouseRelease commits the gesture in flight.
func handleMouseRelease(_ tea.MouseReleaseMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	m.EndPointer()
	return m, nil
}

// FilterMouseMotion drops pointer motion unless a gesture is in flight, so
// idle hovering does not wake the update loop.
func FilterMouseMotion(tm tea.Model, msg tea.Msg) tea.Msg {
	if _, ok := msg.(tea.MouseMotionMsg); !ok {
		return msg
	}
	if m, ok := tm.(*app.Dashboard); ok && m.Pointer != nil {
		return msg
	}
	return nil
}
