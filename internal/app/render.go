package app

import (
	"image/color"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Gaurav-Gosain/dashpanel/internal/config"
	"github.com/Gaurav-Gosain/dashpanel/internal/theme"
)

// GetCanvas composes every visible panel, bottom to top, plus the overlays.
func (m *Dashboard) GetCanvas(render bool) *lipgloss.Canvas {
	canvas := lipgloss.NewCanvas(m.Width, m.Height)

	var layers []*lipgloss.Layer

	box := lipgloss.NewStyle().
		Align(lipgloss.Left).
		AlignVertical(lipgloss.Top).
		Foreground(theme.PanelFg()).
		Border(getBorder()).
		BorderTop(false)

	focused := m.FocusedPanel()
	for _, p := range m.Engine.Panels() {
		x, y, w, h := m.PanelCells(p.Geometry)

		var borderColor color.Color
		switch {
		case p.Gesture != "":
			borderColor = theme.BorderGesture()
		case p.ID == focused:
			borderColor = theme.BorderFocused()
		default:
			borderColor = theme.PanelAccent(p.ID)
		}

		content := m.Widgets.Render(p.ID, w-2, h-2)
		boxContent := addToBorder(
			box.Width(w).
				Height(h-1).
				BorderForeground(borderColor).
				Render(content),
			borderColor,
			m.Widgets.Title(p.ID),
			p.Gesture,
		)

		clipped, finalX, finalY := clipPanelContent(boxContent, x, y, m.Width, m.Height)
		if clipped == "" {
			continue
		}
		layers = append(layers, lipgloss.NewLayer(clipped).
			X(finalX).Y(finalY).Z(config.ZIndexPanelBase+p.Z).ID(p.ID))
	}

	if render {
		layers = append(layers, m.renderOverlays()...)
	}

	for _, layer := range layers {
		canvas.Compose(layer)
	}
	return canvas
}

// Render draws the full screen as a string. It is empty until the terminal
// size is known.
func (m *Dashboard) Render() string {
	if m.Width <= 0 || m.Height <= 0 {
		return ""
	}
	return lipgloss.Sprint(m.GetCanvas(true).Render())
}

// View renders the dashboard.
func (m *Dashboard) View() tea.View {
	var view tea.View

	if content := m.Render(); content != "" {
		view.SetContent(content)
	}

	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion

	return view
}
