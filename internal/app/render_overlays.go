package app

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/dashpanel/internal/config"
	"github.com/Gaurav-Gosain/dashpanel/internal/theme"
)

func (m *Dashboard) renderOverlays() []*lipgloss.Layer {
	var layers []*lipgloss.Layer

	layers = append(layers, lipgloss.NewLayer(m.renderStatusBar()).
		X(0).Y(0).Z(config.ZIndexStatusBar).ID("statusbar"))

	if len(m.Engine.Visible()) == 0 {
		instruction := lipgloss.NewStyle().
			Foreground(theme.StatusBarDimmed()).
			Render(fmt.Sprintf("No panels visible. Press %s to show one, %s for help",
				m.panelKeyRange(), m.keyHint(config.ActionToggleHelp)))

		centeredContent := lipgloss.Place(
			m.Width, max(m.Height-config.StatusBarHeight, 0),
			lipgloss.Center, lipgloss.Center,
			instruction,
		)
		layers = append(layers, lipgloss.NewLayer(centeredContent).
			X(0).Y(config.StatusBarHeight).Z(1).ID("empty"))
	}

	layers = append(layers, m.renderNotifications()...)

	var dialog, id string
	switch {
	case m.Mode == PromptMode:
		dialog, id = m.renderPrompt(), "prompt"
	case m.Mode == PickerMode:
		dialog, id = m.renderPicker(), "picker"
	case m.Mode == ConfirmResetMode:
		dialog, id = m.renderResetConfirmDialog(), "confirm-reset"
	case m.ShowHelp:
		dialog, id = m.renderHelp(), "help"
	}
	if dialog != "" {
		x := max((m.Width-lipgloss.Width(dialog))/2, 0)
		y := max((m.Height-lipgloss.Height(dialog))/2, 0)
		layers = append(layers, lipgloss.NewLayer(dialog).
			X(x).Y(y).Z(config.ZIndexOverlay).ID(id))
	}

	return layers
}

func (m *Dashboard) keyHint(action string) string {
	keys := m.KeybindRegistry.GetKeys(action)
	if len(keys) == 0 {
		return "?"
	}
	return config.FormatKey(keys[0])
}

func (m *Dashboard) panelKeyRange() string {
	n := len(m.Widgets.IDs())
	if n == 0 {
		return "a panel key"
	}
	first := m.KeybindRegistry.GetKeys(config.TogglePanelAction(1))
	last := m.KeybindRegistry.GetKeys(config.TogglePanelAction(n))
	if len(first) == 0 || len(last) == 0 {
		return "a panel key"
	}
	if n == 1 {
		return first[0]
	}
	return first[0] + "-" + last[0]
}

func (m *Dashboard) renderStatusBar() string {
	bg := theme.StatusBarBg()
	base := lipgloss.NewStyle().Background(bg).Foreground(theme.StatusBarFg())
	sep := base.Foreground(theme.StatusBarDimmed()).Render(" " + config.GetStatusSeparator() + " ")

	mode := lipgloss.NewStyle().
		Background(theme.StatusBarHighlight()).
		Foreground(bg).
		Bold(true).
		Padding(0, 1).
		Render(m.Mode.String())

	parts := []string{mode}

	if id := m.FocusedPanel(); id != "" {
		parts = append(parts, base.Bold(true).Render(" "+m.Widgets.Title(id)))
	}

	var toggles strings.Builder
	for i, id := range m.Widgets.IDs() {
		style := base.Foreground(theme.StatusBarDimmed())
		if m.Engine.IsVisible(id) {
			style = base.Foreground(theme.PanelAccent(id)).Bold(true)
		}
		if i > 0 {
			toggles.WriteString(base.Render(" "))
		}
		toggles.WriteString(style.Render(fmt.Sprintf("%d", i+1)))
	}
	parts = append(parts, toggles.String())

	presets := len(m.Engine.PresetNames())
	parts = append(parts, base.Render(fmt.Sprintf("%d preset%s", presets, plural(presets))))

	left := base.Render(" ") + strings.Join(parts, sep)
	right := base.Foreground(theme.StatusBarDimmed()).Render(m.keyHint(config.ActionToggleHelp) + " help ")

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		return ansi.Truncate(left, m.Width, "")
	}
	return left + base.Render(strings.Repeat(" ", gap)) + right
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func (m *Dashboard) renderNotifications() []*lipgloss.Layer {
	var layers []*lipgloss.Layer

	notifY := config.StatusBarHeight + 1
	for i, notif := range m.Notifications {
		if i >= 3 {
			break
		}

		var bgColor color.Color
		var icon string
		switch notif.Type {
		case "error":
			bgColor = theme.NotificationError()
			icon = config.NotificationIconError
		case "warning":
			bgColor = theme.NotificationWarning()
			icon = config.NotificationIconWarning
		case "success":
			bgColor = theme.NotificationSuccess()
			icon = config.NotificationIconSuccess
		default:
			bgColor = theme.NotificationInfo()
			icon = config.NotificationIconInfo
		}

		maxNotifWidth := min(max(m.Width-4, 20), config.NotificationWidth)
		message := ansi.Truncate(notif.Message, maxNotifWidth-len(icon)-6, "...")

		notifBox := lipgloss.NewStyle().
			Background(bgColor).
			Foreground(theme.NotificationBg()).
			Padding(0, 1).
			Bold(true).
			MaxWidth(maxNotifWidth).
			Render(fmt.Sprintf("%s %s", icon, message))

		notifX := max(m.Width-lipgloss.Width(notifBox)-1, 0)

		layers = append(layers, lipgloss.NewLayer(notifBox).
			X(notifX).Y(notifY).Z(config.ZIndexNotifications).
			ID("notif-"+notif.ID))
		notifY += lipgloss.Height(notifBox) + 1
	}
	return layers
}

func overlayBox(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(getBorder()).
		BorderForeground(theme.OverlayTitle()).
		Background(theme.OverlayBg()).
		Foreground(theme.OverlayText()).
		Padding(1, 2).
		Width(width)
}

func overlayTitle(s string) string {
	return lipgloss.NewStyle().Foreground(theme.OverlayTitle()).Bold(true).Render(s)
}

func overlayHint(s string) string {
	return lipgloss.NewStyle().Foreground(theme.StatusBarDimmed()).Render(s)
}

func (m *Dashboard) renderHelp() string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.OverlayKey()).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(theme.OverlayText())
	width := min(config.HelpOverlayWidth, max(m.Width-2, 20))

	var b strings.Builder
	b.WriteString(overlayTitle("Keybindings"))
	for _, section := range config.GetKeybindings(m.KeybindRegistry) {
		b.WriteString("\n\n")
		b.WriteString(overlayTitle(section.Title))
		for _, kb := range section.Bindings {
			b.WriteString("\n")
			b.WriteString(keyStyle.Width(16).Render(ansi.Truncate(kb.Key, 15, "…")))
			b.WriteString(textStyle.Render(kb.Description))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(overlayHint(m.keyHint(config.ActionToggleHelp) + " or esc to close"))

	content := b.String()
	if maxLines := m.Height - 6; maxLines > 0 {
		lines := strings.Split(content, "\n")
		if len(lines) > maxLines {
			content = strings.Join(lines[:maxLines], "\n")
		}
	}
	return overlayBox(width).Render(content)
}

func (m *Dashboard) renderPrompt() string {
	width := min(config.PromptOverlayWidth, max(m.Width-2, 20))

	input := lipgloss.NewStyle().
		Foreground(theme.OverlayKey()).
		Bold(true).
		Render(ansi.TruncateLeft(m.PromptBuffer, max(ansi.StringWidth(m.PromptBuffer)-(width-10), 0), "…") + "_")

	content := lipgloss.JoinVertical(lipgloss.Left,
		overlayTitle("Save layout as preset"),
		"",
		"Name: "+input,
		"",
		overlayHint("enter save · esc cancel"),
	)
	return overlayBox(width).Render(content)
}

func (m *Dashboard) renderPicker() string {
	width := min(config.PickerOverlayWidth, max(m.Width-2, 20))
	names := m.Engine.PresetNames()

	lines := []string{overlayTitle("Presets"), ""}
	if len(names) == 0 {
		lines = append(lines, overlayHint("No presets saved yet"))
	}

	selected := lipgloss.NewStyle().
		Background(theme.OverlaySelection()).
		Foreground(theme.OverlayBg()).
		Bold(true)
	for i, name := range names {
		label := ansi.Truncate(name, width-10, "…")
		if i == m.PickerIndex {
			lines = append(lines, selected.Render(" > "+label+" "))
		} else {
			lines = append(lines, "   "+label)
		}
	}

	lines = append(lines, "", overlayHint("enter load · d delete · esc close"))
	return overlayBox(width).Render(strings.Join(lines, "\n"))
}

func (m *Dashboard) renderResetConfirmDialog() string {
	selectedColor := theme.OverlayTitle()
	unselectedColor := theme.StatusBarDimmed()

	title := lipgloss.NewStyle().
		Foreground(selectedColor).
		Bold(true).
		Render("Reset layout and delete all presets?")

	button := func(label string, selected bool) string {
		c := unselectedColor
		if selected {
			c = selectedColor
		}
		return lipgloss.NewStyle().
			Foreground(c).
			Bold(selected).
			Border(lipgloss.NormalBorder()).
			BorderForeground(c).
			Padding(0, 1).
			Render(label)
	}

	buttonRow := lipgloss.JoinHorizontal(lipgloss.Center,
		button("yes", m.ConfirmResetSelected == 0),
		"   ",
		button("no", m.ConfirmResetSelected != 0),
	)

	dialogContent := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		buttonRow,
	)

	return lipgloss.NewStyle().
		Border(getBorder()).
		BorderForeground(selectedColor).
		Padding(1, 3).
		Render(dialogContent)
}
