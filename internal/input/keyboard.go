package input

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/dashpanel/internal/app"
	"github.com/Gaurav-Gosain/dashpanel/internal/config"
)

// handleLayoutKey resolves a key through the registry and dispatches the
// bound action.
func handleLayoutKey(msg tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	key := msg.String()

	if key == "esc" {
		m.ShowHelp = false
		return m, nil
	}

	action := m.KeybindRegistry.GetAction(key)
	if action == "" {
		return m, nil
	}

	// Help stays open for the keys that toggle or close it.
	if m.ShowHelp && action != config.ActionToggleHelp && action != config.ActionQuit {
		m.ShowHelp = false
	}
	return GetDispatcher().Dispatch(action, msg, m)
}

// handlePromptKey edits the preset name and saves it on enter.
func handlePromptKey(msg tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Mode = app.LayoutMode
		m.PromptBuffer = ""
		return m, nil

	case "enter":
		name := strings.TrimSpace(m.PromptBuffer)
		if name == "" {
			m.ShowNotification("Preset name cannot be empty", "warning", config.NotificationDuration)
			return m, nil
		}
		m.Mode = app.LayoutMode
		m.PromptBuffer = ""
		m.SavePreset(name)
		return m, nil

	case "backspace":
		if r := []rune(m.PromptBuffer); len(r) > 0 {
			m.PromptBuffer = string(r[:len(r)-1])
		}
		return m, nil

	case "ctrl+u":
		m.PromptBuffer = ""
		return m, nil
	}

	if msg.Text != "" && msg.Mod&(tea.ModCtrl|tea.ModAlt) == 0 {
		if ansi.StringWidth(m.PromptBuffer+msg.Text) <= config.MaxPresetNameLength {
			m.PromptBuffer += msg.Text
		}
	}
	return m, nil
}

// handlePickerKey moves through the preset list, loads or deletes the
// selected preset.
func handlePickerKey(msg tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	names := m.Engine.PresetNames()

	switch msg.String() {
	case "esc", "q":
		m.Mode = app.LayoutMode

	case "up", "k":
		if m.PickerIndex > 0 {
			m.PickerIndex--
		}

	case "down", "j":
		if m.PickerIndex < len(names)-1 {
			m.PickerIndex++
		}

	case "enter":
		if m.PickerIndex < len(names) {
			m.Mode = app.LayoutMode
			m.LoadPreset(names[m.PickerIndex])
		}

	case "d", "delete", "x":
		if m.PickerIndex < len(names) {
			m.DeletePreset(names[m.PickerIndex])
			m.PickerIndex = max(min(m.PickerIndex, len(names)-2), 0)
		}
	}
	return m, nil
}

// handleConfirmResetKey drives the yes/no reset dialog.
func handleConfirmResetKey(msg tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	switch msg.String() {
	case "esc", "n", "q":
		m.Mode = app.LayoutMode

	case "left", "h":
		m.ConfirmResetSelected = 0

	case "right", "l":
		m.ConfirmResetSelected = 1

	case "tab", "shift+tab":
		m.ConfirmResetSelected = 1 - m.ConfirmResetSelected

	case "y":
		m.Mode = app.LayoutMode
		m.ResetLayout()

	case "enter":
		m.Mode = app.LayoutMode
		if m.ConfirmResetSelected == 0 {
			m.ResetLayout()
		}
	}
	return m, nil
}
