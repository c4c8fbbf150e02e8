// Package input implements dashpanel input handling.
//
// Keys are resolved through the keybinding registry and dispatched as
// actions; mouse presses start drag and resize gestures on panels.
package input

import (
	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/dashpanel/internal/app"
)

// HandleInput is the main input coordinator that routes messages to appropriate handlers
func HandleInput(msg tea.Msg, m *app.Dashboard) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return HandleKeyPress(msg, m)
	case tea.MouseClickMsg:
		return handleMouseClick(msg, m)
	case tea.MouseMotionMsg:
		return handleMouseMotion(msg, m)
	case tea.MouseReleaseMsg:
		return handleMouseRelease(msg, m)
	default:
		return m, nil
	}
}

// HandleKeyPress handles all keyboard input and routes to mode-specific handlers
func HandleKeyPress(msg tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	switch m.Mode {
	case app.PromptMode:
		return handlePromptKey(msg, m)
	case app.PickerMode:
		return handlePickerKey(msg, m)
	case app.ConfirmResetMode:
		return handleConfirmResetKey(msg, m)
	default:
		return handleLayoutKey(msg, m)
	}
}
