package input

import (
	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/dashpanel/internal/app"
	"github.com/Gaurav-Gosain/dashpanel/internal/config"
	"github.com/Gaurav-Gosain/dashpanel/internal/widget"
)

// ActionHandler is a function that handles a specific action
type ActionHandler func(_ tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd)

// ActionDispatcher maps action names to handler functions
type ActionDispatcher struct {
	handlers map[string]ActionHandler
}

// NewActionDispatcher creates a new action dispatcher with all handlers registered
func NewActionDispatcher() *ActionDispatcher {
	d := &ActionDispatcher{
		handlers: make(map[string]ActionHandler),
	}
	d.registerHandlers()
	return d
}

// registerHandlers registers all action handlers
func (d *ActionDispatcher) registerHandlers() {
	// Focus
	d.Register(config.ActionFocusNext, handleFocusNext)
	d.Register(config.ActionFocusPrev, handleFocusPrev)
	d.Register(config.ActionRaisePanel, handleRaisePanel)

	// Keyboard move and resize of the focused panel
	d.Register(config.ActionNudgeLeft, makeNudgeHandler(-1, 0))
	d.Register(config.ActionNudgeRight, makeNudgeHandler(1, 0))
	d.Register(config.ActionNudgeUp, makeNudgeHandler(0, -1))
	d.Register(config.ActionNudgeDown, makeNudgeHandler(0, 1))
	d.Register(config.ActionGrowWidth, makeResizeHandler(1, 0))
	d.Register(config.ActionShrinkWidth, makeResizeHandler(-1, 0))
	d.Register(config.ActionGrowHeight, makeResizeHandler(0, 1))
	d.Register(config.ActionShrinkHeight, makeResizeHandler(0, -1))

	// Panel visibility (1-N)
	for i := range widget.IDs() {
		d.Register(config.TogglePanelAction(i+1), makeTogglePanelHandler(i))
	}

	// Presets
	d.Register(config.ActionSavePreset, handleSavePreset)
	d.Register(config.ActionPresetPicker, handlePresetPicker)
	d.Register(config.ActionResetLayout, handleResetLayout)

	// System
	d.Register(config.ActionToggleHelp, handleToggleHelp)
	d.Register(config.ActionQuit, handleQuit)
}

// Register adds an action handler
func (d *ActionDispatcher) Register(action string, handler ActionHandler) {
	d.handlers[action] = handler
}

// Dispatch executes the handler for a given action
func (d *ActionDispatcher) Dispatch(action string, msg tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	if handler, ok := d.handlers[action]; ok {
		m.Logger().Debug("dispatch", "action", action, "key", msg.String())
		return handler(msg, m)
	}
	return m, nil
}

// HasAction checks if an action is registered
func (d *ActionDispatcher) HasAction(action string) bool {
	_, ok := d.handlers[action]
	return ok
}

// Global action dispatcher instance
var globalDispatcher = NewActionDispatcher()

// GetDispatcher returns the global action dispatcher
func GetDispatcher() *ActionDispatcher {
	return globalDispatcher
}

// ============================================================================
// Focus Action Handlers
// ============================================================================

func handleFocusNext(_ tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	m.CycleFocus(1)
	return m, nil
}

func handleFocusPrev(_ tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	m.CycleFocus(-1)
	return m, nil
}

func handleRaisePanel(_ tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	m.FocusPanel(m.FocusedPanel())
	return m, nil
}

// ============================================================================
// Move and Resize Action Handlers
// ============================================================================

func makeNudgeHandler(dx, dy int) ActionHandler {
	return func(_ tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
		m.NudgeFocused(dx, dy)
		return m, nil
	}
}

func makeResizeHandler(dw, dh int) ActionHandler {
	return func(_ tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
		m.ResizeFocused(dw, dh)
		return m, nil
	}
}

func makeTogglePanelHandler(index int) ActionHandler {
	return func(_ tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
		ids := m.Widgets.IDs()
		if index < len(ids) {
			m.TogglePanel(ids[index])
		}
		return m, nil
	}
}

// ============================================================================
// Preset Action Handlers
// ============================================================================

func handleSavePreset(_ tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	m.ShowHelp = false
	m.Mode = app.PromptMode
	m.PromptBuffer = ""
	return m, nil
}

func handlePresetPicker(_ tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	m.ShowHelp = false
	m.Mode = app.PickerMode
	m.PickerIndex = 0
	return m, nil
}

func handleResetLayout(_ tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	m.ShowHelp = false
	m.Mode = app.ConfirmResetMode
	m.ConfirmResetSelected = 1
	return m, nil
}

// ============================================================================
// System Action Handlers
// ============================================================================

func handleToggleHelp(_ tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	m.ShowHelp = !m.ShowHelp
	return m, nil
}

func handleQuit(_ tea.KeyPressMsg, m *app.Dashboard) (*app.Dashboard, tea.Cmd) {
	// Close help if showing
	if m.ShowHelp {
		m.ShowHelp = false
		return m, nil
	}
	m.EndPointer()
	return m, tea.Quit
}
