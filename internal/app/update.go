package app

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/dashpanel/internal/config"
	"github.com/Gaurav-Gosain/dashpanel/internal/storage"
)

// NotificationTickMsg expires toasts while any are on screen.
type NotificationTickMsg time.Time

// LayoutChangedMsg asks the dashboard to reload the layout from storage.
// The file watcher sends it when another process saves.
type LayoutChangedMsg = storage.ChangedMsg

// InputHandler is a function type that handles input messages.
// This allows the Update method to delegate to the input package without creating a circular dependency.
type InputHandler func(msg tea.Msg, m *Dashboard) (tea.Model, tea.Cmd)

// inputHandler is the registered input handler function.
// This will be set by the main package to break the circular dependency.
var inputHandler InputHandler

// SetInputHandler registers the input handler function.
// This must be called during initialization before the Update loop runs.
func SetInputHandler(handler InputHandler) {
	inputHandler = handler
}

// Init initializes the dashboard. Nothing runs until the first window size
// arrives.
func (m *Dashboard) Init() tea.Cmd {
	return nil
}

// NotificationTickCmd schedules the next toast expiry check.
func NotificationTickCmd() tea.Cmd {
	return tea.Tick(config.NotificationTick, func(t time.Time) tea.Msg {
		return NotificationTickMsg(t)
	})
}

// Update handles all incoming messages and updates the dashboard state.
func (m *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Resize(msg.Width, msg.Height)

	case LayoutChangedMsg:
		m.log.Debug("layout file changed", "path", msg.Path)
		m.ReloadLayout()

	case NotificationTickMsg:
		m.ticking = false

	default:
		if inputHandler != nil {
			_, cmd = inputHandler(msg, m)
		}
	}

	m.drainEvents()
	m.CleanupNotifications()

	if len(m.Notifications) > 0 && !m.ticking {
		m.ticking = true
		cmd = tea.Batch(cmd, NotificationTickCmd())
	}
	return m, cmd
}
