// Package app implements the terminal dashboard: a Bubble Tea model that
// draws every visible panel as a bordered box on a Lip Gloss canvas and
// drives the layout engine from mouse and keyboard gestures.
package app

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Gaurav-Gosain/dashpanel/internal/config"
	"github.com/Gaurav-Gosain/dashpanel/internal/engine"
	"github.com/Gaurav-Gosain/dashpanel/internal/gesture"
	"github.com/Gaurav-Gosain/dashpanel/internal/logging"
	"github.com/Gaurav-Gosain/dashpanel/internal/model"
	"github.com/Gaurav-Gosain/dashpanel/internal/widget"
)

// Mode represents the current input mode of the dashboard.
type Mode int

const (
	// LayoutMode is the default mode: keys and mouse move and resize panels.
	LayoutMode Mode = iota
	// PromptMode captures a preset name.
	PromptMode
	// PickerMode shows the preset list.
	PickerMode
	// ConfirmResetMode asks before wiping the layout.
	ConfirmResetMode
)

func (m Mode) String() string {
	switch m {
	case PromptMode:
		return "SAVE"
	case PickerMode:
		return "PRESETS"
	case ConfirmResetMode:
		return "RESET"
	default:
		return "LAYOUT"
	}
}

// PointerGesture is a mouse drag or resize in progress. Positions are in
// layout pixels.
type PointerGesture struct {
	PanelID string
	Kind    gesture.Kind
	StartX  int
	StartY  int
	Origin  model.Geometry
}

// Notification represents a temporary notification message.
type Notification struct {
	ID        string
	Message   string
	Type      string // "info", "success", "warning", "error"
	StartTime time.Time
	Duration  time.Duration
}

// Options configures a Dashboard.
type Options struct {
	Engine          *engine.Engine
	Widgets         *widget.Registry
	KeybindRegistry *config.KeybindRegistry
	Events          *EventFeed
	CellWidth       int
	CellHeight      int
	Logger          *log.Logger
}

// Dashboard is the Bubble Tea model of the panel view.
type Dashboard struct {
	Engine          *engine.Engine
	Widgets         *widget.Registry
	KeybindRegistry *config.KeybindRegistry
	Events          *EventFeed

	// Layout pixels per terminal cell.
	CellWidth  int
	CellHeight int

	// Terminal size in cells.
	Width  int
	Height int

	Focused string
	Mode    Mode

	ShowHelp             bool
	PromptBuffer         string
	PickerIndex          int
	ConfirmResetSelected int // 0 = yes, 1 = no

	Pointer *PointerGesture

	Notifications []Notification

	ctx           context.Context
	log           *log.Logger
	ticking       bool
	pendingReload bool
}

// New creates a dashboard over opts.Engine.
func New(ctx context.Context, opts Options) *Dashboard {
	if opts.Widgets == nil {
		opts.Widgets = widget.Default()
	}
	if opts.KeybindRegistry == nil {
		opts.KeybindRegistry = config.NewKeybindRegistry(nil)
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = config.DefaultCellWidth
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = config.DefaultCellHeight
	}
	m := &Dashboard{
		Engine:          opts.Engine,
		Widgets:         opts.Widgets,
		KeybindRegistry: opts.KeybindRegistry,
		Events:          opts.Events,
		CellWidth:       opts.CellWidth,
		CellHeight:      opts.CellHeight,
		ctx:             ctx,
		log:             logging.OrDiscard(opts.Logger),
	}
	if visible := m.Engine.Visible(); len(visible) > 0 {
		m.Focused = visible[0]
	}
	return m
}

// Context returns the context engine calls are made with.
func (m *Dashboard) Context() context.Context {
	return m.ctx
}

// Logger returns the dashboard's logger.
func (m *Dashboard) Logger() *log.Logger {
	return m.log
}

func createID() string {
	return uuid.New().String()
}

// ShowNotification displays a temporary notification.
func (m *Dashboard) ShowNotification(message, notifType string, duration time.Duration) {
	m.Notifications = append(m.Notifications, Notification{
		ID:        createID(),
		Message:   message,
		Type:      notifType,
		StartTime: time.Now(),
		Duration:  duration,
	})

	switch notifType {
	case "error":
		m.log.Error(message)
	case "warning":
		m.log.Warn(message)
	default:
		m.log.Info(message)
	}
}

// CleanupNotifications removes expired notifications.
func (m *Dashboard) CleanupNotifications() {
	now := time.Now()
	var active []Notification

	for _, notif := range m.Notifications {
		if now.Sub(notif.StartTime) < notif.Duration {
			active = append(active, notif)
		}
	}

	m.Notifications = active
}

func (m *Dashboard) drainEvents() {
	if m.Events == nil {
		return
	}
	for _, ev := range m.Events.Drain() {
		d := config.NotificationDuration
		if ev.Type == "error" {
			d = config.ErrorNotificationDuration
		}
		m.ShowNotification(ev.Message, ev.Type, d)
	}
}

// Resize records a new terminal size and hands the pixel viewport to the
// engine.
func (m *Dashboard) Resize(width, height int) {
	m.Width = width
	m.Height = height
	m.Engine.SetViewport(m.ViewportSize())
}

// ViewportSize is the area below the status bar expressed in layout pixels.
func (m *Dashboard) ViewportSize() model.Size {
	return model.Size{
		Width:  m.Width * m.CellWidth,
		Height: max(m.Height-config.StatusBarHeight, 0) * m.CellHeight,
	}
}

// CellToPoint converts a terminal cell to the layout pixel at its top-left.
// Row 0 of the layout sits directly below the status bar.
func (m *Dashboard) CellToPoint(x, y int) model.Point {
	return model.Point{X: x * m.CellWidth, Y: (y - config.StatusBarHeight) * m.CellHeight}
}

// PanelCells returns the cell rectangle a panel geometry is drawn in. Panels
// are never drawn smaller than a border and one row of content.
func (m *Dashboard) PanelCells(g model.Geometry) (x, y, w, h int) {
	x = floorDiv(g.X, m.CellWidth)
	y = floorDiv(g.Y, m.CellHeight) + config.StatusBarHeight
	w = max(g.Width/m.CellWidth, 4)
	h = max(g.Height/m.CellHeight, 3)
	return x, y, w, h
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// PanelAtCell returns the top-most visible panel drawn over the cell.
func (m *Dashboard) PanelAtCell(cx, cy int) (engine.PanelView, bool) {
	panels := m.Engine.Panels()
	for i := len(panels) - 1; i >= 0; i-- {
		x, y, w, h := m.PanelCells(panels[i].Geometry)
		if cx >= x && cx < x+w && cy >= y && cy < y+h {
			return panels[i], true
		}
	}
	return engine.PanelView{}, false
}

// IsResizeHandle reports whether the cell is the bottom-right corner of p.
func (m *Dashboard) IsResizeHandle(p engine.PanelView, cx, cy int) bool {
	x, y, w, h := m.PanelCells(p.Geometry)
	return cx == x+w-1 && cy == y+h-1
}

// FocusPanel focuses id and brings it to the front.
func (m *Dashboard) FocusPanel(id string) {
	if id == "" {
		return
	}
	m.Focused = id
	m.Engine.BringToFront(id)
}

// FocusedPanel returns the focused panel if it is still visible, falling
// back to the top-most panel.
func (m *Dashboard) FocusedPanel() string {
	visible := m.Engine.Visible()
	if slices.Contains(visible, m.Focused) {
		return m.Focused
	}
	panels := m.Engine.Panels()
	if len(panels) == 0 {
		m.Focused = ""
		return ""
	}
	m.Focused = panels[len(panels)-1].ID
	return m.Focused
}

// CycleFocus moves focus delta steps through the visible panels in display
// order and raises the new focus.
func (m *Dashboard) CycleFocus(delta int) {
	visible := m.Engine.Visible()
	if len(visible) == 0 {
		return
	}
	i := slices.Index(visible, m.Focused)
	if i < 0 {
		i = 0
	} else {
		i = ((i+delta)%len(visible) + len(visible)) % len(visible)
	}
	m.FocusPanel(visible[i])
}

// NudgeFocused moves the focused panel by (dx, dy) cells as one drag gesture,
// so snapping and collision resolution apply as they do for the mouse.
func (m *Dashboard) NudgeFocused(dx, dy int) {
	id := m.FocusedPanel()
	if id == "" || !m.Engine.DragStart(id) {
		return
	}
	g, _ := m.Engine.Geometry(id)
	stepX, stepY := m.nudgeStep(m.CellWidth), m.nudgeStep(m.CellHeight)
	m.Engine.DragMove(id, model.Point{
		X: max(g.X+dx*stepX, 0),
		Y: max(g.Y+dy*stepY, 0),
	})
	_, _ = m.Engine.DragEnd(m.ctx, id)
}

// nudgeStep is the distance of one keyboard nudge: at least one cell and
// far enough to leave an edge snap zone, rounded up to the grid.
func (m *Dashboard) nudgeStep(cell int) int {
	policy := m.Engine.Policy()
	step := max(cell, policy.EdgeThreshold, 1)
	if grid := policy.GridSize; grid > 0 {
		step = (step + grid - 1) / grid * grid
	}
	return step
}

// ResizeFocused grows or shrinks the focused panel by (dw, dh) cells as one
// resize gesture. The size is clamped to the configured bounds.
func (m *Dashboard) ResizeFocused(dw, dh int) {
	id := m.FocusedPanel()
	if id == "" || !m.Engine.ResizeStart(id) {
		return
	}
	g, _ := m.Engine.Geometry(id)
	size := m.Engine.Policy().ClampSize(model.Size{
		Width:  g.Width + dw*m.CellWidth,
		Height: g.Height + dh*m.CellHeight,
	})
	m.Engine.ResizeMove(id, size)
	_, _ = m.Engine.ResizeEnd(m.ctx, id)
}

// TogglePanel shows or hides a panel. A newly shown panel takes focus.
func (m *Dashboard) TogglePanel(id string) {
	if m.Engine.ToggleVisible(m.ctx, id) {
		m.FocusPanel(id)
		m.ShowNotification("Showing "+m.Widgets.Title(id), "info", config.NotificationDuration)
		return
	}
	if m.Focused == id {
		m.Focused = ""
		m.FocusedPanel()
	}
	m.ShowNotification("Hid "+m.Widgets.Title(id), "info", config.NotificationDuration)
}

// SavePreset saves the layout under name and reports the outcome.
func (m *Dashboard) SavePreset(name string) {
	if err := m.Engine.SavePreset(m.ctx, name); err != nil {
		m.ShowNotification(fmt.Sprintf("Could not save preset: %v", err), "error", config.ErrorNotificationDuration)
		return
	}
	m.ShowNotification(fmt.Sprintf("Saved preset %q", name), "success", config.NotificationDuration)
}

// LoadPreset applies the named preset. Success is reported by the engine
// observer.
func (m *Dashboard) LoadPreset(name string) {
	m.Pointer = nil
	if _, ok := m.Engine.LoadPreset(m.ctx, name); !ok {
		m.ShowNotification(fmt.Sprintf("No preset named %q", name), "warning", config.NotificationDuration)
		return
	}
	m.FocusedPanel()
}

// DeletePreset removes the named preset.
func (m *Dashboard) DeletePreset(name string) {
	ok, err := m.Engine.DeletePreset(m.ctx, name)
	switch {
	case err != nil:
		m.ShowNotification(fmt.Sprintf("Deleted %q, but saving failed: %v", name, err), "error", config.ErrorNotificationDuration)
	case ok:
		m.ShowNotification(fmt.Sprintf("Deleted preset %q", name), "info", config.NotificationDuration)
	}
}

// ResetLayout re-cascades every visible panel and forgets all presets.
func (m *Dashboard) ResetLayout() {
	m.Pointer = nil
	_ = m.Engine.Reset(m.ctx)
}

// ReloadLayout re-reads the layout after another process changed it. While
// a mouse gesture is in flight the reload waits for it to end.
func (m *Dashboard) ReloadLayout() {
	if m.Pointer != nil {
		m.pendingReload = true
		return
	}
	m.pendingReload = false
	if m.Engine.Reload(m.ctx) {
		m.ShowNotification("Layout changed on disk, reloaded", "info", config.NotificationDuration)
	}
	m.FocusedPanel()
}

// EndPointer finishes the mouse gesture in flight, if any, and runs a
// reload that was held back while it was active.
func (m *Dashboard) EndPointer() {
	p := m.Pointer
	if p == nil {
		return
	}
	m.Pointer = nil
	switch p.Kind {
	case gesture.Drag:
		_, _ = m.Engine.DragEnd(m.ctx, p.PanelID)
	case gesture.Resize:
		_, _ = m.Engine.ResizeEnd(m.ctx, p.PanelID)
	}
	if m.pendingReload {
		m.ReloadLayout()
	}
}
