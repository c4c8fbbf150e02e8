// Package config provides configuration constants, keybinding management, and user settings.
package config

import (
	"time"

	"charm.land/lipgloss/v2"
)

// =============================================================================
// Terminal Cell Mapping
// =============================================================================

const (
	// DefaultCellWidth is the number of layout pixels one terminal column stands for
	DefaultCellWidth = 10

	// DefaultCellHeight is the number of layout pixels one terminal row stands for
	DefaultCellHeight = 20

	// StatusBarHeight is the number of rows reserved at the top for the status bar
	StatusBarHeight = 1
)

// =============================================================================
// Durations
// =============================================================================

const (
	// NotificationDuration is the default duration notifications remain visible
	NotificationDuration = 2 * time.Second

	// ErrorNotificationDuration keeps failures on screen a little longer
	ErrorNotificationDuration = 4 * time.Second

	// NotificationTick is how often expired notifications are swept
	NotificationTick = 250 * time.Millisecond

	// ShutdownTimeout bounds the HTTP server's graceful shutdown
	ShutdownTimeout = 5 * time.Second
)

// =============================================================================
// Notification Icons
// =============================================================================

const (
	// NotificationIconError is the error notification icon
	NotificationIconError = "[X]"

	// NotificationIconWarning is the warning notification icon
	NotificationIconWarning = "[!]"

	// NotificationIconSuccess is the success notification icon
	NotificationIconSuccess = "[OK]"

	// NotificationIconInfo is the info notification icon
	NotificationIconInfo = "[i]"
)

// =============================================================================
// Overlay Dimensions
// =============================================================================

const (
	// HelpOverlayWidth is the width of the help overlay
	HelpOverlayWidth = 56

	// PromptOverlayWidth is the width of the preset name prompt
	PromptOverlayWidth = 44

	// PickerOverlayWidth is the width of the preset picker
	PickerOverlayWidth = 44

	// MaxPresetNameLength caps the preset name typed into the prompt
	MaxPresetNameLength = 40

	// NotificationWidth is the maximum width of a notification toast
	NotificationWidth = 48
)

// =============================================================================
// Z-Index Layers
// =============================================================================

const (
	// ZIndexPanelBase is added to an engine z-index so panels sit above the background
	ZIndexPanelBase = 10

	// ZIndexStatusBar keeps the status bar above every panel
	ZIndexStatusBar = 100000

	// ZIndexNotifications is the layer for toasts
	ZIndexNotifications = 100100

	// ZIndexOverlay is the layer for help, prompt, picker and confirm dialogs
	ZIndexOverlay = 100200
)

// =============================================================================
// Runtime Appearance Settings
// =============================================================================

// UseASCIIOnly replaces box-drawing characters with ASCII
var UseASCIIOnly = false

// BorderStyle is the panel border style (set from config)
var BorderStyle = "rounded"

// ValidBorderStyles lists the accepted border_style values
var ValidBorderStyles = []string{
	"rounded", "normal", "thick", "double", "hidden", "block", "ascii",
	"outer-half-block", "inner-half-block",
}

// GetBorderForStyle returns the lipgloss Border for the current style
func GetBorderForStyle() lipgloss.Border {
	if UseASCIIOnly || BorderStyle == "ascii" {
		return lipgloss.ASCIIBorder()
	}
	switch BorderStyle {
	case "normal":
		return lipgloss.NormalBorder()
	case "thick":
		return lipgloss.ThickBorder()
	case "double":
		return lipgloss.DoubleBorder()
	case "hidden":
		return lipgloss.HiddenBorder()
	case "block":
		return lipgloss.BlockBorder()
	case "outer-half-block":
		return lipgloss.OuterHalfBlockBorder()
	case "inner-half-block":
		return lipgloss.InnerHalfBlockBorder()
	case "rounded":
		fallthrough
	default:
		return lipgloss.RoundedBorder()
	}
}

// GetResizeHandle returns the glyph drawn in a panel's bottom-right corner
func GetResizeHandle() string {
	if UseASCIIOnly {
		return "+"
	}
	return "◢"
}

// GetStatusSeparator returns the separator between status bar sections
func GetStatusSeparator() string {
	if UseASCIIOnly {
		return "|"
	}
	return "│"
}

const (
	// PillLeft is the left pill-style character around panel title badges.
	PillLeft = string(rune(0xe0b6))
	// PillRight is the right pill-style character around panel title badges.
	PillRight = string(rune(0xe0b4))
	// PillLeftASCII is the left pill-style character (ASCII fallback).
	PillLeftASCII = "["
	// PillRightASCII is the right pill-style character (ASCII fallback).
	PillRightASCII = "]"
)

// GetPillLeft returns the appropriate pill left character
func GetPillLeft() string {
	if UseASCIIOnly {
		return PillLeftASCII
	}
	return PillLeft
}

// GetPillRight returns the appropriate pill right character
func GetPillRight() string {
	if UseASCIIOnly {
		return PillRightASCII
	}
	return PillRight
}
