// Package theme maps the active bubbletint palette onto dashboard colours:
// per-panel accents, borders, the status bar and notifications.
package theme

import (
	"fmt"
	"image/color"
	"slices"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/log"
	tint "github.com/lrstanley/bubbletint/v2"
)

var enabled bool

// Initialize sets up the theme registry with the named theme. An empty name
// disables theming and the fixed fallback colours are used instead. Unknown
// names fall back to "default".
func Initialize(themeName string) error {
	if themeName == "" {
		enabled = false
		return nil
	}

	enabled = true
	tint.NewDefaultRegistry()

	if themesDir, err := GetThemesDir(); err == nil {
		if _, err := LoadCustomThemes(themesDir); err != nil {
			log.Warn("error loading custom themes", "err", err)
		}
	}

	if !tint.SetTintID(themeName) {
		log.Warn("unknown theme, using default", "theme", themeName)
		tint.SetTintID("default")
	}
	return nil
}

// IsEnabled reports whether a theme is active.
func IsEnabled() bool {
	return enabled
}

// Current returns the active theme, or nil when theming is disabled.
func Current() *tint.Tint {
	if !enabled {
		return nil
	}
	return tint.Current()
}

// IDs lists every registered theme id, sorted. It initializes the default
// registry when nothing has been set up yet.
func IDs() []string {
	if !enabled {
		tint.NewDefaultRegistry()
		if themesDir, err := GetThemesDir(); err == nil {
			_, _ = LoadCustomThemes(themesDir)
		}
	}
	ids := tint.TintIDs()
	slices.Sort(ids)
	return ids
}

// PanelAccent returns the accent colour for a panel slot. Each known panel
// gets a distinct hue; anything else is drawn in the neutral border colour.
func PanelAccent(id string) color.Color {
	t := Current()
	if t == nil {
		switch id {
		case "symbolSelector":
			return lipgloss.Color("#cdcd00")
		case "liquidation":
			return lipgloss.Color("#cd0000")
		case "tradeVolume":
			return lipgloss.Color("#00cd00")
		case "orderBook":
			return lipgloss.Color("#5c5cff")
		case "fundingRate":
			return lipgloss.Color("#cd00cd")
		}
		return BorderUnfocused()
	}
	switch id {
	case "symbolSelector":
		return t.Yellow
	case "liquidation":
		return t.Red
	case "tradeVolume":
		return t.Green
	case "orderBook":
		return t.Blue
	case "fundingRate":
		return t.Purple
	}
	return BorderUnfocused()
}

// BorderUnfocused returns the border colour of panels without focus.
func BorderUnfocused() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#808090")
	}
	return t.BrightBlack
}

// BorderFocused returns the border colour of the focused panel.
func BorderFocused() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#FFD700")
	}
	return t.BrightYellow
}

// BorderGesture returns the border colour of a panel being dragged or resized.
func BorderGesture() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#AFFFFF")
	}
	return t.BrightCyan
}

// PanelFg returns the text colour inside panels.
func PanelFg() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#e5e5e5")
	}
	return t.Fg
}

// Background returns the desktop background.
func Background() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#000000")
	}
	return t.Bg
}

// StatusBarBg returns the status bar background.
func StatusBarBg() color.Color {
	return lipgloss.Color("#2a2a3e")
}

// StatusBarFg returns the status bar text colour.
func StatusBarFg() color.Color {
	return lipgloss.Color("#a0a0a8")
}

// StatusBarHighlight returns the colour for the mode badge and focused panel.
func StatusBarHighlight() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#00ff00")
	}
	return t.BrightGreen
}

// StatusBarDimmed returns the colour of hidden panels in the status bar.
func StatusBarDimmed() color.Color {
	return lipgloss.Color("#606070")
}

// NotificationError returns the colour for error notifications.
func NotificationError() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#cd0000")
	}
	return t.Red
}

// NotificationWarning returns the colour for warning notifications.
func NotificationWarning() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#cdcd00")
	}
	return t.Yellow
}

// NotificationSuccess returns the colour for success notifications.
func NotificationSuccess() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#00cd00")
	}
	return t.Green
}

// NotificationInfo returns the colour for info notifications.
func NotificationInfo() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#0000ee")
	}
	return t.Blue
}

// NotificationBg returns the notification background.
func NotificationBg() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#000000")
	}
	return t.Bg
}

// OverlayBg returns the background of help, prompt and picker overlays.
func OverlayBg() color.Color {
	return lipgloss.Color("#1a1a2e")
}

// OverlayTitle returns the overlay title colour.
func OverlayTitle() color.Color {
	return lipgloss.Color("14")
}

// OverlayKey returns the colour of key badges in overlays.
func OverlayKey() color.Color {
	return lipgloss.Color("11")
}

// OverlayText returns the body text colour of overlays.
func OverlayText() color.Color {
	return lipgloss.Color("7")
}

// OverlaySelection returns the background of the selected picker row.
func OverlaySelection() color.Color {
	return lipgloss.Color("62")
}

// ColorToString converts c to a #rrggbb string.
func ColorToString(c color.Color) string {
	if c == nil {
		return "#000000"
	}
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
