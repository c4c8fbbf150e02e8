package config

import (
	"github.com/charmbracelet/log"

	"github.com/Gaurav-Gosain/dashpanel/internal/theme"
)

// Overrides contains CLI flag values that can override user config.
// Zero values indicate the flag was not set and should use the user config default.
type Overrides struct {
	// ThemeName is the theme to load
	ThemeName string

	// BorderStyle overrides the panel border style
	BorderStyle string

	// ASCIIOnly uses ASCII characters instead of box-drawing glyphs
	ASCIIOnly bool

	// StorageBackend overrides [storage] backend
	StorageBackend string

	// StoragePath overrides [storage] path
	StoragePath string

	// NoWatch disables the layout file watcher
	NoWatch bool

	// Addr overrides [server] addr
	Addr string

	// CellWidth and CellHeight override the terminal pixel mapping (0 means use config)
	CellWidth  int
	CellHeight int

	// Debug raises the log level to debug
	Debug bool
}

// ApplyOverrides applies CLI flag overrides on top of userConfig, falling back
// to the defaults when userConfig is nil, and sets the global appearance
// settings. The returned config is the one the application should use.
func ApplyOverrides(overrides Overrides, userConfig *UserConfig) *UserConfig {
	cfg := userConfig
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if overrides.StorageBackend != "" {
		cfg.Storage.Backend = overrides.StorageBackend
	}
	if overrides.StoragePath != "" {
		cfg.Storage.Path = overrides.StoragePath
	}
	if overrides.NoWatch {
		watch := false
		cfg.Storage.Watch = &watch
	}
	if overrides.Addr != "" {
		cfg.Server.Addr = overrides.Addr
	}
	if overrides.CellWidth > 0 {
		cfg.Layout.CellWidth = overrides.CellWidth
	}
	if overrides.CellHeight > 0 {
		cfg.Layout.CellHeight = overrides.CellHeight
	}
	if overrides.Debug {
		cfg.Logging.Level = "debug"
	}

	// ASCII Only - OR of CLI flag and user config
	UseASCIIOnly = overrides.ASCIIOnly || cfg.Appearance.ASCIIOnly

	// Border Style - CLI flag takes precedence, otherwise use user config
	if overrides.BorderStyle != "" {
		cfg.Appearance.BorderStyle = overrides.BorderStyle
	}
	if cfg.Appearance.BorderStyle != "" {
		BorderStyle = cfg.Appearance.BorderStyle
	}

	// Theme - CLI flag takes precedence, otherwise use user config
	if overrides.ThemeName != "" {
		cfg.Appearance.Theme = overrides.ThemeName
	}
	if err := theme.Initialize(cfg.Appearance.Theme); err != nil {
		log.Warn("failed to load theme", "theme", cfg.Appearance.Theme, "err", err)
	}

	return cfg
}
