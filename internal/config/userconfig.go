package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"github.com/Gaurav-Gosain/dashpanel/internal/geometry"
	"github.com/Gaurav-Gosain/dashpanel/internal/widget"
)

const configRelPath = "dashpanel/config.toml"

// UserConfig represents the user's custom configuration
type UserConfig struct {
	Layout      LayoutConfig      `toml:"layout"`
	Panels      PanelsConfig      `toml:"panels"`
	Storage     StorageConfig     `toml:"storage"`
	Appearance  AppearanceConfig  `toml:"appearance"`
	Server      ServerConfig      `toml:"server"`
	Logging     LoggingConfig     `toml:"logging"`
	Keybindings KeybindingsConfig `toml:"keybindings"`
}

// LayoutConfig holds the geometry constants of the layout engine and the
// terminal cell mapping.
type LayoutConfig struct {
	GridSize          int `toml:"grid_size"`          // Snapping grid pitch in pixels (default: 10)
	MagneticThreshold int `toml:"magnetic_threshold"` // Neighbour alignment distance (default: 20)
	EdgeThreshold     int `toml:"edge_threshold"`     // Viewport edge snap distance (default: 15)
	MinWidth          int `toml:"min_width"`
	MinHeight         int `toml:"min_height"`
	MaxWidth          int `toml:"max_width"`
	MaxHeight         int `toml:"max_height"`
	DefaultWidth      int `toml:"default_width"`
	DefaultHeight     int `toml:"default_height"`
	TopOffset         int `toml:"top_offset"`      // Room reserved above the default cascade (default: 30)
	CascadeColumns    int `toml:"cascade_columns"` // Panels per row in the default cascade (default: 3)
	CellWidth         int `toml:"cell_width"`      // Pixels per terminal column (default: 10)
	CellHeight        int `toml:"cell_height"`     // Pixels per terminal row (default: 20)
}

// PanelsConfig holds the panel selection shown at startup
type PanelsConfig struct {
	Visible []string `toml:"visible"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Backend    string `toml:"backend"`     // json, sqlite or memory (default: json)
	Path       string `toml:"path"`        // Empty means the XDG data default for the backend
	Watch      *bool  `toml:"watch"`       // Reload when another process rewrites the layout file (default: true)
	DebounceMS int    `toml:"debounce_ms"` // Coalescing window for file change events (default: 250)
}

// AppearanceConfig holds appearance-related settings
type AppearanceConfig struct {
	Theme       string `toml:"theme"`        // Color theme name (e.g., dracula, nord, my-custom-theme)
	BorderStyle string `toml:"border_style"` // Border style: rounded, normal, thick, double, hidden, block, ascii, outer-half-block, inner-half-block
	ASCIIOnly   bool   `toml:"ascii_only"`   // Use ASCII characters for borders and glyphs
}

// ServerConfig holds the HTTP bridge settings
type ServerConfig struct {
	Addr          string `toml:"addr"`           // Listen address (default: 127.0.0.1:7733)
	AllowedOrigin string `toml:"allowed_origin"` // CORS origin of the renderer (default: *)
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level string `toml:"level"` // debug, info, warn, error (default: info)
	File  string `toml:"file"`  // TUI log file; empty means $XDG_STATE_HOME/dashpanel/dashpanel.log
}

// KeybindingsConfig holds all keybinding configurations
type KeybindingsConfig struct {
	Navigation map[string][]string `toml:"navigation"`
	Layout     map[string][]string `toml:"layout"`
	Panels     map[string][]string `toml:"panels"`
	Presets    map[string][]string `toml:"presets"`
	System     map[string][]string `toml:"system"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *UserConfig {
	policy := geometry.DefaultPolicy()
	watch := true
	return &UserConfig{
		Layout: LayoutConfig{
			GridSize:          policy.GridSize,
			MagneticThreshold: policy.MagneticThreshold,
			EdgeThreshold:     policy.EdgeThreshold,
			MinWidth:          policy.MinWidth,
			MinHeight:         policy.MinHeight,
			MaxWidth:          policy.MaxWidth,
			MaxHeight:         policy.MaxHeight,
			DefaultWidth:      policy.DefaultWidth,
			DefaultHeight:     policy.DefaultHeight,
			TopOffset:         policy.TopOffset,
			CascadeColumns:    policy.CascadeColumns,
			CellWidth:         DefaultCellWidth,
			CellHeight:        DefaultCellHeight,
		},
		Panels: PanelsConfig{
			Visible: widget.DefaultVisible(),
		},
		Storage: StorageConfig{
			Backend:    "json",
			Path:       "", // Empty means use default XDG path
			Watch:      &watch,
			DebounceMS: 250,
		},
		Appearance: AppearanceConfig{
			BorderStyle: "rounded",
		},
		Server: ServerConfig{
			Addr:          "127.0.0.1:7733",
			AllowedOrigin: "*",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Keybindings: KeybindingsConfig{
			Navigation: map[string][]string{
				ActionFocusNext:  {"tab"},
				ActionFocusPrev:  {"shift+tab"},
				ActionRaisePanel: {"enter", "f"},
			},
			Layout: map[string][]string{
				ActionNudgeLeft:    {"left", "h"},
				ActionNudgeRight:   {"right", "l"},
				ActionNudgeUp:      {"up", "k"},
				ActionNudgeDown:    {"down", "j"},
				ActionGrowWidth:    {"shift+right", "L"},
				ActionShrinkWidth:  {"shift+left", "H"},
				ActionGrowHeight:   {"shift+down", "J"},
				ActionShrinkHeight: {"shift+up", "K"},
			},
			Panels: getDefaultPanelKeybinds(),
			Presets: map[string][]string{
				ActionSavePreset:   {"s"},
				ActionPresetPicker: {"p"},
				ActionResetLayout:  {"R"},
			},
			System: map[string][]string{
				ActionToggleHelp: {"?"},
				ActionQuit:       {"q", "ctrl+c"},
			},
		},
	}
}

// getDefaultPanelKeybinds binds 1-N to the visibility toggle of each
// registered panel.
func getDefaultPanelKeybinds() map[string][]string {
	binds := make(map[string][]string)
	for i := range widget.IDs() {
		binds[TogglePanelAction(i+1)] = []string{fmt.Sprintf("%d", i+1)}
	}
	return binds
}

// Policy converts the [layout] section into the engine's geometry policy.
func (c *UserConfig) Policy() geometry.Policy {
	l := c.Layout
	return geometry.Policy{
		GridSize:          l.GridSize,
		MagneticThreshold: l.MagneticThreshold,
		EdgeThreshold:     l.EdgeThreshold,
		MinWidth:          l.MinWidth,
		MinHeight:         l.MinHeight,
		MaxWidth:          l.MaxWidth,
		MaxHeight:         l.MaxHeight,
		DefaultWidth:      l.DefaultWidth,
		DefaultHeight:     l.DefaultHeight,
		TopOffset:         l.TopOffset,
		CascadeColumns:    l.CascadeColumns,
	}
}

// WatchEnabled reports whether the layout file should be watched.
func (c *UserConfig) WatchEnabled() bool {
	return c.Storage.Watch == nil || *c.Storage.Watch
}

// Debounce returns the file watcher's coalescing window.
func (c *UserConfig) Debounce() time.Duration {
	return time.Duration(c.Storage.DebounceMS) * time.Millisecond
}

// LoadUserConfig loads the configuration from the XDG config directory,
// writing a commented default file on first run.
func LoadUserConfig() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadUserConfigFrom(configPath)
}

// LoadUserConfigFrom loads the configuration at path, creating it with
// defaults when it does not exist.
func LoadUserConfigFrom(configPath string) (*UserConfig, error) {
	// #nosec G304 - configPath is the user's config file, reading it is intentional
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return createDefaultConfig(configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg UserConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	defaultCfg := DefaultConfig()
	fillMissingLayout(&cfg, defaultCfg)
	fillMissingPanels(&cfg, defaultCfg)
	fillMissingStorage(&cfg, defaultCfg)
	fillMissingAppearance(&cfg, defaultCfg)
	fillMissingServer(&cfg, defaultCfg)
	fillMissingLogging(&cfg, defaultCfg)
	fillMissingKeybinds(&cfg, defaultCfg)

	validation := ValidateConfig(&cfg)
	if validation.HasErrors() {
		for _, issue := range validation.Errors {
			log.Error("config error", "section", issue.Field, "key", issue.Key, "msg", issue.Message)
		}
		return nil, fmt.Errorf("configuration has %d error(s), please fix and restart: %w",
			len(validation.Errors), ErrInvalidConfig)
	}
	for _, issue := range validation.Warnings {
		log.Warn("config warning", "section", issue.Field, "key", issue.Key, "msg", issue.Message)
	}

	return &cfg, nil
}

// WriteDefaultConfig overwrites path with the commented default config.
func WriteDefaultConfig(configPath string) error {
	_, err := createDefaultConfig(configPath)
	return err
}

func createDefaultConfig(configPath string) (*UserConfig, error) {
	cfg := DefaultConfig()

	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# dashpanel Configuration File\n")
	sb.WriteString("# Panel layout constants, storage, appearance and keybindings\n")
	sb.WriteString("#\n")
	sb.WriteString("# Configuration location: " + configPath + "\n")
	sb.WriteString("# Run `dashpanel config reset` to restore this file.\n\n")

	sb.WriteString("# ============================================================================\n")
	sb.WriteString("# LAYOUT\n")
	sb.WriteString("# ============================================================================\n")
	sb.WriteString("# All sizes are layout pixels. In the terminal one column is cell_width\n")
	sb.WriteString("# pixels and one row is cell_height pixels.\n")
	sb.WriteString("#   grid_size: snapping grid pitch (default: 10)\n")
	sb.WriteString("#   magnetic_threshold: neighbour edge alignment distance (default: 20)\n")
	sb.WriteString("#   edge_threshold: viewport edge snap distance (default: 15)\n")
	sb.WriteString("#   min/max/default sizes bound panel resizing (default: 150x100 .. 600x400, new panels 200x100)\n")
	sb.WriteString("#\n")
	sb.WriteString("# STORAGE\n")
	sb.WriteString("#   backend: json, sqlite or memory (default: json)\n")
	sb.WriteString("#   path: file location; empty uses $XDG_DATA_HOME/dashpanel/\n")
	sb.WriteString("#   watch: reload when another process writes the layout file (json only)\n")
	sb.WriteString("#\n")
	sb.WriteString("# APPEARANCE\n")
	sb.WriteString("#   theme: color theme name (e.g., dracula, nord, my-custom-theme)\n")
	sb.WriteString("#     Leave empty to use the built-in palette. Custom themes: ~/.config/dashpanel/themes/*.json\n")
	sb.WriteString("#   border_style: " + strings.Join(ValidBorderStyles, ", ") + "\n")
	sb.WriteString("#\n")
	sb.WriteString("# SERVER\n")
	sb.WriteString("#   addr: listen address of `dashpanel serve` (default: 127.0.0.1:7733)\n")
	sb.WriteString("# ============================================================================\n\n")

	if _, err := sb.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write config data: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(sb.String()), 0600); err != nil {
		return nil, fmt.Errorf("failed to write config file: %w", err)
	}

	return cfg, nil
}

func fillMissingLayout(cfg, defaultCfg *UserConfig) {
	l, d := &cfg.Layout, defaultCfg.Layout
	fields := []struct {
		target *int
		def    int
	}{
		{&l.GridSize, d.GridSize},
		{&l.MagneticThreshold, d.MagneticThreshold},
		{&l.EdgeThreshold, d.EdgeThreshold},
		{&l.MinWidth, d.MinWidth},
		{&l.MinHeight, d.MinHeight},
		{&l.MaxWidth, d.MaxWidth},
		{&l.MaxHeight, d.MaxHeight},
		{&l.DefaultWidth, d.DefaultWidth},
		{&l.DefaultHeight, d.DefaultHeight},
		{&l.TopOffset, d.TopOffset},
		{&l.CascadeColumns, d.CascadeColumns},
		{&l.CellWidth, d.CellWidth},
		{&l.CellHeight, d.CellHeight},
	}
	for _, f := range fields {
		if *f.target == 0 {
			*f.target = f.def
		}
	}
}

func fillMissingPanels(cfg, defaultCfg *UserConfig) {
	if cfg.Panels.Visible == nil {
		cfg.Panels.Visible = defaultCfg.Panels.Visible
	}
}

func fillMissingStorage(cfg, defaultCfg *UserConfig) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaultCfg.Storage.Backend
	}
	if cfg.Storage.Watch == nil {
		cfg.Storage.Watch = defaultCfg.Storage.Watch
	}
	if cfg.Storage.DebounceMS == 0 {
		cfg.Storage.DebounceMS = defaultCfg.Storage.DebounceMS
	}
}

func fillMissingAppearance(cfg, defaultCfg *UserConfig) {
	if cfg.Appearance.BorderStyle == "" {
		cfg.Appearance.BorderStyle = defaultCfg.Appearance.BorderStyle
	}
}

func fillMissingServer(cfg, defaultCfg *UserConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultCfg.Server.Addr
	}
	if cfg.Server.AllowedOrigin == "" {
		cfg.Server.AllowedOrigin = defaultCfg.Server.AllowedOrigin
	}
}

func fillMissingLogging(cfg, defaultCfg *UserConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultCfg.Logging.Level
	}
}

func fillMissingKeybinds(cfg, defaultCfg *UserConfig) {
	k, d := &cfg.Keybindings, defaultCfg.Keybindings
	if k.Navigation == nil {
		k.Navigation = make(map[string][]string)
	}
	if k.Layout == nil {
		k.Layout = make(map[string][]string)
	}
	if k.Panels == nil {
		k.Panels = make(map[string][]string)
	}
	if k.Presets == nil {
		k.Presets = make(map[string][]string)
	}
	if k.System == nil {
		k.System = make(map[string][]string)
	}
	fillMapDefaults(k.Navigation, d.Navigation)
	fillMapDefaults(k.Layout, d.Layout)
	fillMapDefaults(k.Panels, d.Panels)
	fillMapDefaults(k.Presets, d.Presets)
	fillMapDefaults(k.System, d.System)
}

// fillMapDefaults adds default bindings for actions the user did not set.
// An explicit empty list unbinds the action and is left alone.
func fillMapDefaults(target, defaults map[string][]string) {
	for action, keys := range defaults {
		if _, exists := target[action]; !exists {
			target[action] = keys
		}
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	path, err := xdg.SearchConfigFile(configRelPath)
	if err != nil {
		// Return where it would be created
		return xdg.ConfigFile(configRelPath)
	}
	return path, nil
}
