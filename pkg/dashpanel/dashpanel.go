// Package dashpanel provides the panel layout engine and its terminal view
// for embedding in other Bubble Tea applications or Go services.
//
// The engine keeps freeform panel geometry on a snapping grid: panels snap
// to the viewport edges and to each other, never overlap after a drag, keep
// their stacking order, and can be saved as named presets.
//
// # Basic Usage
//
// Create a dashboard with in-memory storage and run it:
//
//	model, closer, err := dashpanel.New(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer closer.Close()
//	p := tea.NewProgram(model, dashpanel.ProgramOptions()...)
//	if _, err := p.Run(); err != nil {
//		log.Fatal(err)
//	}
//
// # Custom Configuration
//
// Use options to pick storage, panels and appearance:
//
//	model, closer, err := dashpanel.New(ctx,
//		dashpanel.WithStorage("sqlite", "/var/lib/app/layout.db"),
//		dashpanel.WithVisible("orderBook", "fundingRate"),
//		dashpanel.WithTheme("dracula"),
//	)
//
// # Headless Use
//
// A renderer that draws panels itself can drive the engine over HTTP:
//
//	eng, closer, err := dashpanel.NewEngine(ctx, dashpanel.WithStorage("json", ""))
//	http.ListenAndServe("127.0.0.1:7733", dashpanel.Handler(eng, ""))
package dashpanel

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/Gaurav-Gosain/dashpanel/internal/app"
	"github.com/Gaurav-Gosain/dashpanel/internal/config"
	"github.com/Gaurav-Gosain/dashpanel/internal/engine"
	"github.com/Gaurav-Gosain/dashpanel/internal/geometry"
	"github.com/Gaurav-Gosain/dashpanel/internal/input"
	"github.com/Gaurav-Gosain/dashpanel/internal/logging"
	"github.com/Gaurav-Gosain/dashpanel/internal/model"
	"github.com/Gaurav-Gosain/dashpanel/internal/server"
	"github.com/Gaurav-Gosain/dashpanel/internal/storage"
	"github.com/Gaurav-Gosain/dashpanel/internal/theme"
	"github.com/Gaurav-Gosain/dashpanel/internal/widget"
)

// Model is the terminal dashboard. It implements tea.Model.
type Model = app.Dashboard

// Engine is the layout engine. It is safe for concurrent use.
type Engine = engine.Engine

// Observer receives engine events after commits, preset loads, resets and
// reloads.
type Observer = engine.Observer

// Layout types.
type (
	Geometry = model.Geometry
	Point    = model.Point
	Size     = model.Size
	Preset   = model.Preset
	Snapshot = model.Snapshot
	Policy   = geometry.Policy
)

// Options configures a dashboard or a bare engine.
type Options struct {
	// StorageBackend is "json", "sqlite" or "memory". Default is memory.
	StorageBackend string

	// StoragePath is the layout file or database. Empty means the XDG data
	// default for the backend.
	StoragePath string

	// Visible is the initial panel selection. Nil means every known panel.
	Visible []string

	// Policy holds the geometry constants. The zero value means defaults.
	Policy Policy

	// Theme is the color theme name (e.g., "dracula", "nord", "tokyonight").
	// Leave empty to use standard terminal colors.
	Theme string

	// ASCIIOnly uses ASCII characters instead of Nerd Font glyphs.
	ASCIIOnly bool

	// BorderStyle sets the panel border style.
	// Valid values: "rounded", "normal", "thick", "double", "hidden", "block", "ascii"
	BorderStyle string

	// CellWidth and CellHeight map terminal cells to layout pixels.
	CellWidth  int
	CellHeight int

	// Width and Height are the initial terminal size (set by the first
	// window size message if 0).
	Width  int
	Height int

	// Logger receives engine logs. Nil discards them.
	Logger *log.Logger

	// Observer receives engine events. The terminal dashboard installs its
	// own and ignores this.
	Observer Observer

	// UserConfig supplies keybindings. If nil, defaults are used.
	UserConfig *config.UserConfig
}

// Option is a functional option for configuring dashpanel.
type Option func(*Options)

// WithStorage selects the persistence backend and its path.
func WithStorage(backend, path string) Option {
	return func(o *Options) {
		o.StorageBackend = backend
		o.StoragePath = path
	}
}

// WithVisible sets the initial panel selection.
func WithVisible(ids ...string) Option {
	return func(o *Options) {
		o.Visible = ids
	}
}

// WithPolicy sets the geometry constants.
func WithPolicy(p Policy) Option {
	return func(o *Options) {
		o.Policy = p
	}
}

// WithTheme sets the color theme.
func WithTheme(name string) Option {
	return func(o *Options) {
		o.Theme = name
	}
}

// WithASCIIOnly enables ASCII-only mode.
func WithASCIIOnly(enabled bool) Option {
	return func(o *Options) {
		o.ASCIIOnly = enabled
	}
}

// WithBorderStyle sets the panel border style.
func WithBorderStyle(style string) Option {
	return func(o *Options) {
		o.BorderStyle = style
	}
}

// WithCellSize sets the pixel size of one terminal cell.
func WithCellSize(width, height int) Option {
	return func(o *Options) {
		o.CellWidth = width
		o.CellHeight = height
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(o *Options) {
		o.Width = width
		o.Height = height
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithObserver sets the engine observer of a bare engine.
func WithObserver(obs Observer) Option {
	return func(o *Options) {
		o.Observer = obs
	}
}

// WithUserConfig sets a custom user configuration.
func WithUserConfig(cfg *config.UserConfig) Option {
	return func(o *Options) {
		o.UserConfig = cfg
	}
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		StorageBackend: storage.BackendMemory,
		Policy:         geometry.DefaultPolicy(),
		CellWidth:      config.DefaultCellWidth,
		CellHeight:     config.DefaultCellHeight,
	}
}

func buildOptions(opts []Option) Options {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Visible == nil {
		options.Visible = widget.DefaultVisible()
	}
	return options
}

func newEngine(ctx context.Context, options Options) (*Engine, io.Closer, error) {
	kv, err := storage.Open(ctx, storage.Options{
		Backend: options.StorageBackend,
		Path:    options.StoragePath,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s storage: %w", options.StorageBackend, err)
	}
	logger := logging.OrDiscard(options.Logger)
	eng := engine.New(ctx, engine.Options{
		Policy:   options.Policy,
		Adapter:  storage.NewAdapter(kv, logger),
		Observer: options.Observer,
		Logger:   logger,
	})
	eng.SetVisible(ctx, options.Visible)
	return eng, kv, nil
}

// NewEngine creates a layout engine without a terminal view. Close the
// returned closer to release storage.
func NewEngine(ctx context.Context, opts ...Option) (*Engine, io.Closer, error) {
	return newEngine(ctx, buildOptions(opts))
}

// New creates a terminal dashboard over a new engine. Close the returned
// closer when the program exits.
func New(ctx context.Context, opts ...Option) (*Model, io.Closer, error) {
	options := buildOptions(opts)

	// Apply global appearance options
	config.UseASCIIOnly = options.ASCIIOnly
	if options.BorderStyle != "" {
		config.BorderStyle = options.BorderStyle
	}
	if options.Theme != "" {
		_ = theme.Initialize(options.Theme)
	}

	widgets := widget.Default()
	feed := app.NewEventFeed(widgets)
	options.Observer = feed
	eng, closer, err := newEngine(ctx, options)
	if err != nil {
		return nil, nil, err
	}

	app.SetInputHandler(input.HandleInput)

	m := app.New(ctx, app.Options{
		Engine:          eng,
		Widgets:         widgets,
		KeybindRegistry: config.NewKeybindRegistry(options.UserConfig),
		Events:          feed,
		CellWidth:       options.CellWidth,
		CellHeight:      options.CellHeight,
		Logger:          options.Logger,
	})
	if options.Width > 0 && options.Height > 0 {
		m.Resize(options.Width, options.Height)
	}
	return m, closer, nil
}

// Handler returns the layout HTTP API for eng, as served by
// "dashpanel serve". origin is the allowed CORS origin; empty allows any.
func Handler(eng *Engine, origin string) http.Handler {
	return server.New(server.Options{
		Engine:        eng,
		Widgets:       widget.Default(),
		AllowedOrigin: origin,
	}).Handler()
}

// ProgramOptions returns recommended tea.ProgramOption values for running
// the dashboard:
//
//	p := tea.NewProgram(model, dashpanel.ProgramOptions()...)
func ProgramOptions() []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithFilter(FilterMouseMotion),
	}
}

// FilterMouseMotion is a tea.WithFilter function that drops mouse motion
// unless a panel is being dragged or resized.
func FilterMouseMotion(m tea.Model, msg tea.Msg) tea.Msg {
	return input.FilterMouseMotion(m, msg)
}

// PanelIDs lists the known panels in display order.
func PanelIDs() []string {
	return widget.IDs()
}

// Config re-exports the config package for customization.
// This allows users to access configuration types without importing internal packages.
var Config = struct {
	// LoadUserConfig loads the user's configuration file.
	LoadUserConfig func() (*config.UserConfig, error)
	// DefaultConfig returns the default configuration.
	DefaultConfig func() *config.UserConfig
	// GetConfigPath returns the path to the configuration file.
	GetConfigPath func() (string, error)
}{
	LoadUserConfig: config.LoadUserConfig,
	DefaultConfig:  config.DefaultConfig,
	GetConfigPath:  config.GetConfigPath,
}
