package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/Gaurav-Gosain/dashpanel/internal/app"
	"github.com/Gaurav-Gosain/dashpanel/internal/config"
	"github.com/Gaurav-Gosain/dashpanel/internal/engine"
	"github.com/Gaurav-Gosain/dashpanel/internal/input"
	"github.com/Gaurav-Gosain/dashpanel/internal/logging"
	"github.com/Gaurav-Gosain/dashpanel/internal/server"
	"github.com/Gaurav-Gosain/dashpanel/internal/storage"
	"github.com/Gaurav-Gosain/dashpanel/internal/widget"
)

// loadConfig reads the user config and applies the global flags. A config
// that fails validation is fatal; an unreadable one falls back to defaults.
func loadConfig() (*config.UserConfig, error) {
	var (
		userConfig *config.UserConfig
		err        error
	)
	if configFile != "" {
		userConfig, err = config.LoadUserConfigFrom(configFile)
	} else {
		userConfig, err = config.LoadUserConfig()
	}
	if errors.Is(err, config.ErrInvalidConfig) {
		return nil, err
	}
	if err != nil {
		log.Warn("failed to load config, using defaults", "err", err)
		userConfig = config.DefaultConfig()
	}

	return config.ApplyOverrides(config.Overrides{
		ThemeName:      themeName,
		BorderStyle:    borderStyle,
		ASCIIOnly:      asciiOnly,
		StorageBackend: backendFlag(),
		StoragePath:    storagePath,
		NoWatch:        noWatch,
		CellWidth:      cellWidth,
		CellHeight:     cellHeight,
		Debug:          debugMode,
	}, userConfig), nil
}

// backendFlag resolves --ephemeral and --storage into one backend override.
func backendFlag() string {
	if ephemeral {
		return storage.BackendMemory
	}
	return storageBackend
}

func logLevel(cfg *config.UserConfig) log.Level {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warn("invalid log level, using info", "level", cfg.Logging.Level)
	}
	return level
}

// stderrLogger is used by serve and the scripting commands.
func stderrLogger(cfg *config.UserConfig) *log.Logger {
	return logging.New(os.Stderr, logLevel(cfg))
}

// openEngine opens the configured storage backend and hydrates an engine
// from it. The caller closes the returned KV.
func openEngine(ctx context.Context, cfg *config.UserConfig, logger *log.Logger, obs engine.Observer) (*engine.Engine, storage.KV, error) {
	kv, err := storage.Open(ctx, storage.Options{
		Backend: cfg.Storage.Backend,
		Path:    cfg.Storage.Path,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}
	logger.Debug("storage opened", "backend", cfg.Storage.Backend, "path", storageLocation(kv))

	eng := engine.New(ctx, engine.Options{
		Policy:   cfg.Policy(),
		Adapter:  storage.NewAdapter(kv, logger),
		Observer: obs,
		Logger:   logger,
	})
	return eng, kv, nil
}

// storageLocation returns the file behind kv, or "" for the memory backend.
func storageLocation(kv storage.KV) string {
	switch kv := kv.(type) {
	case *storage.FileKV:
		return kv.Path()
	case *storage.SQLiteKV:
		return kv.Path()
	default:
		return ""
	}
}

// watchedFile returns the layout file to watch, if the backend has one and
// watching is enabled.
func watchedFile(cfg *config.UserConfig, kv storage.KV) (string, bool) {
	f, ok := kv.(*storage.FileKV)
	if !ok || !cfg.WatchEnabled() {
		return "", false
	}
	return f.Path(), true
}

func closeStorage(kv storage.KV, logger *log.Logger) {
	if err := kv.Close(); err != nil {
		logger.Warn("failed to close storage", "err", err)
	}
}

func runLocal(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("dashpanel needs an interactive terminal; use 'dashpanel serve' to run the layout API")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file.
	logPath := cfg.Logging.File
	if logPath == "" {
		if logPath, err = logging.DefaultFilePath(); err != nil {
			return err
		}
	}
	logFile, err := logging.OpenFile(logPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = logFile.Close()
	}()
	logger := logging.New(logFile, logLevel(cfg))
	logger.Info("starting dashboard", "version", version)
	if debugMode {
		configPath, _ := config.GetConfigPath()
		logger.Debug("configuration", "path", configPath)
	}

	widgets := widget.Default()
	feed := app.NewEventFeed(widgets)
	eng, kv, err := openEngine(ctx, cfg, logger, feed)
	if err != nil {
		return err
	}
	defer closeStorage(kv, logger)
	eng.SetVisible(ctx, cfg.Panels.Visible)

	app.SetInputHandler(input.HandleInput)

	dashboard := app.New(logging.WithLogger(ctx, logger), app.Options{
		Engine:          eng,
		Widgets:         widgets,
		KeybindRegistry: config.NewKeybindRegistry(cfg),
		Events:          feed,
		CellWidth:       cfg.Layout.CellWidth,
		CellHeight:      cfg.Layout.CellHeight,
		Logger:          logger,
	})

	p := tea.NewProgram(
		dashboard,
		tea.WithoutSignalHandler(),
		tea.WithFilter(input.FilterMouseMotion),
	)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if path, ok := watchedFile(cfg, kv); ok {
		watcher := storage.NewWatcher(path, cfg.Debounce(), logger)
		go func() {
			err := watcher.Run(watchCtx, func(msg storage.ChangedMsg) {
				p.Send(app.LayoutChangedMsg(msg))
			})
			if err != nil {
				logger.Warn("layout watcher stopped", "err", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			p.Send(tea.QuitMsg{})
		case <-watchCtx.Done():
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	logger.Info("dashboard closed")
	return nil
}

func runServe(ctx context.Context, addr, origin string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if origin != "" {
		cfg.Server.AllowedOrigin = origin
	}
	logger := stderrLogger(cfg)

	eng, kv, err := openEngine(ctx, cfg, logger, server.NewLogObserver(logger))
	if err != nil {
		return err
	}
	defer closeStorage(kv, logger)
	eng.SetVisible(ctx, cfg.Panels.Visible)

	srv := server.New(server.Options{
		Engine:        eng,
		Widgets:       widget.Default(),
		Addr:          cfg.Server.Addr,
		AllowedOrigin: cfg.Server.AllowedOrigin,
		Logger:        logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if path, ok := watchedFile(cfg, kv); ok {
		watcher := storage.NewWatcher(path, cfg.Debounce(), logger)
		g.Go(func() error {
			return watcher.Run(gctx, func(storage.ChangedMsg) {
				eng.Reload(gctx)
			})
		})
	}
	return g.Wait()
}
