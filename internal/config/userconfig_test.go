package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/Gaurav-Gosain/dashpanel/internal/geometry"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashpanel", "config.toml")

	cfg, err := LoadUserConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadUserConfigFrom: %v", err)
	}
	if cfg.Policy() != geometry.DefaultPolicy() {
		t.Errorf("policy = %+v", cfg.Policy())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "# dashpanel Configuration File") {
		t.Errorf("missing header:\n%s", data)
	}

	// The generated file must load back to the same config.
	again, err := LoadUserConfigFrom(path)
	if err != nil {
		t.Fatalf("reloading default config: %v", err)
	}
	if again.Server.Addr != cfg.Server.Addr || !slices.Equal(again.Panels.Visible, cfg.Panels.Visible) {
		t.Errorf("reloaded config differs: %+v", again)
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := writeConfig(t, `
[layout]
grid_size = 20
cell_width = 8

[keybindings.system]
quit = ["Q"]
`)
	cfg, err := LoadUserConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadUserConfigFrom: %v", err)
	}
	if cfg.Layout.GridSize != 20 || cfg.Layout.CellWidth != 8 {
		t.Errorf("explicit values lost: %+v", cfg.Layout)
	}
	if cfg.Layout.MinWidth != 150 || cfg.Layout.CellHeight != DefaultCellHeight {
		t.Errorf("defaults not filled: %+v", cfg.Layout)
	}
	if cfg.Storage.Backend != "json" || !cfg.WatchEnabled() {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if got := cfg.Keybindings.System[ActionQuit]; !slices.Equal(got, []string{"Q"}) {
		t.Errorf("quit = %v, want user binding", got)
	}
	if got := cfg.Keybindings.System[ActionToggleHelp]; !slices.Equal(got, []string{"?"}) {
		t.Errorf("toggle_help = %v, want default", got)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad toml", "[layout\n"},
		{"min above max", "[layout]\nmin_width = 700\nmax_width = 600\n"},
		{"unknown backend", "[storage]\nbackend = \"redis\"\n"},
		{"bad level", "[logging]\nlevel = \"loud\"\n"},
		{"bad addr", "[server]\naddr = \"nope\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadUserConfigFrom(writeConfig(t, tt.body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestValidationErrorIsSentinel(t *testing.T) {
	_, err := LoadUserConfigFrom(writeConfig(t, "[layout]\ngrid_size = -1\n"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestValidateConfigWarnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*UserConfig)
		key    string
	}{
		{"unknown panel", func(c *UserConfig) { c.Panels.Visible = append(c.Panels.Visible, "heatmap") }, "visible"},
		{"duplicate panel", func(c *UserConfig) { c.Panels.Visible = []string{"orderBook", "orderBook"} }, "visible"},
		{"border style", func(c *UserConfig) { c.Appearance.BorderStyle = "wavy" }, "border_style"},
		{"public addr", func(c *UserConfig) { c.Server.Addr = "0.0.0.0:7733" }, "addr"},
		{"watch on sqlite", func(c *UserConfig) { c.Storage.Backend = "sqlite" }, "watch"},
		{"unknown action", func(c *UserConfig) { c.Keybindings.System["fly"] = []string{"x"} }, "fly"},
		{"shared key", func(c *UserConfig) { c.Keybindings.System[ActionQuit] = []string{"s"} }, ActionQuit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			r := ValidateConfig(cfg)
			if r.HasErrors() {
				t.Fatalf("unexpected errors: %+v", r.Errors)
			}
			found := slices.ContainsFunc(r.Warnings, func(i ValidationIssue) bool { return i.Key == tt.key })
			if !found {
				t.Errorf("no warning for %q in %+v", tt.key, r.Warnings)
			}
		})
	}
}

func TestDefaultConfigIsClean(t *testing.T) {
	r := ValidateConfig(DefaultConfig())
	if r.HasErrors() || r.HasWarnings() {
		t.Errorf("default config reports %+v", r)
	}
}

func TestWriteDefaultConfigOverwrites(t *testing.T) {
	path := writeConfig(t, "[layout]\ngrid_size = 99\n")
	if err := WriteDefaultConfig(path); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadUserConfigFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Layout.GridSize != 10 {
		t.Errorf("grid_size = %d after reset", cfg.Layout.GridSize)
	}
}

func TestApplyOverrides(t *testing.T) {
	defer func() {
		UseASCIIOnly = false
		BorderStyle = "rounded"
	}()

	cfg := ApplyOverrides(Overrides{
		StorageBackend: "memory",
		Addr:           "127.0.0.1:9000",
		CellWidth:      12,
		Debug:          true,
		NoWatch:        true,
		BorderStyle:    "double",
		ASCIIOnly:      true,
	}, DefaultConfig())

	if cfg.Storage.Backend != "memory" || cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("storage/server not overridden: %+v %+v", cfg.Storage, cfg.Server)
	}
	if cfg.Layout.CellWidth != 12 || cfg.Layout.CellHeight != DefaultCellHeight {
		t.Errorf("cells = %dx%d", cfg.Layout.CellWidth, cfg.Layout.CellHeight)
	}
	if cfg.Logging.Level != "debug" || cfg.WatchEnabled() {
		t.Errorf("level=%q watch=%v", cfg.Logging.Level, cfg.WatchEnabled())
	}
	if BorderStyle != "double" || !UseASCIIOnly {
		t.Errorf("globals: border=%q ascii=%v", BorderStyle, UseASCIIOnly)
	}
}
