// Package main implements dashpanel, a market-data dashboard whose panels can
// be dragged, resized, snapped to a grid and to each other, and saved as
// named layout presets. The same layout engine drives the terminal view and a
// local HTTP API used by the desktop renderer.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Global flags
var (
	debugMode      bool
	configFile     string
	themeName      string
	asciiOnly      bool
	borderStyle    string
	storageBackend string
	storagePath    string
	ephemeral      bool
	noWatch        bool
	cellWidth      int
	cellHeight     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dashpanel",
		Short: "Market-data dashboard with a snapping panel layout",
		Long: `dashpanel - freeform panel layout for a market-data dashboard

Panels can be dragged with the left mouse button, resized from their
bottom-right corner or with the right button, and moved with the keyboard.
Positions snap to a grid, to the viewport edges and to neighbouring panels,
and never overlap. Layouts persist between runs and can be saved as named
presets.`,
		Example: `  # Run the terminal dashboard
  dashpanel

  # Use a theme and the SQLite backend
  dashpanel --theme dracula --storage sqlite

  # Serve the layout API for the desktop renderer
  dashpanel serve --addr 127.0.0.1:7733

  # Save the current layout as a preset
  dashpanel preset save trading

  # Export every preset as YAML
  dashpanel preset export -o presets.yaml`,
		Version: version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLocal(cmd.Context())
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to the config file (default: $XDG_CONFIG_HOME/dashpanel/config.toml)")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "Color theme to use (e.g., dracula, nord, tokyonight). Leave empty to use standard terminal colors")
	rootCmd.PersistentFlags().BoolVar(&asciiOnly, "ascii-only", false, "Use ASCII characters instead of Nerd Font glyphs")
	rootCmd.PersistentFlags().StringVar(&borderStyle, "border-style", "", "Panel border style: rounded, normal, thick, double, hidden, block, ascii, outer-half-block, inner-half-block")
	rootCmd.PersistentFlags().StringVar(&storageBackend, "storage", "", "Storage backend: json, sqlite, memory (default: from config or json)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage-path", "", "Layout file or database path (default: XDG data directory)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep the layout in memory only; nothing is read from or written to disk")
	rootCmd.PersistentFlags().BoolVar(&noWatch, "no-watch", false, "Do not reload when another process rewrites the layout file")
	rootCmd.PersistentFlags().IntVar(&cellWidth, "cell-width", 0, "Pixels per terminal column (default: from config or 10)")
	rootCmd.PersistentFlags().IntVar(&cellHeight, "cell-height", 0, "Pixels per terminal row (default: from config or 20)")

	var serveAddr, serveOrigin string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API",
		Long: `Serve the layout engine over a local JSON API

The desktop renderer uses this API as its layout backend: it reports the
viewport and visible panels, streams drag and resize phases, and manages
presets. The layout file is watched so edits made by the terminal view are
picked up.`,
		Example: `  dashpanel serve
  dashpanel serve --addr 127.0.0.1:8080 --origin http://localhost:5173`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), serveAddr, serveOrigin)
		},
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: from config or 127.0.0.1:7733)")
	serveCmd.Flags().StringVar(&serveOrigin, "origin", "", "Allowed CORS origin (default: from config or *)")

	var layoutJSON bool
	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect the saved layout",
	}
	layoutShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved panel geometry",
		Example: `  dashpanel layout show
  dashpanel layout show --json | jq '.state.orderBook'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showLayout(cmd.Context(), os.Stdout, layoutJSON)
		},
	}
	layoutShowCmd.Flags().BoolVar(&layoutJSON, "json", false, "Output as JSON")
	layoutCmd.AddCommand(layoutShowCmd)

	var resetYes bool
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the layout and delete all presets",
		Long: `Re-cascade the configured panels to their default slots, delete every
preset and purge the stored layout. This cannot be undone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return resetLayout(cmd.Context(), resetYes)
		},
	}
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Do not ask for confirmation")

	presetCmd := &cobra.Command{
		Use:     "preset",
		Aliases: []string{"presets"},
		Short:   "Manage layout presets",
	}
	presetListCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listPresets(cmd.Context(), os.Stdout)
		},
	}
	presetSaveCmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the stored layout as a preset",
		Long: `Save the stored layout under name. An existing preset with the same
name is replaced in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return savePreset(cmd.Context(), args[0])
		},
	}
	presetLoadCmd := &cobra.Command{
		Use:               "load <name>",
		Short:             "Make a preset the stored layout",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completePresetNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return loadPreset(cmd.Context(), args[0])
		},
	}
	presetDeleteCmd := &cobra.Command{
		Use:               "delete <name>",
		Aliases:           []string{"rm"},
		Short:             "Delete a preset",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completePresetNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deletePreset(cmd.Context(), args[0])
		},
	}

	var exportFormat, exportOutput string
	presetExportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write every preset to a file or stdout",
		Example: `  dashpanel preset export > presets.yaml
  dashpanel preset export --format json -o presets.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return exportPresets(cmd.Context(), exportFormat, exportOutput)
		},
	}
	presetExportCmd.Flags().StringVar(&exportFormat, "format", "yaml", "Output format: yaml or json")
	presetExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")

	var importFormat string
	presetImportCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge presets from a file written by export",
		Long: `Merge presets from a YAML or JSON file. Presets with a name that
already exists replace the stored one. The format is taken from the file
extension unless --format is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importPresets(cmd.Context(), args[0], importFormat)
		},
	}
	presetImportCmd.Flags().StringVar(&importFormat, "format", "", "Input format: yaml or json (default: from extension)")

	presetCmd.AddCommand(presetListCmd, presetSaveCmd, presetLoadCmd, presetDeleteCmd, presetExportCmd, presetImportCmd)

	panelsCmd := &cobra.Command{
		Use:   "panels",
		Short: "List the known panels",
		RunE: func(_ *cobra.Command, _ []string) error {
			return listPanels(os.Stdout)
		},
	}

	themesCmd := &cobra.Command{
		Use:   "themes",
		Short: "Inspect color themes",
	}
	themesListCmd := &cobra.Command{
		Use:   "list",
		Short: "List all available themes",
		Example: `  # Pick a theme interactively
  dashpanel --theme $(dashpanel themes list | fzf)`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return listThemes(os.Stdout)
		},
	}
	themesCmd.AddCommand(themesListCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage dashpanel configuration",
		Long:  `Manage the dashpanel configuration file and settings`,
	}
	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		RunE: func(_ *cobra.Command, _ []string) error {
			return printConfigPath(os.Stdout)
		},
	}
	configEditCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration in $EDITOR",
		Long: `Open the dashpanel configuration file in your default editor

The editor is determined by checking $EDITOR, $VISUAL, or common editors
like vim, vi, nano, and emacs in that order.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return editConfigFile()
		},
	}
	var configResetYes bool
	configResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Long: `Reset the dashpanel configuration file to default settings

This will overwrite your existing configuration after confirmation.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return resetConfigToDefaults(configResetYes)
		},
	}
	configResetCmd.Flags().BoolVarP(&configResetYes, "yes", "y", false, "Do not ask for confirmation")
	configCmd.AddCommand(configPathCmd, configEditCmd, configResetCmd)

	rootCmd.AddCommand(serveCmd, layoutCmd, resetCmd, presetCmd)
	rootCmd.AddCommand(panelsCmd, themesCmd, configCmd)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s\nBy: %s", version, commit, date, builtBy)),
	); err != nil {
		os.Exit(1)
	}
}
