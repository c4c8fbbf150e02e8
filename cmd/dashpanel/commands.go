package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Gaurav-Gosain/dashpanel/internal/config"
	"github.com/Gaurav-Gosain/dashpanel/internal/engine"
	"github.com/Gaurav-Gosain/dashpanel/internal/layout"
	"github.com/Gaurav-Gosain/dashpanel/internal/logging"
	"github.com/Gaurav-Gosain/dashpanel/internal/model"
	"github.com/Gaurav-Gosain/dashpanel/internal/theme"
	"github.com/Gaurav-Gosain/dashpanel/internal/widget"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// withEngine runs fn against an engine hydrated from the configured storage.
// Nothing is placed: the visible set stays empty unless fn sets it.
func withEngine(ctx context.Context, fn func(*engine.Engine, *config.UserConfig, *log.Logger) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := stderrLogger(cfg)
	eng, kv, err := openEngine(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer closeStorage(kv, logger)
	return fn(eng, cfg, logger)
}

// stackOrder lists the ids of snap bottom to top: the persisted order first,
// then any placed panel the order does not mention.
func stackOrder(snap model.Snapshot) []string {
	ids := make([]string, 0, len(snap.State))
	for _, id := range snap.Order {
		if snap.State.Has(id) && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	var rest []string
	for id := range snap.State {
		if !slices.Contains(ids, id) {
			rest = append(rest, id)
		}
	}
	slices.Sort(rest)
	return append(ids, rest...)
}

func showLayout(ctx context.Context, w io.Writer, asJSON bool) error {
	return withEngine(ctx, func(eng *engine.Engine, _ *config.UserConfig, _ *log.Logger) error {
		snap := eng.Snapshot()
		if asJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		if len(snap.State) == 0 {
			_, err := fmt.Fprintln(w, "No saved layout yet. Run dashpanel to place the panels.")
			return err
		}

		t := newTable("#", "Panel", "Title", "X", "Y", "Width", "Height")
		for i, id := range stackOrder(snap) {
			g := snap.State[id]
			t.Row(strconv.Itoa(i+1), id, widget.Title(id),
				strconv.Itoa(g.X), strconv.Itoa(g.Y), strconv.Itoa(g.Width), strconv.Itoa(g.Height))
		}
		_, err := lipgloss.Fprintln(w, t)
		return err
	})
}

// confirm asks a yes/no question on the terminal. Without a terminal the
// answer is no and the caller is told to pass --yes.
func confirm(prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("no terminal to confirm on, pass --yes")
	}
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func resetLayout(ctx context.Context, yes bool) error {
	if !yes {
		ok, err := confirm("Reset the layout and delete all presets?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Reset cancelled")
			return nil
		}
	}
	return withEngine(ctx, func(eng *engine.Engine, cfg *config.UserConfig, _ *log.Logger) error {
		eng.SetVisible(ctx, cfg.Panels.Visible)
		if err := eng.Reset(ctx); err != nil {
			return err
		}
		fmt.Printf("Layout reset: %d panel(s) back in their default slots, presets deleted\n", len(cfg.Panels.Visible))
		return nil
	})
}

// presetPanels lists the panels a preset shows, in its order.
func presetPanels(p model.Preset) []string {
	var ids []string
	for _, id := range p.Order {
		if p.State.Has(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func listPresets(ctx context.Context, w io.Writer) error {
	return withEngine(ctx, func(eng *engine.Engine, _ *config.UserConfig, _ *log.Logger) error {
		presets := eng.Presets()
		if len(presets) == 0 {
			_, err := fmt.Fprintln(w, "No presets saved yet.")
			return err
		}
		t := newTable("Name", "Panels")
		for _, p := range presets {
			t.Row(p.Name, strings.Join(presetPanels(p), ", "))
		}
		_, err := lipgloss.Fprintln(w, t)
		return err
	})
}

func savePreset(ctx context.Context, name string) error {
	return withEngine(ctx, func(eng *engine.Engine, _ *config.UserConfig, _ *log.Logger) error {
		if len(eng.Snapshot().State) == 0 {
			return errors.New("no saved layout to snapshot yet, run dashpanel first")
		}
		if err := eng.SavePreset(ctx, name); err != nil {
			if errors.Is(err, layout.ErrEmptyPresetName) {
				return errors.New("preset name must not be empty")
			}
			return fmt.Errorf("failed to save preset: %w", err)
		}
		fmt.Printf("Saved preset %q\n", strings.TrimSpace(name))
		return nil
	})
}

func loadPreset(ctx context.Context, name string) error {
	return withEngine(ctx, func(eng *engine.Engine, _ *config.UserConfig, _ *log.Logger) error {
		visible, ok := eng.LoadPreset(ctx, name)
		if !ok {
			return fmt.Errorf("no preset named %q", name)
		}
		fmt.Printf("Loaded preset %q (%s)\n", name, strings.Join(visible, ", "))
		return nil
	})
}

func deletePreset(ctx context.Context, name string) error {
	return withEngine(ctx, func(eng *engine.Engine, _ *config.UserConfig, _ *log.Logger) error {
		ok, err := eng.DeletePreset(ctx, name)
		if !ok {
			return fmt.Errorf("no preset named %q", name)
		}
		if err != nil {
			return fmt.Errorf("failed to delete preset: %w", err)
		}
		fmt.Printf("Deleted preset %q\n", name)
		return nil
	})
}

func exportPresets(ctx context.Context, format, output string) error {
	return withEngine(ctx, func(eng *engine.Engine, _ *config.UserConfig, _ *log.Logger) error {
		if output == "" {
			return eng.ExportPresets(os.Stdout, format)
		}
		// #nosec G304 - output is a path the user asked us to write
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		if err := eng.ExportPresets(f, format); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		fmt.Fprintf(os.Stderr, "Exported %d preset(s) to %s\n", len(eng.PresetNames()), output)
		return nil
	})
}

// presetFormat picks the import format: the flag if set, else the file
// extension, else YAML.
func presetFormat(path, flag string) string {
	if flag != "" {
		return flag
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return layout.FormatJSON
	}
	return layout.FormatYAML
}

func importPresets(ctx context.Context, path, format string) error {
	return withEngine(ctx, func(eng *engine.Engine, _ *config.UserConfig, _ *log.Logger) error {
		// #nosec G304 - path is the file the user asked us to import
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() {
			_ = f.Close()
		}()

		names, err := eng.ImportPresets(ctx, f, presetFormat(path, format))
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No presets found in", path)
			return nil
		}
		fmt.Printf("Imported %d preset(s): %s\n", len(names), strings.Join(names, ", "))
		return nil
	})
}

func listPanels(w io.Writer) error {
	defaults := widget.DefaultVisible()
	t := newTable("Key", "ID", "Title", "Shown by default")
	for i, id := range widget.IDs() {
		shown := "no"
		if slices.Contains(defaults, id) {
			shown = "yes"
		}
		t.Row(strconv.Itoa(i+1), id, widget.Title(id), shown)
	}
	_, err := lipgloss.Fprintln(w, t)
	return err
}

func listThemes(w io.Writer) error {
	for _, id := range theme.IDs() {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}
	return nil
}

func configPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	return config.GetConfigPath()
}

func printConfigPath(w io.Writer) error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	_, err = fmt.Fprintln(w, path)
	return err
}

// findEditor returns the user's editor command split into fields.
func findEditor() ([]string, error) {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields, nil
		}
	}
	for _, name := range []string{"vim", "vi", "nano", "emacs"} {
		if path, err := exec.LookPath(name); err == nil {
			return []string{path}, nil
		}
	}
	return nil, errors.New("no editor found, set $EDITOR")
}

func editConfigFile() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
	}

	editor, err := findEditor()
	if err != nil {
		return err
	}
	// #nosec G204 - the editor is the user's own choice
	cmd := exec.Command(editor[0], append(editor[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	if _, err := config.LoadUserConfigFrom(path); err != nil {
		return fmt.Errorf("saved config is not valid: %w", err)
	}
	fmt.Println("Configuration saved:", path)
	return nil
}

func resetConfigToDefaults(yes bool) error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if !yes {
		ok, err := confirm(fmt.Sprintf("Overwrite %s with the default configuration?", path))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Reset cancelled")
			return nil
		}
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}
	fmt.Println("Configuration reset to defaults:", path)
	return nil
}

// completePresetNames completes the preset argument of load and delete.
func completePresetNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	eng, kv, err := openEngine(cmd.Context(), cfg, logging.Discard(), nil)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer func() {
		_ = kv.Close()
	}()

	var names []string
	for _, name := range eng.PresetNames() {
		if strings.HasPrefix(name, toComplete) {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
