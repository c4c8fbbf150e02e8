package theme

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	tint "github.com/lrstanley/bubbletint/v2"
)

func writeTheme(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCustomThemeFile(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		body        string
		wantID      string
		wantDisplay string
		wantErr     bool
	}{
		{
			name:        "explicit id and display name",
			file:        "desk.json",
			body:        `{"id": "trading-desk", "display_name": "Trading Desk", "fg": "#d4d4d4", "bg": "#1e1e2e", "red": "#f38ba8"}`,
			wantID:      "trading-desk",
			wantDisplay: "Trading Desk",
		},
		{
			name:        "id from file name",
			file:        "Night-Shift.json",
			body:        `{"fg": "#ffffff", "bg": "#000000"}`,
			wantID:      "night-shift",
			wantDisplay: "night-shift",
		},
		{
			name:    "invalid json",
			file:    "bad.json",
			body:    "not valid json{{{",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTheme(t, t.TempDir(), tt.file, tt.body)
			got, err := LoadCustomThemeFile(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadCustomThemeFile: %v", err)
			}
			if got.ID != tt.wantID || got.DisplayName != tt.wantDisplay {
				t.Errorf("id=%q display=%q, want %q %q", got.ID, got.DisplayName, tt.wantID, tt.wantDisplay)
			}
			for i, c := range []*tint.Color{
				got.Fg, got.Bg, got.Red, got.Green, got.Yellow, got.Blue, got.Purple, got.Cyan,
				got.BrightBlack, got.BrightGreen, got.BrightYellow, got.BrightCyan,
			} {
				if c == nil {
					t.Errorf("colour %d left nil", i)
				}
			}
		})
	}
}

func TestFillDefaultsDerivesFromBase(t *testing.T) {
	th := &tint.Tint{Fg: tint.FromHex("#c0c0c0"), Yellow: tint.FromHex("#f9e2af")}
	fillDefaults(th)

	if ColorToString(th.Fg) != "#c0c0c0" {
		t.Errorf("fg = %s, set colour was overwritten", ColorToString(th.Fg))
	}
	if ColorToString(th.BrightYellow) != ColorToString(th.Yellow) {
		t.Errorf("bright yellow = %s, want yellow %s", ColorToString(th.BrightYellow), ColorToString(th.Yellow))
	}
	if th.BrightYellow == th.Yellow {
		t.Error("bright yellow shares the yellow pointer")
	}
	if th.White != nil || th.Cursor != nil {
		t.Error("colours the dashboard never draws were filled")
	}
	if ColorToString(th.Blue) != "#0000ee" {
		t.Errorf("blue = %s, want xterm default", ColorToString(th.Blue))
	}
}

func TestLoadCustomThemesRegisters(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "dashpanel-test-unique.json", `{"fg": "#ffffff", "bg": "#000000"}`)
	writeTheme(t, dir, "readme.txt", "not a theme")
	writeTheme(t, dir, "broken.json", "{")

	tint.NewDefaultRegistry()
	loaded, err := LoadCustomThemes(dir)
	if err != nil {
		t.Fatalf("LoadCustomThemes: %v", err)
	}
	if !slices.Equal(loaded, []string{"dashpanel-test-unique"}) {
		t.Errorf("loaded = %v", loaded)
	}
	if !slices.Contains(tint.TintIDs(), "dashpanel-test-unique") {
		t.Error("custom theme missing from the registry")
	}
}

func TestLoadCustomThemesMissingDir(t *testing.T) {
	if _, err := LoadCustomThemes(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestPanelAccentFallback(t *testing.T) {
	enabled = false
	tests := []struct {
		id   string
		want string
	}{
		{"symbolSelector", "#cdcd00"},
		{"liquidation", "#cd0000"},
		{"tradeVolume", "#00cd00"},
		{"orderBook", "#5c5cff"},
		{"fundingRate", "#cd00cd"},
		{"somethingElse", ColorToString(BorderUnfocused())},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := ColorToString(PanelAccent(tt.id)); got != tt.want {
				t.Errorf("PanelAccent(%q) = %s, want %s", tt.id, got, tt.want)
			}
		})
	}
}

func TestPanelAccentDistinctWithTheme(t *testing.T) {
	tint.NewDefaultRegistry()
	enabled = true
	tint.SetTintID("default")
	defer func() { enabled = false }()

	seen := map[string]string{}
	for _, id := range []string{"symbolSelector", "liquidation", "tradeVolume", "orderBook", "fundingRate"} {
		c := ColorToString(PanelAccent(id))
		if other, dup := seen[c]; dup {
			t.Errorf("%s and %s share accent %s", id, other, c)
		}
		seen[c] = id
	}
}

func TestColorToString(t *testing.T) {
	if got := ColorToString(nil); got != "#000000" {
		t.Errorf("ColorToString(nil) = %s", got)
	}
	if got := ColorToString(&tint.Color{R: 255, G: 128, B: 0, A: 255}); got != "#ff8000" {
		t.Errorf("ColorToString = %s, want #ff8000", got)
	}
}
