package config

import (
	"errors"
	"fmt"
	"maps"
	"net"
	"slices"
	"strings"

	"github.com/Gaurav-Gosain/dashpanel/internal/logging"
	"github.com/Gaurav-Gosain/dashpanel/internal/storage"
	"github.com/Gaurav-Gosain/dashpanel/internal/widget"
)

// ErrInvalidConfig is returned when validation finds at least one error.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationIssue is a single problem found in the config file.
type ValidationIssue struct {
	Field   string // config section, e.g. "layout"
	Key     string
	Message string
}

// ValidationResult collects errors, which abort startup, and warnings,
// which are reported and then ignored.
type ValidationResult struct {
	Errors   []ValidationIssue
	Warnings []ValidationIssue
}

// HasErrors reports whether any error was found.
func (r *ValidationResult) HasErrors() bool { return len(r.Errors) > 0 }

// HasWarnings reports whether any warning was found.
func (r *ValidationResult) HasWarnings() bool { return len(r.Warnings) > 0 }

func (r *ValidationResult) errorf(field, key, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationIssue{Field: field, Key: key, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warnf(field, key, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationIssue{Field: field, Key: key, Message: fmt.Sprintf(format, args...)})
}

// ValidateConfig checks cfg after defaults have been filled in.
func ValidateConfig(cfg *UserConfig) *ValidationResult {
	r := &ValidationResult{}
	validateLayout(cfg, r)
	validatePanels(cfg, r)
	validateStorage(cfg, r)
	validateAppearance(cfg, r)
	validateServer(cfg, r)
	validateLogging(cfg, r)
	validateKeybindings(cfg, r)
	return r
}

func validateLayout(cfg *UserConfig, r *ValidationResult) {
	l := cfg.Layout
	positive := []struct {
		key string
		v   int
	}{
		{"grid_size", l.GridSize},
		{"min_width", l.MinWidth},
		{"min_height", l.MinHeight},
		{"max_width", l.MaxWidth},
		{"max_height", l.MaxHeight},
		{"default_width", l.DefaultWidth},
		{"default_height", l.DefaultHeight},
		{"cascade_columns", l.CascadeColumns},
		{"cell_width", l.CellWidth},
		{"cell_height", l.CellHeight},
	}
	for _, p := range positive {
		if p.v <= 0 {
			r.errorf("layout", p.key, "must be positive, got %d", p.v)
		}
	}
	if l.MagneticThreshold < 0 {
		r.errorf("layout", "magnetic_threshold", "must not be negative, got %d", l.MagneticThreshold)
	}
	if l.EdgeThreshold < 0 {
		r.errorf("layout", "edge_threshold", "must not be negative, got %d", l.EdgeThreshold)
	}
	if l.TopOffset < 0 {
		r.errorf("layout", "top_offset", "must not be negative, got %d", l.TopOffset)
	}
	if l.MinWidth > l.MaxWidth {
		r.errorf("layout", "min_width", "min_width %d exceeds max_width %d", l.MinWidth, l.MaxWidth)
	}
	if l.MinHeight > l.MaxHeight {
		r.errorf("layout", "min_height", "min_height %d exceeds max_height %d", l.MinHeight, l.MaxHeight)
	}
	if l.DefaultWidth > 0 && (l.DefaultWidth < l.MinWidth || l.DefaultWidth > l.MaxWidth) {
		r.warnf("layout", "default_width", "%d is outside [%d, %d]; new panels start outside the resize range",
			l.DefaultWidth, l.MinWidth, l.MaxWidth)
	}
	if l.DefaultHeight > 0 && (l.DefaultHeight < l.MinHeight || l.DefaultHeight > l.MaxHeight) {
		r.warnf("layout", "default_height", "%d is outside [%d, %d]; new panels start outside the resize range",
			l.DefaultHeight, l.MinHeight, l.MaxHeight)
	}
}

func validatePanels(cfg *UserConfig, r *ValidationResult) {
	known := widget.IDs()
	seen := make(map[string]bool)
	for _, id := range cfg.Panels.Visible {
		if !slices.Contains(known, id) {
			r.warnf("panels", "visible", "unknown panel %q (known: %s)", id, strings.Join(known, ", "))
		}
		if seen[id] {
			r.warnf("panels", "visible", "panel %q listed twice", id)
		}
		seen[id] = true
	}
}

func validateStorage(cfg *UserConfig, r *ValidationResult) {
	switch strings.ToLower(cfg.Storage.Backend) {
	case storage.BackendJSON, storage.BackendSQLite, storage.BackendMemory:
	default:
		r.errorf("storage", "backend", "unknown backend %q (json, sqlite, memory)", cfg.Storage.Backend)
	}
	if cfg.Storage.DebounceMS < 0 {
		r.errorf("storage", "debounce_ms", "must not be negative, got %d", cfg.Storage.DebounceMS)
	}
	if cfg.WatchEnabled() && strings.ToLower(cfg.Storage.Backend) != storage.BackendJSON {
		r.warnf("storage", "watch", "only the json backend can be watched; ignoring")
	}
}

func validateAppearance(cfg *UserConfig, r *ValidationResult) {
	if !slices.Contains(ValidBorderStyles, cfg.Appearance.BorderStyle) {
		r.warnf("appearance", "border_style", "unknown style %q, using rounded", cfg.Appearance.BorderStyle)
	}
}

func validateServer(cfg *UserConfig, r *ValidationResult) {
	host, _, err := net.SplitHostPort(cfg.Server.Addr)
	if err != nil {
		r.errorf("server", "addr", "invalid address %q: %v", cfg.Server.Addr, err)
		return
	}
	if ip := net.ParseIP(host); host != "localhost" && (ip == nil || !ip.IsLoopback()) {
		r.warnf("server", "addr", "%q is reachable from other machines; the API has no authentication", cfg.Server.Addr)
	}
}

func validateLogging(cfg *UserConfig, r *ValidationResult) {
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		r.errorf("logging", "level", "%v", err)
	}
}

func validateKeybindings(cfg *UserConfig, r *ValidationResult) {
	owner := make(map[string]string)
	for _, section := range keybindSections(&cfg.Keybindings) {
		for _, action := range slices.Sorted(maps.Keys(section.binds)) {
			keys := section.binds[action]
			if !slices.Contains(KnownActions(), action) {
				r.warnf("keybindings."+section.name, action, "unknown action")
				continue
			}
			for _, key := range keys {
				if key == "" {
					r.warnf("keybindings."+section.name, action, "empty key")
					continue
				}
				if prev, dup := owner[key]; dup && prev != action {
					r.warnf("keybindings."+section.name, action, "key %q is already bound to %s", key, prev)
					continue
				}
				owner[key] = action
			}
		}
	}
}
