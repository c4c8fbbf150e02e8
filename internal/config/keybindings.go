package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Gaurav-Gosain/dashpanel/internal/widget"
)

// Action names used in [keybindings] and by the input dispatcher.
const (
	ActionFocusNext  = "focus_next"
	ActionFocusPrev  = "focus_prev"
	ActionRaisePanel = "raise_panel"

	ActionNudgeLeft    = "nudge_left"
	ActionNudgeRight   = "nudge_right"
	ActionNudgeUp      = "nudge_up"
	ActionNudgeDown    = "nudge_down"
	ActionGrowWidth    = "grow_width"
	ActionShrinkWidth  = "shrink_width"
	ActionGrowHeight   = "grow_height"
	ActionShrinkHeight = "shrink_height"

	ActionSavePreset   = "save_preset"
	ActionPresetPicker = "preset_picker"
	ActionResetLayout  = "reset_layout"

	ActionToggleHelp = "toggle_help"
	ActionQuit       = "quit"

	togglePanelPrefix = "toggle_panel_"
)

// TogglePanelAction returns the action that toggles the n-th registered
// panel (1-based).
func TogglePanelAction(n int) string {
	return fmt.Sprintf("%s%d", togglePanelPrefix, n)
}

// PanelForAction returns the panel index (0-based) targeted by a
// toggle_panel_N action.
func PanelForAction(action string) (int, bool) {
	rest, ok := strings.CutPrefix(action, togglePanelPrefix)
	if !ok {
		return 0, false
	}
	var n int
	if _, err := fmt.Sscanf(rest, "%d", &n); err != nil || n < 1 || n > len(widget.IDs()) {
		return 0, false
	}
	return n - 1, true
}

// KnownActions lists every bindable action.
func KnownActions() []string {
	actions := []string{
		ActionFocusNext, ActionFocusPrev, ActionRaisePanel,
		ActionNudgeLeft, ActionNudgeRight, ActionNudgeUp, ActionNudgeDown,
		ActionGrowWidth, ActionShrinkWidth, ActionGrowHeight, ActionShrinkHeight,
		ActionSavePreset, ActionPresetPicker, ActionResetLayout,
		ActionToggleHelp, ActionQuit,
	}
	for i := range widget.IDs() {
		actions = append(actions, TogglePanelAction(i+1))
	}
	return actions
}

type keybindSection struct {
	name  string
	binds map[string][]string
}

func keybindSections(k *KeybindingsConfig) []keybindSection {
	return []keybindSection{
		{"navigation", k.Navigation},
		{"layout", k.Layout},
		{"panels", k.Panels},
		{"presets", k.Presets},
		{"system", k.System},
	}
}

// KeybindRegistry resolves key strings to actions and back.
type KeybindRegistry struct {
	keyToAction  map[string]string
	actionToKeys map[string][]string
}

// NewKeybindRegistry builds a registry from the user's keybindings. A nil
// config uses the defaults. When two actions claim a key, the first in
// section order (then action name order) wins.
func NewKeybindRegistry(cfg *UserConfig) *KeybindRegistry {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	r := &KeybindRegistry{
		keyToAction:  make(map[string]string),
		actionToKeys: make(map[string][]string),
	}
	for _, section := range keybindSections(&cfg.Keybindings) {
		for _, action := range slices.Sorted(maps.Keys(section.binds)) {
			for _, key := range section.binds[action] {
				if key == "" {
					continue
				}
				if _, taken := r.keyToAction[key]; taken {
					continue
				}
				r.keyToAction[key] = action
				r.actionToKeys[action] = append(r.actionToKeys[action], key)
			}
		}
	}
	return r
}

// GetAction returns the action bound to key, or "".
func (r *KeybindRegistry) GetAction(key string) string {
	return r.keyToAction[key]
}

// GetKeys returns the keys bound to action.
func (r *KeybindRegistry) GetKeys(action string) []string {
	return r.actionToKeys[action]
}

// GetKeysForDisplay formats the keys of action for the help overlay.
func (r *KeybindRegistry) GetKeysForDisplay(action string) string {
	keys := r.actionToKeys[action]
	display := make([]string, len(keys))
	for i, k := range keys {
		display[i] = FormatKey(k)
	}
	return strings.Join(display, ", ")
}

// FormatKey renders a key string like "shift+tab" as "Shift+Tab".
func FormatKey(key string) string {
	if key == "+" {
		return key
	}
	parts := strings.Split(key, "+")
	for i, p := range parts {
		switch p {
		case "ctrl", "alt", "shift", "enter", "tab", "left", "right", "up", "down", "esc", "space":
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "+")
}

// Keybinding represents a single keybinding entry
type Keybinding struct {
	Key         string
	Description string
}

// KeybindingSection represents a section of related keybindings
type KeybindingSection struct {
	Title    string
	Bindings []Keybinding
}

// GetKeybindings returns all keybinding sections for the help overlay.
// A nil registry uses the default bindings.
func GetKeybindings(registry *KeybindRegistry) []KeybindingSection {
	if registry == nil {
		registry = NewKeybindRegistry(nil)
	}

	sections := []KeybindingSection{}

	panels := KeybindingSection{Title: "PANELS"}
	addBinding(&panels, registry, ActionFocusNext, "Focus next panel")
	addBinding(&panels, registry, ActionFocusPrev, "Focus previous panel")
	addBinding(&panels, registry, ActionRaisePanel, "Bring focused panel to front")
	for i, id := range widget.IDs() {
		addBinding(&panels, registry, TogglePanelAction(i+1), "Show/hide "+widget.Title(id))
	}
	sections = appendSection(sections, panels)

	layout := KeybindingSection{Title: "MOVE & RESIZE"}
	addBinding(&layout, registry, ActionNudgeLeft, "Move left one grid step")
	addBinding(&layout, registry, ActionNudgeRight, "Move right one grid step")
	addBinding(&layout, registry, ActionNudgeUp, "Move up one grid step")
	addBinding(&layout, registry, ActionNudgeDown, "Move down one grid step")
	addBinding(&layout, registry, ActionGrowWidth, "Wider")
	addBinding(&layout, registry, ActionShrinkWidth, "Narrower")
	addBinding(&layout, registry, ActionGrowHeight, "Taller")
	addBinding(&layout, registry, ActionShrinkHeight, "Shorter")
	sections = appendSection(sections, layout)

	presets := KeybindingSection{Title: "PRESETS"}
	addBinding(&presets, registry, ActionSavePreset, "Save layout as preset")
	addBinding(&presets, registry, ActionPresetPicker, "Load or delete a preset")
	addBinding(&presets, registry, ActionResetLayout, "Reset layout")
	sections = appendSection(sections, presets)

	system := KeybindingSection{Title: "SYSTEM"}
	addBinding(&system, registry, ActionToggleHelp, "Toggle help")
	addBinding(&system, registry, ActionQuit, "Quit")
	sections = appendSection(sections, system)

	return append(sections, getStaticHelpSections()...)
}

func appendSection(sections []KeybindingSection, s KeybindingSection) []KeybindingSection {
	if len(s.Bindings) > 0 {
		return append(sections, s)
	}
	return sections
}

// addBinding adds a keybinding to a section if the action has keys configured
func addBinding(section *KeybindingSection, registry *KeybindRegistry, action, description string) {
	keys := registry.GetKeysForDisplay(action)
	if keys != "" {
		section.Bindings = append(section.Bindings, Keybinding{
			Key:         keys,
			Description: description,
		})
	}
}

// getStaticHelpSections returns help sections that don't need dynamic binding info
func getStaticHelpSections() []KeybindingSection {
	return []KeybindingSection{
		{
			Title: "MOUSE",
			Bindings: []Keybinding{
				{"Left drag", "Move panel"},
				{"Left drag corner", "Resize panel"},
				{"Right drag", "Resize panel"},
			},
		},
		{
			Title: "PRESET PICKER",
			Bindings: []Keybinding{
				{"↑/↓, j/k", "Select"},
				{"Enter", "Load"},
				{"d", "Delete"},
				{"Esc", "Close"},
			},
		},
	}
}
