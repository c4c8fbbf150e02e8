package layout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/Gaurav-Gosain/dashpanel/internal/logging"
	"github.com/Gaurav-Gosain/dashpanel/internal/model"
)

// ErrEmptyPresetName is returned when saving a preset without a name.
var ErrEmptyPresetName = errors.New("preset name is empty")

// PresetPersister reads and writes the preset collection.
type PresetPersister interface {
	LoadPresets(ctx context.Context) []model.Preset
	SavePresets(ctx context.Context, presets []model.Preset) error
}

// PresetManager keeps the named layout snapshots. Names are unique: saving
// over an existing name replaces that entry where it stands.
type PresetManager struct {
	store   *Store
	persist PresetPersister
	log     *log.Logger
	presets []model.Preset
}

// NewPresetManager returns a manager over store. persist may be nil.
func NewPresetManager(store *Store, persist PresetPersister, logger *log.Logger) *PresetManager {
	return &PresetManager{
		store:   store,
		persist: persist,
		log:     logging.OrDiscard(logger),
		presets: []model.Preset{},
	}
}

// Hydrate loads the persisted collection, collapsing duplicate names onto
// the first entry.
func (m *PresetManager) Hydrate(ctx context.Context) {
	if m.persist == nil {
		return
	}
	m.presets = m.presets[:0]
	for _, p := range m.persist.LoadPresets(ctx) {
		if m.index(p.Name) >= 0 {
			m.log.Warn("ignoring duplicate preset", "preset", p.Name)
			continue
		}
		m.presets = append(m.presets, p)
	}
}

func (m *PresetManager) index(name string) int {
	for i, p := range m.presets {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func (m *PresetManager) save(ctx context.Context) error {
	if m.persist == nil {
		return nil
	}
	return m.persist.SavePresets(ctx, m.presets)
}

// Save snapshots the store under name.
func (m *PresetManager) Save(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyPresetName
	}
	snap := m.store.Snapshot()
	p := model.Preset{Name: name, State: snap.State, Order: snap.Order}

	if i := m.index(name); i >= 0 {
		m.presets[i] = p
		m.log.Info("replaced preset", "preset", name)
	} else {
		m.presets = append(m.presets, p)
		m.log.Info("saved preset", "preset", name)
	}
	return m.save(ctx)
}

// Load restores the preset called name into the store and returns the
// visible set derived from it: the preset's order restricted to panels it
// has geometry for. ok is false, and nothing changes, when name is empty or
// unknown.
func (m *PresetManager) Load(name string) (visible []string, ok bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	i := m.index(name)
	if i < 0 {
		m.log.Debug("no such preset", "preset", name)
		return nil, false
	}
	p := m.presets[i]

	visible = make([]string, 0, len(p.Order))
	for _, id := range p.Order {
		if p.State.Has(id) {
			visible = append(visible, id)
		}
	}
	m.store.Replace(p.State, p.Order, visible)
	m.log.Info("loaded preset", "preset", name, "panels", len(visible))
	return visible, true
}

// Delete removes every preset called name and reports whether any existed.
func (m *PresetManager) Delete(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	kept := m.presets[:0]
	removed := 0
	for _, p := range m.presets {
		if p.Name == name {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	m.presets = kept
	if removed == 0 {
		return false, nil
	}
	m.log.Info("deleted preset", "preset", name)
	return true, m.save(ctx)
}

// Clear drops every preset without persisting; reset purges storage itself.
func (m *PresetManager) Clear() {
	m.presets = []model.Preset{}
}

// Names returns the preset names in collection order.
func (m *PresetManager) Names() []string {
	names := make([]string, len(m.presets))
	for i, p := range m.presets {
		names[i] = p.Name
	}
	return names
}

// List returns deep copies of every preset.
func (m *PresetManager) List() []model.Preset {
	out := make([]model.Preset, len(m.presets))
	for i, p := range m.presets {
		out[i] = p.Clone()
	}
	return out
}

// Get returns a copy of the preset called name.
func (m *PresetManager) Get(name string) (model.Preset, bool) {
	i := m.index(strings.TrimSpace(name))
	if i < 0 {
		return model.Preset{}, false
	}
	return m.presets[i].Clone(), true
}

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

type presetFile struct {
	Presets []model.Preset `json:"presets" yaml:"presets"`
}

// Export writes every preset to w as YAML or JSON.
func (m *PresetManager) Export(w io.Writer, format string) error {
	doc := presetFile{Presets: m.List()}
	switch strings.ToLower(format) {
	case "", FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode presets: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode presets: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported preset format %q", format)
	}
}

// Import reads presets written by Export and merges them by name,
// replacing existing entries. It returns the imported names.
func (m *PresetManager) Import(ctx context.Context, r io.Reader, format string) ([]string, error) {
	var doc presetFile
	switch strings.ToLower(format) {
	case "", FormatYAML, "yml":
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse presets: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse presets: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported preset format %q", format)
	}

	var names []string
	for _, p := range doc.Presets {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			m.log.Warn("skipping imported preset without a name")
			continue
		}
		if p.State == nil {
			p.State = model.PanelState{}
		}
		if p.Order == nil {
			p.Order = model.PanelOrder{}
		}
		if i := m.index(p.Name); i >= 0 {
			m.presets[i] = p
		} else {
			m.presets = append(m.presets, p)
		}
		names = append(names, p.Name)
	}
	if len(names) == 0 {
		return nil, nil
	}
	return names, m.save(ctx)
}
