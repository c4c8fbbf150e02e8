package layout

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/Gaurav-Gosain/dashpanel/internal/model"
)

type memPresets struct {
	saved []model.Preset
	saves int
}

func (m *memPresets) LoadPresets(context.Context) []model.Preset {
	out := make([]model.Preset, len(m.saved))
	for i, p := range m.saved {
		out[i] = p.Clone()
	}
	return out
}

func (m *memPresets) SavePresets(_ context.Context, presets []model.Preset) error {
	m.saves++
	m.saved = make([]model.Preset, len(presets))
	for i, p := range presets {
		m.saved[i] = p.Clone()
	}
	return nil
}

func newTestPresets(t *testing.T) (*Store, *PresetManager, *memPresets) {
	t.Helper()
	s, _ := newTestStore()
	s.Reconcile(context.Background(), []string{"orderBook", "fundingRate", "liquidation"})
	mp := &memPresets{}
	return s, NewPresetManager(s, mp, nil), mp
}

func TestPresetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, m, _ := newTestPresets(t)

	want := s.Snapshot()
	if err := m.Save(ctx, "p1"); err != nil {
		t.Fatal(err)
	}

	_ = s.Commit(ctx, "orderBook", model.Geometry{X: 700, Y: 500, Width: 300, Height: 200})

	visible, ok := m.Load("p1")
	if !ok {
		t.Fatal("Load(p1) = not found")
	}
	got := s.Snapshot()
	if !reflect.DeepEqual(got.State, want.State) {
		t.Errorf("state = %v, want %v", got.State, want.State)
	}
	if !reflect.DeepEqual(got.Order, want.Order) {
		t.Errorf("order = %v, want %v", got.Order, want.Order)
	}
	if !reflect.DeepEqual(visible, []string(want.Order)) {
		t.Errorf("visible = %v, want %v", visible, want.Order)
	}
	wantZ := model.ZIndexMap{"orderBook": 1, "fundingRate": 2, "liquidation": 3}
	if !reflect.DeepEqual(got.ZIndex, wantZ) {
		t.Errorf("z = %v, want %v", got.ZIndex, wantZ)
	}
}

func TestPresetLoadDerivesVisibleFromGeometry(t *testing.T) {
	ctx := context.Background()
	s, m, mp := newTestPresets(t)
	mp.saved = []model.Preset{{
		Name:  "partial",
		State: model.PanelState{"fundingRate": {X: 0, Y: 30, Width: 200, Height: 100}},
		Order: model.PanelOrder{"orderBook", "fundingRate"},
	}}
	m.Hydrate(ctx)

	visible, ok := m.Load("partial")
	if !ok {
		t.Fatal("Load(partial) = not found")
	}
	if !reflect.DeepEqual(visible, []string{"fundingRate"}) {
		t.Errorf("visible = %v, want [fundingRate]", visible)
	}
	if got := s.Visible(); !reflect.DeepEqual(got, []string{"fundingRate"}) {
		t.Errorf("store visible = %v", got)
	}
}

func TestPresetSaveRejectsEmptyName(t *testing.T) {
	_, m, mp := newTestPresets(t)
	for _, name := range []string{"", "   "} {
		if err := m.Save(context.Background(), name); !errors.Is(err, ErrEmptyPresetName) {
			t.Errorf("Save(%q) error = %v, want ErrEmptyPresetName", name, err)
		}
	}
	if len(m.Names()) != 0 || mp.saves != 0 {
		t.Error("empty-name save changed the collection")
	}
}

func TestPresetSaveReplacesSameName(t *testing.T) {
	ctx := context.Background()
	s, m, mp := newTestPresets(t)

	_ = m.Save(ctx, "first")
	_ = m.Save(ctx, "dup")
	_ = m.Save(ctx, "last")
	_ = s.Commit(ctx, "orderBook", model.Geometry{X: 600, Y: 300, Width: 200, Height: 100})
	_ = m.Save(ctx, "dup")

	if got := m.Names(); !reflect.DeepEqual(got, []string{"first", "dup", "last"}) {
		t.Errorf("Names = %v, want replacement in place", got)
	}
	p, _ := m.Get("dup")
	if p.State["orderBook"].X != 600 {
		t.Errorf("dup was not replaced: %+v", p.State["orderBook"])
	}
	if len(mp.saved) != 3 {
		t.Errorf("persisted %d presets, want 3", len(mp.saved))
	}
}

func TestPresetLoadUnknownIsNoop(t *testing.T) {
	s, m, _ := newTestPresets(t)
	before := s.Snapshot()
	for _, name := range []string{"", "missing"} {
		if _, ok := m.Load(name); ok {
			t.Errorf("Load(%q) reported success", name)
		}
	}
	if !reflect.DeepEqual(s.Snapshot(), before) {
		t.Error("failed Load changed the store")
	}
}

func TestPresetDelete(t *testing.T) {
	ctx := context.Background()
	_, m, mp := newTestPresets(t)
	_ = m.Save(ctx, "a")
	_ = m.Save(ctx, "b")

	ok, err := m.Delete(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("Delete(a) = %v, %v", ok, err)
	}
	if got := m.Names(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Names = %v", got)
	}
	if len(mp.saved) != 1 || mp.saved[0].Name != "b" {
		t.Errorf("persisted %+v", mp.saved)
	}

	saves := mp.saves
	if ok, _ := m.Delete(ctx, "a"); ok {
		t.Error("second Delete(a) reported a removal")
	}
	if mp.saves != saves {
		t.Error("no-op Delete persisted")
	}
}

func TestPresetHydrateCollapsesDuplicates(t *testing.T) {
	_, m, mp := newTestPresets(t)
	mp.saved = []model.Preset{
		{Name: "x", State: model.PanelState{"a": {X: 1, Width: 1, Height: 1}}, Order: model.PanelOrder{"a"}},
		{Name: "x", State: model.PanelState{"a": {X: 2, Width: 1, Height: 1}}, Order: model.PanelOrder{"a"}},
	}
	m.Hydrate(context.Background())

	p, ok := m.Get("x")
	if !ok || p.State["a"].X != 1 || len(m.Names()) != 1 {
		t.Errorf("Hydrate kept %v, first x=%d", m.Names(), p.State["a"].X)
	}
}

func TestPresetExportImport(t *testing.T) {
	ctx := context.Background()
	for _, format := range []string{FormatYAML, FormatJSON} {
		t.Run(format, func(t *testing.T) {
			_, src, _ := newTestPresets(t)
			_ = src.Save(ctx, "trading")
			_ = src.Save(ctx, "overview")

			var buf bytes.Buffer
			if err := src.Export(&buf, format); err != nil {
				t.Fatalf("Export: %v", err)
			}
			if format == FormatYAML && !strings.Contains(buf.String(), "name: trading") {
				t.Errorf("yaml output missing preset name:\n%s", buf.String())
			}

			_, dst, mp := newTestPresets(t)
			names, err := dst.Import(ctx, &buf, format)
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if !reflect.DeepEqual(names, []string{"trading", "overview"}) {
				t.Errorf("imported %v", names)
			}
			if !reflect.DeepEqual(dst.List(), src.List()) {
				t.Errorf("imported presets differ:\n got %+v\nwant %+v", dst.List(), src.List())
			}
			if len(mp.saved) != 2 {
				t.Errorf("import persisted %d presets", len(mp.saved))
			}
		})
	}
}

func TestPresetExportUnknownFormat(t *testing.T) {
	_, m, _ := newTestPresets(t)
	if err := m.Export(&bytes.Buffer{}, "xml"); err == nil {
		t.Error("Export(xml) should fail")
	}
}
