package engine

import (
	"bytes"
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/Gaurav-Gosain/dashpanel/internal/geometry"
	"github.com/Gaurav-Gosain/dashpanel/internal/gesture"
	"github.com/Gaurav-Gosain/dashpanel/internal/model"
	"github.com/Gaurav-Gosain/dashpanel/internal/storage"
)

type recorder struct {
	NopObserver
	mu      sync.Mutex
	commits []gesture.Outcome
	loads   []string
	resets  int
	reloads int
}

func (r *recorder) OnCommit(_ context.Context, out gesture.Outcome, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, out)
}

func (r *recorder) OnPresetLoaded(_ context.Context, name string, _ []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, name)
}

func (r *recorder) OnReset(context.Context, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
}

func (r *recorder) OnReload(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reloads++
}

func newTestEngine(t *testing.T, kv storage.KV) (*Engine, *storage.Adapter, *recorder) {
	t.Helper()
	if kv == nil {
		kv = storage.NewMemoryKV()
	}
	adapter := storage.NewAdapter(kv, nil)
	rec := &recorder{}
	e := New(context.Background(), Options{
		Policy:   geometry.DefaultPolicy(),
		Adapter:  adapter,
		Observer: rec,
		Viewport: model.Size{Width: 1920, Height: 1080},
	})
	return e, adapter, rec
}

var defaultVisible = []string{"orderBook", "fundingRate", "liquidation"}

func TestFirstRunPlacesAndPersists(t *testing.T) {
	ctx := context.Background()
	e, adapter, _ := newTestEngine(t, nil)

	e.SetVisible(ctx, defaultVisible)

	want := model.PanelState{
		"orderBook":   {X: 0, Y: 30, Width: 200, Height: 100},
		"fundingRate": {X: 200, Y: 30, Width: 200, Height: 100},
		"liquidation": {X: 400, Y: 30, Width: 200, Height: 100},
	}
	if got := adapter.LoadState(ctx); !reflect.DeepEqual(got, want) {
		t.Errorf("persisted state = %v, want %v", got, want)
	}
	if got := adapter.LoadOrder(ctx); !reflect.DeepEqual(got, model.PanelOrder(defaultVisible)) {
		t.Errorf("persisted order = %v", got)
	}
}

func TestRestartRestoresLayout(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()

	e, _, _ := newTestEngine(t, kv)
	e.SetVisible(ctx, defaultVisible)
	e.DragStart("orderBook")
	e.DragMove("orderBook", model.Point{X: 803, Y: 604})
	if _, err := e.DragEnd(ctx, "orderBook"); err != nil {
		t.Fatal(err)
	}
	_ = e.SavePreset(ctx, "p1")

	restarted, _, _ := newTestEngine(t, kv)
	restarted.SetVisible(ctx, defaultVisible)
	if g, _ := restarted.Geometry("orderBook"); g.Position() != (model.Point{X: 800, Y: 600}) {
		t.Errorf("orderBook after restart = %+v", g)
	}
	if got := restarted.PresetNames(); !reflect.DeepEqual(got, []string{"p1"}) {
		t.Errorf("presets after restart = %v", got)
	}
}

func TestGesturesNotifyObserver(t *testing.T) {
	ctx := context.Background()
	e, _, rec := newTestEngine(t, nil)
	e.SetVisible(ctx, defaultVisible)

	if !e.DragStart("orderBook") {
		t.Fatal("DragStart refused")
	}
	if id, kind := e.ActiveGesture(); id != "orderBook" || kind != gesture.Drag {
		t.Errorf("ActiveGesture = %q, %v", id, kind)
	}
	e.DragMove("orderBook", model.Point{X: 900, Y: 500})
	if _, err := e.DragEnd(ctx, "orderBook"); err != nil {
		t.Fatal(err)
	}

	e.ResizeStart("fundingRate")
	e.ResizeMove("fundingRate", model.Size{Width: 180, Height: 120})
	if _, err := e.ResizeEnd(ctx, "fundingRate"); err != nil {
		t.Fatal(err)
	}

	if len(rec.commits) != 2 || rec.commits[0].Kind != gesture.Drag || rec.commits[1].Kind != gesture.Resize {
		t.Errorf("commits = %+v", rec.commits)
	}
	if id, _ := e.ActiveGesture(); id != "" {
		t.Errorf("gesture %q still active", id)
	}
}

func TestGesturesIgnoreHiddenPanels(t *testing.T) {
	ctx := context.Background()
	e, _, rec := newTestEngine(t, nil)
	e.SetVisible(ctx, []string{"orderBook"})

	if e.DragStart("liquidation") || e.ResizeStart("liquidation") {
		t.Error("gesture started on a hidden panel")
	}
	if _, err := e.DragEnd(ctx, "liquidation"); err != nil {
		t.Fatal(err)
	}
	if len(rec.commits) != 0 {
		t.Errorf("commit reported for hidden panel: %+v", rec.commits)
	}
}

func TestToggleVisible(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, nil)
	e.SetVisible(ctx, defaultVisible)

	if e.ToggleVisible(ctx, "fundingRate") {
		t.Error("toggling a visible panel should hide it")
	}
	if got := e.Visible(); !reflect.DeepEqual(got, []string{"orderBook", "liquidation"}) {
		t.Errorf("visible = %v", got)
	}
	if g, ok := e.Snapshot().State["fundingRate"]; !ok || g.X != 200 {
		t.Error("hidden panel lost its geometry")
	}

	if !e.ToggleVisible(ctx, "fundingRate") {
		t.Error("toggling a hidden panel should show it")
	}
	if g, _ := e.Geometry("fundingRate"); g.X != 200 || g.Y != 30 {
		t.Errorf("re-shown panel moved: %+v", g)
	}
}

func TestPresetLoadSetsVisible(t *testing.T) {
	ctx := context.Background()
	e, adapter, rec := newTestEngine(t, nil)
	e.SetVisible(ctx, []string{"orderBook", "fundingRate"})
	_ = e.SavePreset(ctx, "two")

	e.SetVisible(ctx, defaultVisible)
	visible, ok := e.LoadPreset(ctx, "two")
	if !ok {
		t.Fatal("LoadPreset(two) failed")
	}
	if !reflect.DeepEqual(visible, []string{"orderBook", "fundingRate"}) || !reflect.DeepEqual(e.Visible(), visible) {
		t.Errorf("visible = %v / %v", visible, e.Visible())
	}
	if !reflect.DeepEqual(rec.loads, []string{"two"}) {
		t.Errorf("loads = %v", rec.loads)
	}
	if got := adapter.LoadOrder(ctx); !reflect.DeepEqual([]string(got), visible) {
		t.Errorf("persisted order = %v", got)
	}

	if _, ok := e.LoadPreset(ctx, "missing"); ok {
		t.Error("LoadPreset(missing) succeeded")
	}
	if len(rec.loads) != 1 {
		t.Error("failed load notified the observer")
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	e, adapter, rec := newTestEngine(t, nil)
	e.SetVisible(ctx, defaultVisible)
	e.DragStart("orderBook")
	e.DragMove("orderBook", model.Point{X: 1000, Y: 700})
	_, _ = e.DragEnd(ctx, "orderBook")
	_ = e.SavePreset(ctx, "p1")

	if err := e.Reset(ctx); err != nil {
		t.Fatal(err)
	}

	if got := adapter.LoadState(ctx); len(got) != 0 {
		t.Errorf("stored state after reset = %v", got)
	}
	if got := adapter.LoadPresets(ctx); len(got) != 0 {
		t.Errorf("stored presets after reset = %v", got)
	}
	if got := e.PresetNames(); len(got) != 0 {
		t.Errorf("presets after reset = %v", got)
	}
	snap := e.Snapshot()
	for i, id := range defaultVisible {
		if snap.State[id] != e.Policy().Cascade(i) {
			t.Errorf("%s = %+v, want cascade slot %d", id, snap.State[id], i)
		}
		if snap.ZIndex[id] != i+1 {
			t.Errorf("z[%s] = %d, want %d", id, snap.ZIndex[id], i+1)
		}
	}
	if rec.resets != 1 {
		t.Errorf("resets = %d", rec.resets)
	}
}

func TestReloadPicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	e, _, rec := newTestEngine(t, kv)
	e.SetVisible(ctx, defaultVisible)

	other, _, _ := newTestEngine(t, kv)
	other.SetVisible(ctx, defaultVisible)
	other.DragStart("liquidation")
	other.DragMove("liquidation", model.Point{X: 1200, Y: 800})
	_, _ = other.DragEnd(ctx, "liquidation")
	_ = other.SavePreset(ctx, "shared")

	if !e.Reload(ctx) {
		t.Fatal("Reload() = false after an external write")
	}

	if g, _ := e.Geometry("liquidation"); g.Position() != (model.Point{X: 1200, Y: 800}) {
		t.Errorf("liquidation after reload = %+v", g)
	}
	if got := e.PresetNames(); !reflect.DeepEqual(got, []string{"shared"}) {
		t.Errorf("presets after reload = %v", got)
	}
	if rec.reloads != 1 {
		t.Errorf("reloads = %d", rec.reloads)
	}
}

func TestReloadIgnoresOwnWrites(t *testing.T) {
	tests := []struct {
		name  string
		setup func(ctx context.Context, e *Engine)
		check func(t *testing.T, e *Engine, adapter *storage.Adapter)
	}{
		{
			name: "drag in flight after a commit",
			setup: func(ctx context.Context, e *Engine) {
				e.SetVisible(ctx, defaultVisible)
				_ = e.SavePreset(ctx, "mine")
				e.DragStart("fundingRate")
				e.DragMove("fundingRate", model.Point{X: 900, Y: 600})
				_, _ = e.DragEnd(ctx, "fundingRate")
				e.DragStart("orderBook")
				e.DragMove("orderBook", model.Point{X: 500, Y: 500})
			},
			check: func(t *testing.T, e *Engine, _ *storage.Adapter) {
				if e.GestureOf("orderBook") != gesture.Drag {
					t.Error("reload cancelled the drag in flight")
				}
			},
		},
		{
			name: "reset purge",
			setup: func(ctx context.Context, e *Engine) {
				e.SetVisible(ctx, defaultVisible)
				_ = e.SavePreset(ctx, "gone")
				_ = e.Reset(ctx)
				e.BringToFront("orderBook")
			},
			check: func(t *testing.T, e *Engine, adapter *storage.Adapter) {
				ctx := context.Background()
				if got := adapter.LoadState(ctx); len(got) != 0 {
					t.Errorf("stored state = %v, want empty", got)
				}
				if got := adapter.LoadOrder(ctx); len(got) != 0 {
					t.Errorf("stored order = %v, want empty", got)
				}
				if z := e.Snapshot().ZIndex["orderBook"]; z != len(defaultVisible)+1 {
					t.Errorf("z[orderBook] = %d, raise was lost", z)
				}
			},
		},
		{
			name: "loading a preset with no panels",
			setup: func(ctx context.Context, e *Engine) {
				_ = e.SavePreset(ctx, "blank")
				e.SetVisible(ctx, defaultVisible)
				e.LoadPreset(ctx, "blank")
			},
			check: func(t *testing.T, e *Engine, _ *storage.Adapter) {
				if got := e.Visible(); len(got) != 0 {
					t.Errorf("Visible() = %v, preset load was undone", got)
				}
				if got := e.Snapshot().State; len(got) != 0 {
					t.Errorf("state = %v, preset load was undone", got)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			e, adapter, rec := newTestEngine(t, nil)
			tt.setup(ctx, e)

			if e.Reload(ctx) {
				t.Error("Reload() = true for this engine's own write")
			}
			if rec.reloads != 0 {
				t.Errorf("reloads = %d", rec.reloads)
			}
			tt.check(t, e, adapter)
		})
	}
}

func TestPanelsStackingAndLiveGeometry(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, nil)
	e.SetVisible(ctx, defaultVisible)

	e.DragStart("orderBook")
	e.DragMove("orderBook", model.Point{X: 555, Y: 444})

	panels := e.Panels()
	if len(panels) != 3 {
		t.Fatalf("Panels = %+v", panels)
	}
	top := panels[len(panels)-1]
	if top.ID != "orderBook" || top.Gesture != "drag" {
		t.Errorf("top = %+v, want dragged orderBook", top)
	}
	if top.Geometry.Position() != (model.Point{X: 555, Y: 444}) {
		t.Errorf("live geometry = %+v", top.Geometry)
	}
	e.CancelGestures()
	if g, _ := e.Geometry("orderBook"); g.X != 0 {
		t.Errorf("cancel committed the drag: %+v", g)
	}
}

func TestExportImportThroughEngine(t *testing.T) {
	ctx := context.Background()
	src, _, _ := newTestEngine(t, nil)
	src.SetVisible(ctx, defaultVisible)
	_ = src.SavePreset(ctx, "a")

	var buf bytes.Buffer
	if err := src.ExportPresets(&buf, "yaml"); err != nil {
		t.Fatal(err)
	}
	dst, adapter, _ := newTestEngine(t, nil)
	names, err := dst.ImportPresets(ctx, &buf, "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"a"}) || len(adapter.LoadPresets(ctx)) != 1 {
		t.Errorf("imported %v", names)
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, nil)
	e.SetVisible(ctx, defaultVisible)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := defaultVisible[i%len(defaultVisible)]
			for range 20 {
				if e.DragStart(id) {
					e.DragMove(id, model.Point{X: 100 * i, Y: 50 * i})
					_, _ = e.DragEnd(ctx, id)
				}
				_ = e.Panels()
				_ = e.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	if id, _ := e.ActiveGesture(); id != "" {
		t.Errorf("gesture %q left active", id)
	}
}
