package storage_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Gaurav-Gosain/dashpanel/internal/model"
	"github.com/Gaurav-Gosain/dashpanel/internal/storage"
)

func TestAdapterLoadEmpty(t *testing.T) {
	ctx := context.Background()
	a := storage.NewAdapter(storage.NewMemoryKV(), nil)

	if got := a.LoadState(ctx); got == nil || len(got) != 0 {
		t.Errorf("LoadState = %v, want empty non-nil", got)
	}
	if got := a.LoadOrder(ctx); got == nil || len(got) != 0 {
		t.Errorf("LoadOrder = %v, want empty non-nil", got)
	}
	if got := a.LoadPresets(ctx); got == nil || len(got) != 0 {
		t.Errorf("LoadPresets = %v, want empty non-nil", got)
	}
}

func TestAdapterCorruptKeysDegradeIndependently(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	_ = kv.Set(ctx, storage.KeyPanelState, "{{{ not json")
	_ = kv.Set(ctx, storage.KeyPanelOrder, `["orderBook","fundingRate"]`)
	_ = kv.Set(ctx, storage.KeyPresets, `"a string, not a list"`)

	a := storage.NewAdapter(kv, nil)

	if got := a.LoadState(ctx); len(got) != 0 {
		t.Errorf("LoadState on corrupt blob = %v, want empty", got)
	}
	want := model.PanelOrder{"orderBook", "fundingRate"}
	if got := a.LoadOrder(ctx); !reflect.DeepEqual(got, want) {
		t.Errorf("LoadOrder = %v, want %v", got, want)
	}
	if got := a.LoadPresets(ctx); len(got) != 0 {
		t.Errorf("LoadPresets on corrupt blob = %v, want empty", got)
	}
}

func TestAdapterLoadStateShape(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	_ = kv.Set(ctx, storage.KeyPanelState, `{
		"orderBook": {"x": 10.4, "y": 30, "width": 200.5, "height": 100},
		"fundingRate": {"y": 30, "width": 200, "height": 100}
	}`)

	got := storage.NewAdapter(kv, nil).LoadState(ctx)
	want := model.PanelState{"orderBook": {X: 10, Y: 30, Width: 201, Height: 100}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadState = %v, want %v", got, want)
	}
}

func TestAdapterSaveSkipsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	a := storage.NewAdapter(kv, nil)

	state := model.PanelState{"orderBook": {X: 0, Y: 30, Width: 200, Height: 100}}
	order := model.PanelOrder{"orderBook"}
	if err := a.Save(ctx, state, order); err != nil {
		t.Fatal(err)
	}

	// An empty state must not erase the stored one; the order still saves.
	if err := a.Save(ctx, model.PanelState{}, model.PanelOrder{"orderBook", "liquidation"}); err != nil {
		t.Fatal(err)
	}
	if got := a.LoadState(ctx); !reflect.DeepEqual(got, state) {
		t.Errorf("LoadState = %v, want %v", got, state)
	}
	if got := a.LoadOrder(ctx); !reflect.DeepEqual(got, model.PanelOrder{"orderBook", "liquidation"}) {
		t.Errorf("LoadOrder = %v", got)
	}

	if err := a.Save(ctx, state, nil); err != nil {
		t.Fatal(err)
	}
	if got := a.LoadOrder(ctx); len(got) != 2 {
		t.Errorf("empty order erased stored order: %v", got)
	}
}

func TestAdapterPresets(t *testing.T) {
	ctx := context.Background()
	a := storage.NewAdapter(storage.NewMemoryKV(), nil)

	presets := []model.Preset{
		{
			Name:  "trading",
			State: model.PanelState{"orderBook": {X: 0, Y: 30, Width: 300, Height: 200}},
			Order: model.PanelOrder{"orderBook"},
		},
	}
	if err := a.SavePresets(ctx, presets); err != nil {
		t.Fatal(err)
	}
	if got := a.LoadPresets(ctx); !reflect.DeepEqual(got, presets) {
		t.Errorf("LoadPresets = %+v, want %+v", got, presets)
	}
}

func TestAdapterPresetsDropsNameless(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	_ = kv.Set(ctx, storage.KeyPresets, `[{"name":"  ","state":{},"order":[]},{"name":"ok","state":{},"order":["a"]}]`)

	got := storage.NewAdapter(kv, nil).LoadPresets(ctx)
	if len(got) != 1 || got[0].Name != "ok" {
		t.Errorf("LoadPresets = %+v, want only \"ok\"", got)
	}
}

func TestAdapterResetAll(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	a := storage.NewAdapter(kv, nil)

	_ = a.Save(ctx, model.PanelState{"a": {Width: 1, Height: 1}}, model.PanelOrder{"a"})
	_ = a.SavePresets(ctx, []model.Preset{{Name: "p", State: model.PanelState{}, Order: model.PanelOrder{}}})

	if err := a.ResetAll(ctx); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{storage.KeyPanelState, storage.KeyPanelOrder, storage.KeyPresets} {
		if _, err := kv.Get(ctx, key); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("key %s survived ResetAll (err=%v)", key, err)
		}
	}
	if len(a.LoadState(ctx)) != 0 || len(a.LoadPresets(ctx)) != 0 {
		t.Error("loads after ResetAll should be empty")
	}
}
