package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Gaurav-Gosain/dashpanel/internal/logging"
	"github.com/Gaurav-Gosain/dashpanel/internal/model"
)

// Persisted keys. Each holds a JSON document and degrades independently.
const (
	KeyPanelState = "panelState"
	KeyPanelOrder = "panelOrder"
	KeyPresets    = "presets"
)

// Adapter reads and writes the layout through a KV. Loads never fail:
// missing or malformed data comes back as an empty value and is logged.
type Adapter struct {
	kv  KV
	log *log.Logger
}

// NewAdapter wraps kv. A nil logger discards.
func NewAdapter(kv KV, logger *log.Logger) *Adapter {
	return &Adapter{kv: kv, log: logging.OrDiscard(logger)}
}

// KV returns the underlying store.
func (a *Adapter) KV() KV {
	return a.kv
}

// wireGeometry accepts fractional and missing fields as written by the
// browser renderer. Shape is validated here and nowhere else.
type wireGeometry struct {
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

func (w wireGeometry) geometry() (model.Geometry, bool) {
	if w.X == nil || w.Y == nil || w.Width == nil || w.Height == nil {
		return model.Geometry{}, false
	}
	return model.Geometry{
		X:      roundPixel(*w.X),
		Y:      roundPixel(*w.Y),
		Width:  roundPixel(*w.Width),
		Height: roundPixel(*w.Height),
	}, true
}

func roundPixel(v float64) int {
	return int(math.Floor(v + 0.5))
}

type wirePreset struct {
	Name  string                  `json:"name"`
	State map[string]wireGeometry `json:"state"`
	Order []string                `json:"order"`
}

func decodeState(raw map[string]wireGeometry) (model.PanelState, int) {
	state := make(model.PanelState, len(raw))
	dropped := 0
	for id, w := range raw {
		g, ok := w.geometry()
		if !ok {
			dropped++
			continue
		}
		state[id] = g
	}
	return state, dropped
}

func (a *Adapter) read(ctx context.Context, key string) (string, bool) {
	v, err := a.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", false
	}
	if err != nil {
		a.log.Warn("failed to read layout key", "key", key, "err", err)
		return "", false
	}
	return v, true
}

// LoadState returns the persisted panel geometry, or an empty state.
func (a *Adapter) LoadState(ctx context.Context) model.PanelState {
	raw, ok := a.read(ctx, KeyPanelState)
	if !ok {
		return model.PanelState{}
	}
	var wire map[string]wireGeometry
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		a.log.Warn("discarding malformed panel state", "err", err)
		return model.PanelState{}
	}
	state, dropped := decodeState(wire)
	if dropped > 0 {
		a.log.Warn("dropped incomplete panel geometry", "count", dropped)
	}
	return state
}

// LoadOrder returns the persisted panel order, or an empty order.
func (a *Adapter) LoadOrder(ctx context.Context) model.PanelOrder {
	raw, ok := a.read(ctx, KeyPanelOrder)
	if !ok {
		return model.PanelOrder{}
	}
	var order []string
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		a.log.Warn("discarding malformed panel order", "err", err)
		return model.PanelOrder{}
	}
	if order == nil {
		return model.PanelOrder{}
	}
	return model.PanelOrder(order)
}

// Save writes state and order. An empty state or an empty order is skipped
// on its own so a transient empty layout cannot erase good data.
func (a *Adapter) Save(ctx context.Context, state model.PanelState, order model.PanelOrder) error {
	if len(state) > 0 {
		data, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("failed to encode panel state: %w", err)
		}
		if err := a.kv.Set(ctx, KeyPanelState, string(data)); err != nil {
			a.log.Error("failed to save panel state", "err", err)
			return fmt.Errorf("failed to save panel state: %w", err)
		}
	} else {
		a.log.Debug("skipping save of empty panel state")
	}

	if len(order) > 0 {
		data, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("failed to encode panel order: %w", err)
		}
		if err := a.kv.Set(ctx, KeyPanelOrder, string(data)); err != nil {
			a.log.Error("failed to save panel order", "err", err)
			return fmt.Errorf("failed to save panel order: %w", err)
		}
	} else {
		a.log.Debug("skipping save of empty panel order")
	}
	return nil
}

// LoadPresets returns the persisted presets, or none.
func (a *Adapter) LoadPresets(ctx context.Context) []model.Preset {
	raw, ok := a.read(ctx, KeyPresets)
	if !ok {
		return []model.Preset{}
	}
	var wire []wirePreset
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		a.log.Warn("discarding malformed presets", "err", err)
		return []model.Preset{}
	}
	presets := make([]model.Preset, 0, len(wire))
	for _, w := range wire {
		name := strings.TrimSpace(w.Name)
		if name == "" {
			a.log.Warn("dropping preset without a name")
			continue
		}
		state, dropped := decodeState(w.State)
		if dropped > 0 {
			a.log.Warn("dropped incomplete preset geometry", "preset", name, "count", dropped)
		}
		order := model.PanelOrder(w.Order)
		if order == nil {
			order = model.PanelOrder{}
		}
		presets = append(presets, model.Preset{Name: name, State: state, Order: order})
	}
	return presets
}

// SavePresets replaces the persisted preset collection.
func (a *Adapter) SavePresets(ctx context.Context, presets []model.Preset) error {
	if presets == nil {
		presets = []model.Preset{}
	}
	data, err := json.Marshal(presets)
	if err != nil {
		return fmt.Errorf("failed to encode presets: %w", err)
	}
	if err := a.kv.Set(ctx, KeyPresets, string(data)); err != nil {
		a.log.Error("failed to save presets", "err", err)
		return fmt.Errorf("failed to save presets: %w", err)
	}
	return nil
}

// ResetAll removes every persisted layout key.
func (a *Adapter) ResetAll(ctx context.Context) error {
	if err := a.kv.Delete(ctx, KeyPanelState, KeyPanelOrder, KeyPresets); err != nil {
		return fmt.Errorf("failed to reset layout storage: %w", err)
	}
	a.log.Info("layout storage reset")
	return nil
}
