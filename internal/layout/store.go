// Package layout owns the authoritative panel arrangement: per-panel
// geometry, display order, stacking order and the visible set it was last
// reconciled against, plus the named presets saved from it.
//
// Nothing here is safe for concurrent use. Callers serialize access the way
// a UI event loop does; see internal/engine.
package layout

import (
	"context"
	"slices"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/Gaurav-Gosain/dashpanel/internal/geometry"
	"github.com/Gaurav-Gosain/dashpanel/internal/logging"
	"github.com/Gaurav-Gosain/dashpanel/internal/model"
)

// Persister saves the live state and order. storage.Adapter implements it.
type Persister interface {
	Save(ctx context.Context, state model.PanelState, order model.PanelOrder) error
}

// Store holds the live layout.
type Store struct {
	policy  geometry.Policy
	persist Persister
	log     *log.Logger

	state   model.PanelState
	order   model.PanelOrder
	z       model.ZIndexMap
	visible []string
}

// NewStore returns an empty store. persist may be nil for a store that
// never writes.
func NewStore(policy geometry.Policy, persist Persister, logger *log.Logger) *Store {
	return &Store{
		policy:  policy,
		persist: persist,
		log:     logging.OrDiscard(logger),
		state:   model.PanelState{},
		order:   model.PanelOrder{},
		z:       model.ZIndexMap{},
	}
}

// Policy returns the layout constants the store places panels with.
func (s *Store) Policy() geometry.Policy {
	return s.policy
}

// Hydrate replaces state and order with a persisted snapshot. The visible
// set is forgotten so the next Reconcile runs in full.
func (s *Store) Hydrate(state model.PanelState, order model.PanelOrder) {
	s.state = state.Clone()
	s.order = order.Clone()
	s.visible = nil
	s.z = model.ZIndexMap{}
}

func (s *Store) save(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	return s.persist.Save(ctx, s.state, s.order)
}

func (s *Store) needsInit(visible []string) bool {
	for _, id := range visible {
		if !s.state.Has(id) {
			return true
		}
	}
	return false
}

// zFromOrder assigns 1-based z values following the order, restricted to
// the visible ids.
func (s *Store) zFromOrder() {
	z := model.ZIndexMap{}
	n := 0
	for _, id := range s.order {
		if slices.Contains(s.visible, id) {
			n++
			z[id] = n
		}
	}
	s.z = z
}

// Reconcile brings the store in line with a new visible set and reports
// whether state or order changed. Calling it again with the same set is a
// no-op, which keeps bring-to-front bumps intact.
func (s *Store) Reconcile(ctx context.Context, visible []string) bool {
	visible = slices.Clone(visible)
	if visible == nil {
		visible = []string{}
	}

	if !s.needsInit(visible) {
		if slices.Equal(visible, s.visible) {
			return false
		}
		s.visible = visible
		s.zFromOrder()
		s.log.Debug("reconciled visible panels", "visible", visible)
		return false
	}

	s.visible = visible
	changed := false
	for i, id := range visible {
		if s.state.Has(id) {
			continue
		}
		s.state[id] = s.policy.Cascade(i)
		changed = true
		s.log.Debug("placed panel", "panel", id, "slot", i)
	}

	s.z = make(model.ZIndexMap, len(visible))
	for i, id := range visible {
		s.z[id] = i + 1
	}

	missing := len(s.order) == 0
	for _, id := range visible {
		if !s.order.Contains(id) {
			missing = true
			break
		}
	}
	if missing {
		s.order = model.PanelOrder(slices.Clone(visible))
		changed = true
	}

	if changed && len(s.state) > 0 && len(s.order) > 0 {
		if err := s.save(ctx); err != nil {
			s.log.Warn("failed to persist reconciled layout", "err", err)
		}
	}
	return changed
}

// BringToFront raises id above every other panel and returns its new z.
func (s *Store) BringToFront(id string) int {
	next := s.z.Max() + 1
	s.z[id] = next
	return next
}

// Geometry returns the committed geometry for id.
func (s *Store) Geometry(id string) (model.Geometry, bool) {
	g, ok := s.state[id]
	return g, ok
}

// State returns the live state. Callers must not modify it.
func (s *Store) State() model.PanelState {
	return s.state
}

// Commit replaces the geometry of id and persists.
func (s *Store) Commit(ctx context.Context, id string, g model.Geometry) error {
	s.state[id] = g
	return s.save(ctx)
}

// Persist writes the current state and order.
func (s *Store) Persist(ctx context.Context) error {
	return s.save(ctx)
}

// Replace swaps in a new state and order, as a preset load does, and
// recomputes z from the new order. Nothing is persisted.
func (s *Store) Replace(state model.PanelState, order model.PanelOrder, visible []string) {
	s.state = state.Clone()
	s.order = order.Clone()
	s.visible = slices.Clone(visible)
	s.zFromOrder()
}

// ResetToDefaults discards every geometry and re-cascades visible. Nothing
// is persisted.
func (s *Store) ResetToDefaults(visible []string) {
	s.state = make(model.PanelState, len(visible))
	s.z = make(model.ZIndexMap, len(visible))
	for i, id := range visible {
		s.state[id] = s.policy.Cascade(i)
		s.z[id] = i + 1
	}
	s.order = model.PanelOrder(slices.Clone(visible))
	s.visible = slices.Clone(visible)
}

// Visible returns the visible set the store was last reconciled with.
func (s *Store) Visible() []string {
	if s.visible == nil {
		return []string{}
	}
	return slices.Clone(s.visible)
}

// Z returns the stacking value of id (0 when unknown).
func (s *Store) Z(id string) int {
	return s.z[id]
}

// Others returns the visible ids except id, in visible order.
func (s *Store) Others(id string) []string {
	out := make([]string, 0, len(s.visible))
	for _, v := range s.visible {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Stacking returns the visible ids with geometry, bottom to top. Equal z
// values keep visible order.
func (s *Store) Stacking() []string {
	ids := make([]string, 0, len(s.visible))
	for _, id := range s.visible {
		if s.state.Has(id) {
			ids = append(ids, id)
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return s.z[ids[i]] < s.z[ids[j]]
	})
	return ids
}

// TopmostAt returns the highest visible panel containing p.
func (s *Store) TopmostAt(p model.Point) (string, bool) {
	stack := s.Stacking()
	for i := len(stack) - 1; i >= 0; i-- {
		if s.state[stack[i]].Rect().Contains(p) {
			return stack[i], true
		}
	}
	return "", false
}

// Snapshot deep-copies the live layout.
func (s *Store) Snapshot() model.Snapshot {
	return model.Snapshot{
		State:   s.state.Clone(),
		Order:   s.order.Clone(),
		ZIndex:  s.z.Clone(),
		Visible: s.Visible(),
	}
}
