// Package engine composes the layout store, gesture controllers, preset
// manager and persistence adapter behind a single lock, so the terminal
// view, the file watcher and concurrent HTTP handlers all see one ordered
// stream of layout events.
package engine

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Gaurav-Gosain/dashpanel/internal/geometry"
	"github.com/Gaurav-Gosain/dashpanel/internal/gesture"
	"github.com/Gaurav-Gosain/dashpanel/internal/layout"
	"github.com/Gaurav-Gosain/dashpanel/internal/logging"
	"github.com/Gaurav-Gosain/dashpanel/internal/model"
	"github.com/Gaurav-Gosain/dashpanel/internal/storage"
)

// Options configures an Engine.
type Options struct {
	Policy   geometry.Policy
	Adapter  *storage.Adapter // nil keeps everything in memory
	Observer Observer
	Logger   *log.Logger
	Viewport model.Size
}

// PanelView is what a renderer needs to draw one panel.
type PanelView struct {
	ID       string         `json:"id"`
	Geometry model.Geometry `json:"geometry"`
	Z        int            `json:"z"`
	Gesture  string         `json:"gesture,omitempty"`
}

// Engine is the layout engine. All methods are safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	adapter  *storage.Adapter
	store    *layout.Store
	presets  *layout.PresetManager
	ctrls    map[string]*gesture.Controller
	obs      Observer
	log      *log.Logger
	viewport model.Size
	visible  []string

	// stored is what the adapter held after this engine's last write or
	// load. Reload treats a matching read as an echo of its own write.
	stored storedLayout
}

// storedLayout is one read of every persisted key.
type storedLayout struct {
	state   model.PanelState
	order   model.PanelOrder
	presets []model.Preset
}

func (s storedLayout) equal(o storedLayout) bool {
	if !maps.Equal(s.state, o.state) || !slices.Equal(s.order, o.order) {
		return false
	}
	return slices.EqualFunc(s.presets, o.presets, func(a, b model.Preset) bool {
		return a.Name == b.Name && maps.Equal(a.State, b.State) && slices.Equal(a.Order, b.Order)
	})
}

// New builds an engine and hydrates it from the adapter. The visible set
// starts empty; call SetVisible to place panels.
func New(ctx context.Context, opts Options) *Engine {
	logger := logging.OrDiscard(opts.Logger)
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	if opts.Policy.GridSize == 0 {
		opts.Policy = geometry.DefaultPolicy()
	}

	var (
		persist       layout.Persister
		presetPersist layout.PresetPersister
	)
	if opts.Adapter != nil {
		persist = opts.Adapter
		presetPersist = opts.Adapter
	}

	store := layout.NewStore(opts.Policy, persist, logger)
	e := &Engine{
		adapter:  opts.Adapter,
		store:    store,
		presets:  layout.NewPresetManager(store, presetPersist, logger),
		ctrls:    make(map[string]*gesture.Controller),
		obs:      opts.Observer,
		log:      logger,
		viewport: opts.Viewport,
		visible:  []string{},
	}
	e.hydrate(ctx)
	return e
}

func (e *Engine) hydrate(ctx context.Context) {
	if e.adapter == nil {
		return
	}
	e.store.Hydrate(e.adapter.LoadState(ctx), e.adapter.LoadOrder(ctx))
	e.presets.Hydrate(ctx)
	e.markStoredLocked(ctx)
}

func (e *Engine) readStoredLocked(ctx context.Context) storedLayout {
	return storedLayout{
		state:   e.adapter.LoadState(ctx),
		order:   e.adapter.LoadOrder(ctx),
		presets: e.adapter.LoadPresets(ctx),
	}
}

// markStoredLocked records the adapter's contents after a write. Skipped
// saves, such as an empty state, leave the old keys in place and are
// recorded as they are.
func (e *Engine) markStoredLocked(ctx context.Context) {
	if e.adapter == nil {
		return
	}
	e.stored = e.readStoredLocked(ctx)
}

func (e *Engine) controller(id string) *gesture.Controller {
	c, ok := e.ctrls[id]
	if !ok {
		c = gesture.New(id, e.store, e.viewportLocked, e.log)
		e.ctrls[id] = c
	}
	return c
}

// viewportLocked is handed to controllers, which only run under e.mu.
func (e *Engine) viewportLocked() model.Size {
	return e.viewport
}

// Policy returns the geometry constants in force.
func (e *Engine) Policy() geometry.Policy {
	return e.store.Policy()
}

// SetViewport records the container size used for edge snapping.
func (e *Engine) SetViewport(size model.Size) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport = size
}

// Viewport returns the container size.
func (e *Engine) Viewport() model.Size {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (e *Engine) setVisibleLocked(ctx context.Context, ids []string) bool {
	ids = dedupe(ids)
	for id, c := range e.ctrls {
		if !slices.Contains(ids, id) {
			c.Cancel()
		}
	}
	e.visible = ids
	changed := e.store.Reconcile(ctx, ids)
	e.markStoredLocked(ctx)
	return changed
}

// SetVisible replaces the visible set and reconciles the layout against it.
// It reports whether geometry or order changed.
func (e *Engine) SetVisible(ctx context.Context, ids []string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setVisibleLocked(ctx, ids)
}

// ToggleVisible shows or hides id and returns whether it is now visible.
// Shown panels are appended to the end of the visible set.
func (e *Engine) ToggleVisible(ctx context.Context, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := slices.Clone(e.visible)
	shown := !slices.Contains(next, id)
	if shown {
		next = append(next, id)
	} else {
		next = slices.DeleteFunc(next, func(v string) bool { return v == id })
	}
	e.setVisibleLocked(ctx, next)
	return shown
}

// Visible returns the visible set in display order.
func (e *Engine) Visible() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.visible)
}

// IsVisible reports whether id is in the visible set.
func (e *Engine) IsVisible(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Contains(e.visible, id)
}

// BringToFront raises id and returns its new z.
func (e *Engine) BringToFront(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.BringToFront(id)
}

// TopmostAt returns the highest visible panel under p.
func (e *Engine) TopmostAt(p model.Point) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.TopmostAt(p)
}

// Geometry returns the live geometry of id, including any gesture in flight.
func (e *Engine) Geometry(id string) (model.Geometry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.ctrls[id]; ok {
		return c.Live()
	}
	return e.store.Geometry(id)
}

// DragStart begins dragging a visible panel.
func (e *Engine) DragStart(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !slices.Contains(e.visible, id) {
		return false
	}
	return e.controller(id).DragStart()
}

// DragMove updates the live position of a drag.
func (e *Engine) DragMove(id string, p model.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.ctrls[id]; ok {
		c.DragMove(p)
	}
}

// DragEnd resolves and commits a drag.
func (e *Engine) DragEnd(ctx context.Context, id string) (gesture.Outcome, error) {
	e.mu.Lock()
	c, ok := e.ctrls[id]
	if !ok || !c.Dragging() {
		e.mu.Unlock()
		return gesture.Outcome{}, nil
	}
	out, err := c.DragEnd(ctx)
	e.markStoredLocked(ctx)
	e.mu.Unlock()

	e.obs.OnCommit(ctx, out, err)
	return out, err
}

// ResizeStart begins resizing a visible panel.
func (e *Engine) ResizeStart(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !slices.Contains(e.visible, id) {
		return false
	}
	return e.controller(id).ResizeStart()
}

// ResizeMove updates the live size of a resize. The size is taken as is.
func (e *Engine) ResizeMove(id string, size model.Size) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.ctrls[id]; ok {
		c.ResizeMove(size)
	}
}

// ResizeEnd commits a resize.
func (e *Engine) ResizeEnd(ctx context.Context, id string) (gesture.Outcome, error) {
	e.mu.Lock()
	c, ok := e.ctrls[id]
	if !ok || !c.Resizing() {
		e.mu.Unlock()
		return gesture.Outcome{}, nil
	}
	out, err := c.ResizeEnd(ctx)
	e.markStoredLocked(ctx)
	e.mu.Unlock()

	e.obs.OnCommit(ctx, out, err)
	return out, err
}

// ActiveGesture returns the panel with a gesture in flight, if any.
func (e *Engine) ActiveGesture() (string, gesture.Kind) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, c := range e.ctrls {
		if c.Active() {
			return id, c.Kind()
		}
	}
	return "", gesture.None
}

// GestureOf returns the kind of gesture in flight on id.
func (e *Engine) GestureOf(id string) gesture.Kind {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.ctrls[id]; ok {
		return c.Kind()
	}
	return gesture.None
}

// CancelGestures drops every in-flight gesture without committing.
func (e *Engine) CancelGestures() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
}

func (e *Engine) cancelLocked() {
	for _, c := range e.ctrls {
		c.Cancel()
	}
}

// SavePreset snapshots the layout under name.
func (e *Engine) SavePreset(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.markStoredLocked(ctx)
	return e.presets.Save(ctx, name)
}

// LoadPreset applies a preset and makes its panels the visible set. ok is
// false, with nothing changed, for an unknown name.
func (e *Engine) LoadPreset(ctx context.Context, name string) ([]string, bool) {
	e.mu.Lock()
	e.cancelLocked()
	visible, ok := e.presets.Load(name)
	if ok {
		e.visible = slices.Clone(visible)
		if err := e.store.Persist(ctx); err != nil {
			e.log.Warn("failed to persist loaded preset", "preset", name, "err", err)
		}
		e.markStoredLocked(ctx)
	}
	e.mu.Unlock()

	if ok {
		e.obs.OnPresetLoaded(ctx, name, visible)
	}
	return visible, ok
}

// DeletePreset removes a preset and reports whether it existed.
func (e *Engine) DeletePreset(ctx context.Context, name string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.markStoredLocked(ctx)
	return e.presets.Delete(ctx, name)
}

// Presets returns copies of every saved preset.
func (e *Engine) Presets() []model.Preset {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.presets.List()
}

// PresetNames returns the preset names in saved order.
func (e *Engine) PresetNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.presets.Names()
}

// ExportPresets writes every preset to w in the given format.
func (e *Engine) ExportPresets(w io.Writer, format string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.presets.Export(w, format)
}

// ImportPresets merges presets read from r.
func (e *Engine) ImportPresets(ctx context.Context, r io.Reader, format string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.markStoredLocked(ctx)
	return e.presets.Import(ctx, r, format)
}

// Reset re-cascades the visible panels, forgets every preset and purges
// storage. There is no confirmation here; callers ask first.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	e.cancelLocked()
	e.store.ResetToDefaults(e.visible)
	e.presets.Clear()
	var err error
	if e.adapter != nil {
		if err = e.adapter.ResetAll(ctx); err != nil {
			err = fmt.Errorf("failed to purge stored layout: %w", err)
		}
		e.markStoredLocked(ctx)
	}
	visible := slices.Clone(e.visible)
	e.mu.Unlock()

	e.log.Info("layout reset", "panels", len(visible))
	e.obs.OnReset(ctx, visible, err)
	return err
}

// Reload re-reads layout and presets from storage, after another process
// wrote them, and reconciles against the current visible set. A read that
// matches this engine's last write, or its memory, is an echo and changes
// nothing, so gestures in flight survive. It reports whether anything was
// reloaded.
func (e *Engine) Reload(ctx context.Context) bool {
	e.mu.Lock()
	if e.adapter == nil {
		e.mu.Unlock()
		return false
	}
	if disk := e.readStoredLocked(ctx); disk.equal(e.stored) || disk.equal(e.memoryLocked()) {
		e.stored = disk
		e.mu.Unlock()
		e.log.Debug("layout on disk unchanged, skipping reload")
		return false
	}
	e.cancelLocked()
	e.store.Hydrate(e.adapter.LoadState(ctx), e.adapter.LoadOrder(ctx))
	e.presets.Hydrate(ctx)
	e.store.Reconcile(ctx, e.visible)
	e.markStoredLocked(ctx)
	e.mu.Unlock()

	e.log.Debug("layout reloaded from storage")
	e.obs.OnReload(ctx)
	return true
}

func (e *Engine) memoryLocked() storedLayout {
	snap := e.store.Snapshot()
	return storedLayout{state: snap.State, order: snap.Order, presets: e.presets.List()}
}

// Panels returns the visible panels bottom to top, with live geometry.
func (e *Engine) Panels() []PanelView {
	e.mu.Lock()
	defer e.mu.Unlock()
	stack := e.store.Stacking()
	views := make([]PanelView, 0, len(stack))
	for _, id := range stack {
		g, _ := e.store.Geometry(id)
		var kind gesture.Kind
		if c, ok := e.ctrls[id]; ok {
			g, _ = c.Live()
			kind = c.Kind()
		}
		v := PanelView{ID: id, Geometry: g, Z: e.store.Z(id)}
		if kind != gesture.None {
			v.Gesture = kind.String()
		}
		views = append(views, v)
	}
	return views
}

// Snapshot returns a deep copy of the committed layout.
func (e *Engine) Snapshot() model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Snapshot()
}
