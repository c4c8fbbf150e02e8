// Package gesture tracks one panel's in-flight drag or resize and turns its
// end into a committed geometry.
package gesture

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Gaurav-Gosain/dashpanel/internal/geometry"
	"github.com/Gaurav-Gosain/dashpanel/internal/layout"
	"github.com/Gaurav-Gosain/dashpanel/internal/logging"
	"github.com/Gaurav-Gosain/dashpanel/internal/model"
)

// Kind names a gesture.
type Kind int

const (
	None Kind = iota
	Drag
	Resize
)

func (k Kind) String() string {
	switch k {
	case Drag:
		return "drag"
	case Resize:
		return "resize"
	default:
		return "none"
	}
}

// Outcome describes how a gesture end was resolved.
type Outcome struct {
	Kind     Kind
	ID       string
	Gesture  string
	Snapped  model.Point
	Magnet   *geometry.SnapPoint
	Collided bool
	Resolved bool
	Final    model.Geometry
}

// Controller owns the drag and resize flags for a single panel. The two are
// independent: a resize cannot start mid-drag and a drag cannot start
// mid-resize.
type Controller struct {
	id       string
	store    *layout.Store
	viewport func() model.Size
	log      *log.Logger

	dragging  bool
	resizing  bool
	gestureID string
	livePos   model.Point
	liveSize  model.Size
}

// New returns a controller for panel id. viewport reports the current
// container size used for edge snapping.
func New(id string, store *layout.Store, viewport func() model.Size, logger *log.Logger) *Controller {
	return &Controller{
		id:       id,
		store:    store,
		viewport: viewport,
		log:      logging.OrDiscard(logger).With("panel", id),
	}
}

// ID returns the panel id.
func (c *Controller) ID() string { return c.id }

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// Resizing reports whether a resize is in progress.
func (c *Controller) Resizing() bool { return c.resizing }

// Active reports whether either gesture is in progress.
func (c *Controller) Active() bool { return c.dragging || c.resizing }

// Kind returns the gesture in progress.
func (c *Controller) Kind() Kind {
	switch {
	case c.dragging:
		return Drag
	case c.resizing:
		return Resize
	default:
		return None
	}
}

func (c *Controller) committed() model.Geometry {
	if g, ok := c.store.Geometry(c.id); ok {
		return g
	}
	sz := c.store.Policy().DefaultSize()
	return model.Geometry{Width: sz.Width, Height: sz.Height}
}

// Live returns the geometry to draw: the committed one with any in-flight
// position or size applied.
func (c *Controller) Live() (model.Geometry, bool) {
	g, ok := c.store.Geometry(c.id)
	if !ok && !c.Active() {
		return model.Geometry{}, false
	}
	if !ok {
		g = c.committed()
	}
	if c.dragging {
		g = g.At(c.livePos)
	}
	if c.resizing {
		g = g.Sized(c.liveSize)
	}
	return g, true
}

// DragStart begins a drag and raises the panel. It returns false when a
// gesture is already running.
func (c *Controller) DragStart() bool {
	if c.resizing || c.dragging {
		return false
	}
	c.dragging = true
	c.gestureID = uuid.New().String()
	c.store.BringToFront(c.id)
	c.livePos = c.committed().Position()
	c.log.Debug("drag start", "gesture", c.gestureID, "x", c.livePos.X, "y", c.livePos.Y)
	return true
}

// DragMove records the pointer position. Nothing is snapped or committed.
func (c *Controller) DragMove(p model.Point) {
	if !c.dragging {
		return
	}
	c.livePos = p
}

// DragEnd snaps the live position to edges and grid, pulls it onto a nearby
// neighbour edge, nudges it off any overlap and commits.
func (c *Controller) DragEnd(ctx context.Context) (Outcome, error) {
	if !c.dragging {
		return Outcome{}, nil
	}
	policy := c.store.Policy()
	current := c.committed()
	size := current.Size()
	others := c.store.Others(c.id)
	state := c.store.State()

	out := Outcome{Kind: Drag, ID: c.id, Gesture: c.gestureID}
	out.Snapped = policy.SnapToEdgesAndGrid(c.livePos.X, c.livePos.Y, size.Width, size.Height, c.viewport())

	pos := out.Snapped
	out.Magnet = policy.FindNearestSnapPoints(model.RectAt(pos, size), others, state)
	pos = geometry.ApplySnapPoint(pos, out.Magnet)

	if geometry.Collides(c.id, pos, size, others, state) {
		out.Collided = true
		pos = policy.FindNonCollidingPosition(c.id, pos, size, others, state)
		out.Resolved = !geometry.Collides(c.id, pos, size, others, state)
		if !out.Resolved {
			c.log.Debug("no free position near drop point", "gesture", c.gestureID, "x", pos.X, "y", pos.Y)
		}
	}

	out.Final = current.At(pos)
	c.dragging = false
	c.log.Debug("drag end", "gesture", c.gestureID, "x", pos.X, "y", pos.Y, "collided", out.Collided)
	if err := c.store.Commit(ctx, c.id, out.Final); err != nil {
		return out, fmt.Errorf("failed to commit drag of %s: %w", c.id, err)
	}
	return out, nil
}

// ResizeStart begins a resize. It returns false while dragging or when a
// resize is already running.
func (c *Controller) ResizeStart() bool {
	if c.dragging || c.resizing {
		return false
	}
	c.resizing = true
	c.gestureID = uuid.New().String()
	c.liveSize = c.committed().Size()
	c.log.Debug("resize start", "gesture", c.gestureID, "width", c.liveSize.Width, "height", c.liveSize.Height)
	return true
}

// ResizeMove records the new size. Callers clamp it to the size limits.
func (c *Controller) ResizeMove(s model.Size) {
	if !c.resizing {
		return
	}
	c.liveSize = s
}

// ResizeEnd snaps the committed position against the new size and commits.
// An overlap is logged but never rejects the resize.
func (c *Controller) ResizeEnd(ctx context.Context) (Outcome, error) {
	if !c.resizing {
		return Outcome{}, nil
	}
	policy := c.store.Policy()
	current := c.committed()
	size := c.liveSize

	out := Outcome{Kind: Resize, ID: c.id, Gesture: c.gestureID}
	out.Snapped = policy.SnapToEdgesAndGrid(current.X, current.Y, size.Width, size.Height, c.viewport())
	out.Collided = geometry.Collides(c.id, out.Snapped, size, c.store.Others(c.id), c.store.State())
	if out.Collided {
		c.log.Debug("resized panel overlaps a neighbour", "gesture", c.gestureID)
	}

	out.Final = model.Geometry{X: out.Snapped.X, Y: out.Snapped.Y, Width: size.Width, Height: size.Height}
	c.resizing = false
	err := c.store.Commit(ctx, c.id, out.Final)
	c.store.BringToFront(c.id)
	c.log.Debug("resize end", "gesture", c.gestureID, "width", size.Width, "height", size.Height)
	if err != nil {
		return out, fmt.Errorf("failed to commit resize of %s: %w", c.id, err)
	}
	return out, nil
}

// Cancel drops any in-flight gesture without committing.
func (c *Controller) Cancel() {
	if c.Active() {
		c.log.Debug("gesture cancelled", "gesture", c.gestureID, "kind", c.Kind())
	}
	c.dragging = false
	c.resizing = false
}
