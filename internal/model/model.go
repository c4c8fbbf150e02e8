// Package model defines the plain data types shared by the layout engine,
// its persistence layer and the views that render it.
//
// All coordinates are device-independent pixel units. The terminal view maps
// them onto cells; the desktop renderer uses them directly.
package model

import "slices"

// PanelID identifies a panel's content slot (e.g. "orderBook").
type PanelID = string

// Point is a top-left position.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Size is a width/height pair.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Rect is an axis-aligned rectangle with Left <= Right and Top <= Bottom.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width returns Right-Left.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns Bottom-Top.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Contains reports whether p lies inside r (right/bottom edges exclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}

// Geometry is the committed position and size of one panel.
type Geometry struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Rect converts the geometry to its bounding rectangle.
func (g Geometry) Rect() Rect {
	return Rect{Left: g.X, Top: g.Y, Right: g.X + g.Width, Bottom: g.Y + g.Height}
}

// Position returns the top-left corner.
func (g Geometry) Position() Point { return Point{X: g.X, Y: g.Y} }

// Size returns the width and height.
func (g Geometry) Size() Size { return Size{Width: g.Width, Height: g.Height} }

// At returns a copy of g moved to p.
func (g Geometry) At(p Point) Geometry {
	g.X, g.Y = p.X, p.Y
	return g
}

// Sized returns a copy of g with size s.
func (g Geometry) Sized(s Size) Geometry {
	g.Width, g.Height = s.Width, s.Height
	return g
}

// RectAt builds the rectangle a panel of size s would occupy at p.
func RectAt(p Point, s Size) Rect {
	return Rect{Left: p.X, Top: p.Y, Right: p.X + s.Width, Bottom: p.Y + s.Height}
}

// PanelState maps panel ids to their committed geometry.
type PanelState map[string]Geometry

// Clone returns an independent copy. A nil state clones to an empty map.
func (s PanelState) Clone() PanelState {
	out := make(PanelState, len(s))
	for id, g := range s {
		out[id] = g
	}
	return out
}

// Has reports whether id has geometry.
func (s PanelState) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// PanelOrder is the display order of panel ids.
type PanelOrder []string

// Clone returns an independent copy. A nil order clones to an empty slice.
func (o PanelOrder) Clone() PanelOrder {
	out := make(PanelOrder, len(o))
	copy(out, o)
	return out
}

// Contains reports whether id is present in the order.
func (o PanelOrder) Contains(id string) bool {
	return slices.Contains(o, id)
}

// ZIndexMap maps panel ids to their stacking value. Larger is on top.
type ZIndexMap map[string]int

// Max returns the largest z value, or 0 for an empty map.
func (z ZIndexMap) Max() int {
	m := 0
	for _, v := range z {
		if v > m {
			m = v
		}
	}
	return m
}

// Clone returns an independent copy.
func (z ZIndexMap) Clone() ZIndexMap {
	out := make(ZIndexMap, len(z))
	for id, v := range z {
		out[id] = v
	}
	return out
}

// Preset is a named snapshot of a full arrangement.
type Preset struct {
	Name  string     `json:"name" yaml:"name"`
	State PanelState `json:"state" yaml:"state"`
	Order PanelOrder `json:"order" yaml:"order"`
}

// Clone deep-copies the preset.
func (p Preset) Clone() Preset {
	return Preset{Name: p.Name, State: p.State.Clone(), Order: p.Order.Clone()}
}

// Snapshot is a read-only copy of the layout handed to views.
type Snapshot struct {
	State   PanelState `json:"state"`
	Order   PanelOrder `json:"order"`
	ZIndex  ZIndexMap  `json:"zIndex"`
	Visible []string   `json:"visible"`
}
