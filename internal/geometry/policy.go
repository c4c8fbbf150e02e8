// Package geometry implements the pure snapping and collision rules used by
// the panel layout engine. Nothing in this package holds state.
package geometry

import "github.com/Gaurav-Gosain/dashpanel/internal/model"

// Policy carries the layout constants. The zero value is not useful; start
// from DefaultPolicy and override fields from configuration.
type Policy struct {
	// GridSize is the snapping grid pitch.
	GridSize int
	// MagneticThreshold is the largest edge distance pulled into alignment
	// with a neighbouring panel (exclusive).
	MagneticThreshold int
	// EdgeThreshold is the distance from a viewport edge that snaps onto it
	// (exclusive).
	EdgeThreshold int

	MinWidth  int
	MinHeight int
	MaxWidth  int
	MaxHeight int

	DefaultWidth  int
	DefaultHeight int

	// TopOffset reserves room above the cascade for the control bar.
	TopOffset int
	// CascadeColumns is the number of columns in the default placement.
	CascadeColumns int
}

// DefaultPolicy returns the built-in layout constants.
func DefaultPolicy() Policy {
	return Policy{
		GridSize:          10,
		MagneticThreshold: 20,
		EdgeThreshold:     15,
		MinWidth:          150,
		MinHeight:         100,
		MaxWidth:          600,
		MaxHeight:         400,
		DefaultWidth:      200,
		DefaultHeight:     100,
		TopOffset:         30,
		CascadeColumns:    3,
	}
}

// DefaultSize returns the size assigned to newly placed panels.
func (p Policy) DefaultSize() model.Size {
	return model.Size{Width: p.DefaultWidth, Height: p.DefaultHeight}
}

// Cascade returns the default slot for the panel at index in the visible
// list: CascadeColumns per row, rows stacked below TopOffset.
func (p Policy) Cascade(index int) model.Geometry {
	cols := p.CascadeColumns
	if cols <= 0 {
		cols = 1
	}
	col := index % cols
	row := index / cols
	return model.Geometry{
		X:      col * p.DefaultWidth,
		Y:      p.TopOffset + row*p.DefaultHeight,
		Width:  p.DefaultWidth,
		Height: p.DefaultHeight,
	}
}

// ClampSize bounds s to the configured minimum and maximum. The engine never
// calls this; interactive resize surfaces do before handing sizes over.
func (p Policy) ClampSize(s model.Size) model.Size {
	return model.Size{
		Width:  clamp(s.Width, p.MinWidth, p.MaxWidth),
		Height: clamp(s.Height, p.MinHeight, p.MaxHeight),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
