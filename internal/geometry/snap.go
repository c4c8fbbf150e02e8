package geometry

import (
	"math"
	"sort"

	"github.com/Gaurav-Gosain/dashpanel/internal/model"
)

// SnapPoint is a magnetic alignment candidate. Exactly one of X or Y is set.
type SnapPoint struct {
	Distance int
	X        *int
	Y        *int
}

// roundToGrid rounds v to the nearest multiple of grid, halves toward +inf.
func roundToGrid(v, grid int) int {
	if grid <= 0 {
		return v
	}
	return int(math.Floor(float64(v)/float64(grid)+0.5)) * grid
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// SnapToEdgesAndGrid rounds (x, y) onto the grid, then pulls the panel flush
// against any viewport edge it ends up within EdgeThreshold of. Right and
// bottom edges win over left and top when both apply.
func (p Policy) SnapToEdgesAndGrid(x, y, width, height int, viewport model.Size) model.Point {
	nx := roundToGrid(x, p.GridSize)
	ny := roundToGrid(y, p.GridSize)

	if abs(nx) < p.EdgeThreshold {
		nx = 0
	}
	if abs(ny) < p.EdgeThreshold {
		ny = 0
	}
	if abs(nx+width-viewport.Width) < p.EdgeThreshold {
		nx = viewport.Width - width
	}
	if abs(ny+height-viewport.Height) < p.EdgeThreshold {
		ny = viewport.Height - height
	}

	return model.Point{X: nx, Y: ny}
}

// CheckCollision reports whether a and b overlap with positive area.
// Rectangles that only share an edge do not collide.
func CheckCollision(a, b model.Rect) bool {
	return a.Left < b.Right && b.Left < a.Right &&
		a.Top < b.Bottom && b.Top < a.Bottom
}

// FindNearestSnapPoints scans the edges of every other panel with geometry
// and returns the closest alignment under MagneticThreshold, or nil.
// Candidates are collected per panel in the order right/left then
// bottom/top; the first of equally distant candidates wins.
func (p Policy) FindNearestSnapPoints(current model.Rect, others []string, state model.PanelState) *SnapPoint {
	var points []SnapPoint
	width := current.Width()
	height := current.Height()

	for _, id := range others {
		g, ok := state[id]
		if !ok {
			continue
		}
		other := g.Rect()

		if d := abs(current.Right - other.Left); d < p.MagneticThreshold {
			x := other.Left - width
			points = append(points, SnapPoint{Distance: d, X: &x})
		}
		if d := abs(current.Left - other.Right); d < p.MagneticThreshold {
			x := other.Right
			points = append(points, SnapPoint{Distance: d, X: &x})
		}
		if d := abs(current.Bottom - other.Top); d < p.MagneticThreshold {
			y := other.Top - height
			points = append(points, SnapPoint{Distance: d, Y: &y})
		}
		if d := abs(current.Top - other.Bottom); d < p.MagneticThreshold {
			y := other.Bottom
			points = append(points, SnapPoint{Distance: d, Y: &y})
		}
	}

	if len(points) == 0 {
		return nil
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Distance < points[j].Distance
	})
	return &points[0]
}

// ApplySnapPoint overrides the axes of pos that sp sets.
func ApplySnapPoint(pos model.Point, sp *SnapPoint) model.Point {
	if sp == nil {
		return pos
	}
	if sp.X != nil {
		pos.X = *sp.X
	}
	if sp.Y != nil {
		pos.Y = *sp.Y
	}
	return pos
}

// neighbourOffsets is the probe order: original, right, left, down, up,
// down-right, up-left, up-right, down-left (in grid steps).
var neighbourOffsets = [9][2]int{
	{0, 0},
	{1, 0},
	{-1, 0},
	{0, 1},
	{0, -1},
	{1, 1},
	{-1, -1},
	{1, -1},
	{-1, 1},
}

// Collides reports whether a panel of size at pos would overlap any of the
// other panels with geometry, ignoring id itself.
func Collides(id string, pos model.Point, size model.Size, others []string, state model.PanelState) bool {
	test := model.RectAt(pos, size)
	for _, otherID := range others {
		if otherID == id {
			continue
		}
		g, ok := state[otherID]
		if !ok {
			continue
		}
		if CheckCollision(test, g.Rect()) {
			return true
		}
	}
	return false
}

// FindNonCollidingPosition probes the initial position and its eight grid
// neighbours and returns the first free one. When every probe collides it
// falls back to two grid steps down-right of initial, which may still
// overlap.
func (p Policy) FindNonCollidingPosition(id string, initial model.Point, size model.Size, others []string, state model.PanelState) model.Point {
	for _, off := range neighbourOffsets {
		pos := model.Point{
			X: initial.X + off[0]*p.GridSize,
			Y: initial.Y + off[1]*p.GridSize,
		}
		if !Collides(id, pos, size, others, state) {
			return pos
		}
	}
	return model.Point{X: initial.X + 2*p.GridSize, Y: initial.Y + 2*p.GridSize}
}
