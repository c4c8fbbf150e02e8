package geometry

import (
	"testing"

	"github.com/Gaurav-Gosain/dashpanel/internal/model"
)

var desktop = model.Size{Width: 1920, Height: 1080}

func TestSnapToEdgesAndGrid(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name         string
		x, y, w, h   int
		viewport     model.Size
		wantX, wantY int
	}{
		{name: "near origin clamps to zero", x: 3, y: 3, w: 200, h: 100, viewport: desktop, wantX: 0, wantY: 0},
		{name: "right edge clamp", x: 1717, y: 5, w: 200, h: 100, viewport: desktop, wantX: 1720, wantY: 0},
		{name: "on grid away from edges", x: 500, y: 400, w: 200, h: 100, viewport: desktop, wantX: 500, wantY: 400},
		{name: "half rounds up", x: 505, y: 405, w: 200, h: 100, viewport: desktop, wantX: 510, wantY: 410},
		{name: "below half rounds down", x: 504, y: 404, w: 200, h: 100, viewport: desktop, wantX: 500, wantY: 400},
		{name: "negative half rounds toward positive", x: -7, y: -20, w: 200, h: 100, viewport: desktop, wantX: 0, wantY: -20},
		{name: "bottom edge clamp", x: 100, y: 968, w: 200, h: 100, viewport: desktop, wantX: 100, wantY: 980},
		{name: "right edge wins over left", x: 3, y: 300, w: 200, h: 100, viewport: model.Size{Width: 210, Height: 1080}, wantX: 10, wantY: 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.SnapToEdgesAndGrid(tt.x, tt.y, tt.w, tt.h, tt.viewport)
			if got.X != tt.wantX || got.Y != tt.wantY {
				t.Errorf("SnapToEdgesAndGrid(%d, %d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.x, tt.y, tt.w, tt.h, got.X, got.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestSnapToEdgesAndGridIdempotentOnGrid(t *testing.T) {
	p := DefaultPolicy()
	for x := 20; x <= 1600; x += 70 {
		for y := 20; y <= 900; y += 90 {
			gx := x - x%p.GridSize
			gy := y - y%p.GridSize
			got := p.SnapToEdgesAndGrid(gx, gy, 200, 100, desktop)
			if got.X != gx || got.Y != gy {
				t.Fatalf("SnapToEdgesAndGrid(%d, %d) = (%d, %d), want unchanged", gx, gy, got.X, got.Y)
			}
		}
	}
}

func TestCheckCollision(t *testing.T) {
	base := model.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}

	tests := []struct {
		name  string
		other model.Rect
		want  bool
	}{
		{name: "touching right edge", other: model.Rect{Left: 100, Top: 0, Right: 200, Bottom: 100}, want: false},
		{name: "touching bottom edge", other: model.Rect{Left: 0, Top: 100, Right: 100, Bottom: 200}, want: false},
		{name: "touching corner", other: model.Rect{Left: 100, Top: 100, Right: 200, Bottom: 200}, want: false},
		{name: "overlap by one", other: model.Rect{Left: 99, Top: 0, Right: 199, Bottom: 100}, want: true},
		{name: "contained", other: model.Rect{Left: 10, Top: 10, Right: 20, Bottom: 20}, want: true},
		{name: "identical", other: base, want: true},
		{name: "disjoint", other: model.Rect{Left: 300, Top: 300, Right: 400, Bottom: 400}, want: false},
		{name: "horizontal overlap only", other: model.Rect{Left: 50, Top: 150, Right: 150, Bottom: 250}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckCollision(base, tt.other); got != tt.want {
				t.Errorf("CheckCollision(%v, %v) = %v, want %v", base, tt.other, got, tt.want)
			}
			if got := CheckCollision(tt.other, base); got != tt.want {
				t.Errorf("CheckCollision(%v, %v) = %v, want %v (symmetry)", tt.other, base, got, tt.want)
			}
		})
	}
}

func TestFindNearestSnapPoints(t *testing.T) {
	p := DefaultPolicy()

	t.Run("right edge pulls onto neighbour left edge", func(t *testing.T) {
		state := model.PanelState{"b": {X: 300, Y: 30, Width: 200, Height: 100}}
		cur := model.Rect{Left: 90, Top: 30, Right: 290, Bottom: 130}
		sp := p.FindNearestSnapPoints(cur, []string{"b"}, state)
		if sp == nil {
			t.Fatal("expected a snap point")
		}
		if sp.Distance != 10 || sp.X == nil || *sp.X != 100 || sp.Y != nil {
			t.Errorf("got %+v, want distance 10 with x=100", sp)
		}
	})

	t.Run("first of equal candidates wins", func(t *testing.T) {
		state := model.PanelState{"a": {X: 0, Y: 0, Width: 100, Height: 100}}
		cur := model.Rect{Left: 105, Top: 105, Right: 305, Bottom: 205}
		sp := p.FindNearestSnapPoints(cur, []string{"a"}, state)
		if sp == nil || sp.X == nil || *sp.X != 100 || sp.Y != nil {
			t.Errorf("got %+v, want x=100 from the left/right pair", sp)
		}
	})

	t.Run("threshold is exclusive", func(t *testing.T) {
		state := model.PanelState{"b": {X: 320, Y: 30, Width: 200, Height: 100}}
		cur := model.Rect{Left: 100, Top: 500, Right: 300, Bottom: 600}
		if sp := p.FindNearestSnapPoints(cur, []string{"b"}, state); sp != nil {
			t.Errorf("got %+v, want nil at distance 20", sp)
		}
	})

	t.Run("panels without geometry are skipped", func(t *testing.T) {
		cur := model.Rect{Left: 0, Top: 0, Right: 200, Bottom: 100}
		if sp := p.FindNearestSnapPoints(cur, []string{"ghost"}, model.PanelState{}); sp != nil {
			t.Errorf("got %+v, want nil", sp)
		}
	})
}

func TestFindNearestSnapPointsDistanceBound(t *testing.T) {
	p := DefaultPolicy()
	state := model.PanelState{
		"a": {X: 200, Y: 200, Width: 200, Height: 100},
		"b": {X: 600, Y: 250, Width: 150, Height: 150},
	}
	others := []string{"a", "b"}

	for x := 0; x < 900; x += 7 {
		for y := 0; y < 600; y += 11 {
			cur := model.Rect{Left: x, Top: y, Right: x + 200, Bottom: y + 100}
			sp := p.FindNearestSnapPoints(cur, others, state)
			if sp != nil && sp.Distance >= p.MagneticThreshold {
				t.Fatalf("snap at (%d, %d) has distance %d, threshold %d", x, y, sp.Distance, p.MagneticThreshold)
			}
		}
	}
}

func TestApplySnapPoint(t *testing.T) {
	x := 40
	got := ApplySnapPoint(model.Point{X: 10, Y: 20}, &SnapPoint{Distance: 3, X: &x})
	if got != (model.Point{X: 40, Y: 20}) {
		t.Errorf("ApplySnapPoint = %+v, want {40 20}", got)
	}
	if got := ApplySnapPoint(model.Point{X: 1, Y: 2}, nil); got != (model.Point{X: 1, Y: 2}) {
		t.Errorf("ApplySnapPoint(nil) = %+v, want unchanged", got)
	}
}

func TestFindNonCollidingPosition(t *testing.T) {
	p := DefaultPolicy()
	size := model.Size{Width: 100, Height: 100}

	tests := []struct {
		name    string
		state   model.PanelState
		initial model.Point
		want    model.Point
	}{
		{
			name:    "free initial position is kept",
			state:   model.PanelState{"a": {X: 0, Y: 0, Width: 100, Height: 100}},
			initial: model.Point{X: 100, Y: 0},
			want:    model.Point{X: 100, Y: 0},
		},
		{
			name:    "right neighbour tried first",
			state:   model.PanelState{"a": {X: 0, Y: 0, Width: 100, Height: 100}},
			initial: model.Point{X: 95, Y: 0},
			want:    model.Point{X: 105, Y: 0},
		},
		{
			name:    "left when right is blocked",
			state:   model.PanelState{"a": {X: 195, Y: 0, Width: 100, Height: 100}},
			initial: model.Point{X: 100, Y: 0},
			want:    model.Point{X: 90, Y: 0},
		},
		{
			name: "fallback when every probe collides",
			state: model.PanelState{
				"a": {X: 0, Y: 0, Width: 100, Height: 100},
				"b": {X: 150, Y: 0, Width: 100, Height: 100},
			},
			initial: model.Point{X: 100, Y: 0},
			want:    model.Point{X: 120, Y: 20},
		},
		{
			name:    "self is ignored",
			state:   model.PanelState{"self": {X: 100, Y: 0, Width: 100, Height: 100}},
			initial: model.Point{X: 100, Y: 0},
			want:    model.Point{X: 100, Y: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			others := make([]string, 0, len(tt.state))
			for id := range tt.state {
				others = append(others, id)
			}
			got := p.FindNonCollidingPosition("self", tt.initial, size, others, tt.state)
			if got != tt.want {
				t.Errorf("FindNonCollidingPosition(%+v) = %+v, want %+v", tt.initial, got, tt.want)
			}
		})
	}
}

func TestCascade(t *testing.T) {
	p := DefaultPolicy()
	want := []model.Geometry{
		{X: 0, Y: 30, Width: 200, Height: 100},
		{X: 200, Y: 30, Width: 200, Height: 100},
		{X: 400, Y: 30, Width: 200, Height: 100},
		{X: 0, Y: 130, Width: 200, Height: 100},
	}
	for i, w := range want {
		if got := p.Cascade(i); got != w {
			t.Errorf("Cascade(%d) = %+v, want %+v", i, got, w)
		}
	}
}

func TestClampSize(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		in, want model.Size
	}{
		{model.Size{Width: 100, Height: 50}, model.Size{Width: 150, Height: 100}},
		{model.Size{Width: 700, Height: 500}, model.Size{Width: 600, Height: 400}},
		{model.Size{Width: 300, Height: 200}, model.Size{Width: 300, Height: 200}},
	}
	for _, tt := range tests {
		if got := p.ClampSize(tt.in); got != tt.want {
			t.Errorf("ClampSize(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
