package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestBoundsOf(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   Rect
	}{
		{"empty", nil, Rect{}},
		{"single", []Point{{3, 4}}, Rect{X: 3, Y: 4}},
		{"stroke", []Point{{0, 0}, {10, 0}, {10, 10}}, Rect{0, 0, 10, 10}},
		{"negative", []Point{{-5, 2}, {5, -2}}, Rect{-5, -2, 10, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BoundsOf(tt.points); got != tt.want {
				t.Errorf("BoundsOf = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRect_Intersects(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	if !a.Intersects(Rect{5, 5, 10, 10}) {
		t.Error("overlapping rects should intersect")
	}
	if !a.Intersects(Rect{X: 5, Y: 5}) {
		t.Error("zero-size rect inside a should intersect")
	}
	if a.Intersects(Rect{11, 11, 2, 2}) {
		t.Error("disjoint rects should not intersect")
	}
}

func TestResample_InsertsIntermediatePoints(t *testing.T) {
	got := Resample([]Point{{0, 0}, {10, 0}}, 2)
	if len(got) != 6 {
		t.Fatalf("len = %d, want 6 (%v)", len(got), got)
	}
	for i := 1; i < len(got); i++ {
		if d := Distance(got[i-1], got[i]); d > 2+eps {
			t.Errorf("gap %d = %v, want <= 2", i, d)
		}
	}
	if got[0] != (Point{0, 0}) || got[len(got)-1] != (Point{10, 0}) {
		t.Errorf("endpoints changed: %v", got)
	}
}

func TestResample_DoesNotModifyInput(t *testing.T) {
	in := []Point{{0, 0}, {10, 0}}
	_ = Resample(in, 1)
	if len(in) != 2 || in[1] != (Point{10, 0}) {
		t.Errorf("input mutated: %v", in)
	}
}

func TestChaikin(t *testing.T) {
	in := []Point{{0, 0}, {4, 0}, {4, 4}}
	got := Chaikin(in, 1)
	want := []Point{{0, 0}, {1, 0}, {3, 0}, {4, 1}, {4, 3}, {4, 4}}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !near(got[i].X, want[i].X) || !near(got[i].Y, want[i].Y) {
			t.Errorf("point %d = %v, want %v", i, got[i], want[i])
		}
	}

	two := Chaikin(in, 2)
	if len(two) != 2*len(got) {
		t.Errorf("second pass len = %d, want %d", len(two), 2*len(got))
	}
}

func TestChaikin_ShortInputUnchanged(t *testing.T) {
	in := []Point{{1, 1}, {2, 2}}
	got := Chaikin(in, 2)
	if len(got) != 2 || got[0] != in[0] || got[1] != in[1] {
		t.Errorf("Chaikin(two points) = %v", got)
	}
}

func TestCatmullRomPath_PassesThroughPoints(t *testing.T) {
	pts := []Point{{0, 0}, {10, 5}, {20, 0}, {30, 10}}
	path := CatmullRomPath(pts)
	if len(path) != len(pts) {
		t.Fatalf("len(path) = %d, want %d", len(path), len(pts))
	}
	ends := PathPoints(path)
	for i, p := range pts {
		if !near(ends[i].X, p.X) || !near(ends[i].Y, p.Y) {
			t.Errorf("end %d = %v, want %v", i, ends[i], p)
		}
	}
}

func TestPathToSVG(t *testing.T) {
	got := PathToSVG(PolylinePath([]Point{{0, 0}, {1.5, -2.25}}))
	want := "M 0 0 L 1.5 -2.25"
	if got != want {
		t.Errorf("PathToSVG = %q, want %q", got, want)
	}
}

func TestResizeRect(t *testing.T) {
	start := Rect{0, 0, 100, 100}
	tests := []struct {
		name   string
		handle Handle
		dx, dy float64
		want   Rect
	}{
		{"se grow", HandleSE, 20, 20, Rect{0, 0, 120, 120}},
		{"nw grow", HandleNW, -10, -10, Rect{-10, -10, 110, 110}},
		{"nw clamp", HandleNW, 90, 90, Rect{60, 60, 40, 40}},
		{"e clamp", HandleE, -200, 0, Rect{0, 0, 40, 100}},
		{"n only height", HandleN, 50, 30, Rect{0, 30, 100, 70}},
		{"w clamp keeps right edge", HandleW, 500, 0, Rect{60, 0, 40, 100}},
		{"sw", HandleSW, 10, 10, Rect{10, 0, 90, 110}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResizeRect(start, tt.handle, tt.dx, tt.dy, MinObjectSize); got != tt.want {
				t.Errorf("ResizeRect = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResizeRect_NeverBelowMinimum(t *testing.T) {
	start := Rect{10, 10, 50, 45}
	for _, h := range Handles {
		for _, d := range []float64{-1000, -60, -1, 0, 1, 60, 1000} {
			r := ResizeRect(start, h, d, d, MinObjectSize)
			if r.Width < MinObjectSize || r.Height < MinObjectSize {
				t.Fatalf("handle %s delta %v gave %+v", h, d, r)
			}
		}
	}
}

func TestScalePoints(t *testing.T) {
	from := Rect{0, 0, 10, 10}
	to := Rect{0, 0, 20, 5}
	got := ScalePoints([]Point{{0, 0}, {10, 0}, {10, 10}}, from, to)
	want := []Point{{0, 0}, {20, 0}, {20, 5}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScalePoints_DegenerateAxis(t *testing.T) {
	got := ScalePoints([]Point{{0, 5}, {10, 5}}, Rect{0, 5, 10, 0}, Rect{0, 5, 20, 1})
	if got[1] != (Point{20, 5}) || got[0].Y != 5 {
		t.Errorf("ScalePoints = %v", got)
	}
}

func TestMatrix_InvertRoundTrip(t *testing.T) {
	m := Translate(30, -12).Multiply(Scale(2, 2))
	p := Point{7, 9}
	back := m.Invert().Apply(m.Apply(p))
	if !near(back.X, p.X) || !near(back.Y, p.Y) {
		t.Errorf("round trip = %v, want %v", back, p)
	}
}

func TestParseHandle(t *testing.T) {
	if h, err := ParseHandle("se"); err != nil || h != HandleSE {
		t.Errorf("ParseHandle(se) = %q, %v", h, err)
	}
	if _, err := ParseHandle("middle"); err == nil {
		t.Error("expected error for unknown handle")
	}
}
