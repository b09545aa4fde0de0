package viewport

import (
	"math"
	"testing"

	"github.com/inamate/canvasboard/internal/geometry"
)

func closeTo(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestToSceneToScreen_RoundTrip(t *testing.T) {
	v := Viewport{X: 40, Y: -20, Scale: 2}
	screen := geometry.Point{X: 140, Y: 80}

	scene := v.ToScene(screen)
	if scene != (geometry.Point{X: 50, Y: 50}) {
		t.Fatalf("ToScene = %v, want {50 50}", scene)
	}
	if back := v.ToScreen(scene); back != screen {
		t.Errorf("ToScreen = %v, want %v", back, screen)
	}
}

func TestZoom_Clamps(t *testing.T) {
	v := Identity()
	for i := 0; i < 100; i++ {
		v = v.Zoom(ZoomInFactor, nil)
	}
	if v.Scale != MaxScale {
		t.Errorf("scale = %v, want %v", v.Scale, MaxScale)
	}
	for i := 0; i < 100; i++ {
		v = v.Zoom(ZoomOutFactor, nil)
	}
	if v.Scale != MinScale {
		t.Errorf("scale = %v, want %v", v.Scale, MinScale)
	}
}

func TestZoom_KeepsAnchorFixed(t *testing.T) {
	v := Viewport{X: 10, Y: 10, Scale: 1}
	anchor := geometry.Point{X: 200, Y: 150}
	before := v.ToScene(anchor)

	z := v.Zoom(1.1, &anchor)
	after := z.ToScene(anchor)
	if !closeTo(before.X, after.X) || !closeTo(before.Y, after.Y) {
		t.Errorf("anchor drifted from %v to %v", before, after)
	}
}

func TestPan_IsScreenSpace(t *testing.T) {
	v := Viewport{Scale: 2}.Pan(10, -5)
	if v.X != 10 || v.Y != -5 || v.Scale != 2 {
		t.Errorf("Pan = %+v", v)
	}
}

func TestWheel(t *testing.T) {
	tests := []struct {
		name      string
		ev        WheelEvent
		wantScale float64
		wantX     float64
		wantY     float64
	}{
		{"mouse wheel down zooms out", WheelEvent{DeltaY: 100}, 0.9, 0, 0},
		{"mouse wheel up zooms in", WheelEvent{DeltaY: -100}, 1.1, 0, 0},
		{"pinch zooms", WheelEvent{DeltaY: 3, Modifier: true}, 0.9, 0, 0},
		{"horizontal pans", WheelEvent{DeltaX: 30}, 1, -30, 0},
		{"combined pans", WheelEvent{DeltaX: 5, DeltaY: 12}, 1, -5, -12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Identity().Wheel(tt.ev)
			if !closeTo(got.Scale, tt.wantScale) || got.X != tt.wantX || got.Y != tt.wantY {
				t.Errorf("Wheel = %+v, want scale %v pan (%v,%v)", got, tt.wantScale, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestVisibleSceneRect(t *testing.T) {
	v := Viewport{X: -100, Y: -50, Scale: 2}
	r := v.VisibleSceneRect(800, 600)
	want := geometry.Rect{X: 50, Y: 25, Width: 400, Height: 300}
	if r != want {
		t.Errorf("VisibleSceneRect = %+v, want %+v", r, want)
	}
}

func TestMatrix_MatchesToScreen(t *testing.T) {
	v := Viewport{X: 12, Y: 7, Scale: 1.5}
	p := geometry.Point{X: 3, Y: -4}
	if got, want := v.Matrix().Apply(p), v.ToScreen(p); !closeTo(got.X, want.X) || !closeTo(got.Y, want.Y) {
		t.Errorf("Matrix().Apply = %v, want %v", got, want)
	}
}
