// Package viewport maps between screen pixels and scene coordinates.
//
// The mapping is a pan offset (screen pixels) plus a uniform scale:
//
//	scene  = (screen - pan) / scale
//	screen = scene * scale + pan
package viewport

import (
	"github.com/inamate/canvasboard/internal/geometry"
)

const (
	MinScale = 0.1
	MaxScale = 3.0

	// Per wheel tick zoom factors.
	ZoomOutFactor = 0.9
	ZoomInFactor  = 1.1
)

// Viewport is the pan offset + zoom of one scene. It is persisted with the scene.
type Viewport struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Identity returns a viewport with no pan and scale 1.
func Identity() Viewport {
	return Viewport{Scale: 1}
}

// ClampScale bounds s to [MinScale, MaxScale]. Non-positive values reset to 1.
func ClampScale(s float64) float64 {
	if s <= 0 {
		return 1
	}
	return min(MaxScale, max(MinScale, s))
}

// Normalize returns v with a valid scale.
func (v Viewport) Normalize() Viewport {
	v.Scale = ClampScale(v.Scale)
	return v
}

// Offset returns the pan offset as a point.
func (v Viewport) Offset() geometry.Point {
	return geometry.Point{X: v.X, Y: v.Y}
}

// ToScene converts a screen point to scene space.
func (v Viewport) ToScene(screen geometry.Point) geometry.Point {
	s := ClampScale(v.Scale)
	return geometry.Point{
		X: (screen.X - v.X) / s,
		Y: (screen.Y - v.Y) / s,
	}
}

// ToScreen converts a scene point to screen space.
func (v Viewport) ToScreen(scene geometry.Point) geometry.Point {
	s := ClampScale(v.Scale)
	return geometry.Point{
		X: scene.X*s + v.X,
		Y: scene.Y*s + v.Y,
	}
}

// DeltaToScene converts a screen-space movement into a scene-space movement.
func (v Viewport) DeltaToScene(dx, dy float64) (float64, float64) {
	s := ClampScale(v.Scale)
	return dx / s, dy / s
}

// RectToScreen maps a scene rect to screen space.
func (v Viewport) RectToScreen(r geometry.Rect) geometry.Rect {
	s := ClampScale(v.Scale)
	return geometry.Rect{
		X:      r.X*s + v.X,
		Y:      r.Y*s + v.Y,
		Width:  r.Width * s,
		Height: r.Height * s,
	}
}

// Zoom multiplies the scale by factor, clamped. When anchor is non-nil the scene
// point under that screen position stays under it after zooming.
func (v Viewport) Zoom(factor float64, anchor *geometry.Point) Viewport {
	next := v
	next.Scale = ClampScale(ClampScale(v.Scale) * factor)
	if anchor != nil {
		scenePt := v.ToScene(*anchor)
		next.X = anchor.X - scenePt.X*next.Scale
		next.Y = anchor.Y - scenePt.Y*next.Scale
	}
	return next
}

// Pan moves the view by a screen-space delta. There is no scale correction;
// panning is a screen-space drag.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.X += dx
	v.Y += dy
	return v
}

// Matrix returns the scene-to-screen transform.
func (v Viewport) Matrix() geometry.Matrix2D {
	s := ClampScale(v.Scale)
	return geometry.Translate(v.X, v.Y).Multiply(geometry.Scale(s, s))
}

// VisibleSceneRect returns the scene-space area shown in a screen of the given size.
func (v Viewport) VisibleSceneRect(screenW, screenH float64) geometry.Rect {
	tl := v.ToScene(geometry.Point{})
	br := v.ToScene(geometry.Point{X: screenW, Y: screenH})
	return geometry.RectFromPoints(tl, br)
}

// WheelEvent is a wheel or trackpad scroll gesture in screen space.
type WheelEvent struct {
	DeltaX   float64 `json:"deltaX"`
	DeltaY   float64 `json:"deltaY"`
	ScreenX  float64 `json:"screenX"`
	ScreenY  float64 `json:"screenY"`
	Modifier bool    `json:"modifier"` // ctrl/cmd held, or a pinch gesture
}

// IsZoom reports whether the gesture zooms rather than pans. A mouse wheel only
// ever reports a vertical delta; a trackpad two-finger drag reports a horizontal
// or combined one.
func (ev WheelEvent) IsZoom() bool {
	return ev.Modifier || (ev.DeltaY != 0 && ev.DeltaX == 0)
}

// Wheel applies the wheel policy: a modifier-held gesture or a purely vertical
// delta zooms by a fixed per-tick factor around the pointer; an unmodified
// horizontal or combined gesture pans by the raw delta.
func (v Viewport) Wheel(ev WheelEvent) Viewport {
	if ev.IsZoom() {
		factor := ZoomInFactor
		if ev.DeltaY > 0 {
			factor = ZoomOutFactor
		}
		anchor := geometry.Point{X: ev.ScreenX, Y: ev.ScreenY}
		return v.Zoom(factor, &anchor)
	}
	return v.Pan(-ev.DeltaX, -ev.DeltaY)
}
