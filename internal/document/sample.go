package document

import (
	"math"

	"github.com/inamate/canvasboard/internal/geometry"
	"github.com/inamate/canvasboard/internal/viewport"
)

// NewSampleScene builds the welcome board shown to first-time users: a note, a
// couple of shapes, a heading, a phone frame and a short squiggle.
func NewSampleScene() *Scene {
	z := 0
	nextZ := func() int { z++; return z }

	heading := NewText(geometry.Point{X: 80, Y: 40}, nextZ())
	if t, ok := heading.Text(); ok {
		t.Content = "Welcome to your board"
		t.FontSize = 32
		t.FontWeight = "bold"
	}
	heading.Width = 480

	note := NewNote(geometry.Point{X: 80, Y: 140}, nextZ())
	if n, ok := note.Note(); ok {
		n.Content = "Double-click a note to edit it. Drag to move, shift-click to select several."
	}

	rect := NewShape(geometry.Point{X: 320, Y: 140}, ShapeRectangle, nextZ())
	circle := NewShape(geometry.Point{X: 470, Y: 140}, ShapeCircle, nextZ())
	circle.Color = "#fca5a5"
	triangle := NewShape(geometry.Point{X: 620, Y: 140}, ShapeTriangle, nextZ())
	triangle.Color = "#86efac"

	iphone, _ := FramePresetByKey("iphone")
	frame := NewFrame(geometry.Point{X: 900, Y: 300}, iphone, nextZ())

	wave := make([]geometry.Point, 0, 40)
	for i := 0; i < 40; i++ {
		x := 80 + float64(i)*12
		wave = append(wave, geometry.Point{X: x, Y: 380 + 20*math.Sin(float64(i)/3)})
	}
	squiggle := NewDrawing(wave, DefaultPen().Style(), "#6366f1", nextZ())

	return &Scene{
		Objects:  []Object{heading, note, rect, circle, triangle, frame, squiggle},
		Viewport: viewport.Identity(),
	}
}
