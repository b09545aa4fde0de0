package engine

import (
	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/geometry"
	"github.com/inamate/canvasboard/internal/viewport"
)

// SmallObjectDamping scales single-object drags of notes and text.
const SmallObjectDamping = 0.5

// Button identifies the pointer button that started a gesture.
type Button int

const (
	ButtonPrimary Button = 0
	ButtonMiddle  Button = 1
)

// PointerEvent is a pointer sample in screen coordinates.
type PointerEvent struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Shift  bool    `json:"shift,omitempty"`
	Button Button  `json:"button,omitempty"`
}

func (ev PointerEvent) point() geometry.Point {
	return geometry.Point{X: ev.X, Y: ev.Y}
}

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureDrag
	gestureResize
	gestureMarquee
	gestureInk
	gestureErase
	gesturePan
)

// gesture is the transient state of one pointer-down..pointer-up sequence.
type gesture struct {
	kind  gestureKind
	last  geometry.Point // screen
	start geometry.Point // screen
	moved bool
	shift bool

	// drag, resize
	target   string
	narrow   bool
	recorded bool

	// resize
	handle      geometry.Handle
	startRect   geometry.Rect
	startPoints []geometry.Point

	// marquee
	origin geometry.Point // scene
	box    geometry.Rect

	// ink
	stroke []geometry.Point
}

// PointerDown starts a gesture according to the active tool.
func (e *Engine) PointerDown(ev PointerEvent) {
	screen := ev.point()
	scene := e.viewport.ToScene(screen)
	e.cancelGesture()

	if ev.Button == ButtonMiddle {
		e.gesture = gesture{kind: gesturePan, start: screen, last: screen}
		return
	}

	switch e.tool {
	case ToolSelect:
		e.pointerDownSelect(screen, scene, ev.Shift)
	case ToolNote, ToolShape, ToolText:
		e.place(scene)
	case ToolPen:
		e.gesture = gesture{kind: gestureInk, start: screen, last: screen, stroke: []geometry.Point{scene}}
		e.invalidate()
	case ToolEraser:
		e.gesture = gesture{kind: gestureErase, start: screen, last: screen}
		e.eraseAt(scene)
	case ToolFrame:
		if !e.pickerOpen {
			e.pickerOpen = true
			e.invalidate()
		}
	}
}

func (e *Engine) pointerDownSelect(screen, scene geometry.Point, shift bool) {
	base := gesture{start: screen, last: screen, shift: shift}

	if id, h, ok := e.hitHandle(screen); ok {
		obj := e.find(id)
		g := base
		g.kind = gestureResize
		g.target = id
		g.handle = h
		g.startRect = obj.Bounds()
		if d, ok := obj.Drawing(); ok {
			g.startPoints = append([]geometry.Point(nil), d.Points()...)
		}
		e.gesture = g
		return
	}

	if id := e.hitObject(scene); id != "" {
		g := base
		g.kind = gestureDrag
		g.target = id
		switch {
		case shift:
			e.toggleSelected(id)
			if !e.selected[id] {
				return
			}
		case e.selected[id] && len(e.selected) > 1:
			g.narrow = true
		default:
			e.selectOnly(id)
		}
		e.gesture = g
		return
	}

	if !shift {
		e.clearSelection()
	}
	g := base
	g.kind = gestureMarquee
	g.origin = scene
	g.box = geometry.Rect{X: scene.X, Y: scene.Y}
	e.gesture = g
	e.invalidate()
}

// PointerMove advances the active gesture.
func (e *Engine) PointerMove(ev PointerEvent) {
	screen := ev.point()
	g := &e.gesture
	if g.kind == gestureNone {
		return
	}
	delta := screen.Sub(g.last)
	if delta == (geometry.Point{}) && g.kind != gestureMarquee {
		return
	}
	g.last = screen
	g.moved = g.moved || screen != g.start
	scene := e.viewport.ToScene(screen)

	switch g.kind {
	case gestureDrag:
		e.drag(delta)
	case gestureResize:
		e.resize(screen)
	case gestureMarquee:
		g.box = geometry.RectFromPoints(g.origin, scene)
		e.invalidate()
	case gestureInk:
		if n := len(g.stroke); n == 0 || g.stroke[n-1] != scene {
			g.stroke = append(g.stroke, scene)
			e.invalidate()
		}
	case gestureErase:
		e.eraseAt(scene)
	case gesturePan:
		e.viewport = e.viewport.Pan(delta.X, delta.Y)
		e.changed(Change{Viewport: true})
	}
}

// PointerUp finishes the active gesture.
func (e *Engine) PointerUp(ev PointerEvent) {
	g := e.gesture
	e.gesture = gesture{}

	switch g.kind {
	case gestureDrag:
		if !g.moved && g.narrow {
			e.selectOnly(g.target)
		}
	case gestureMarquee:
		if g.moved {
			for _, id := range e.objectsIn(g.box) {
				e.addSelected(id)
			}
		}
	case gestureInk:
		e.commitStroke(g.stroke)
	case gestureNone:
		return
	}
	e.invalidate()
}

// drag translates the dragged object, or the whole selection when the target
// belongs to a multi-selection, by a screen delta converted to scene units.
func (e *Engine) drag(screenDelta geometry.Point) {
	g := &e.gesture
	target := e.find(g.target)
	if target == nil {
		return
	}
	if !g.recorded {
		e.saveToHistory()
		g.recorded = true
	}
	g.narrow = false

	dx, dy := e.viewport.DeltaToScene(screenDelta.X, screenDelta.Y)
	if len(e.selected) > 1 && e.selected[g.target] {
		for i := range e.objects {
			if e.selected[e.objects[i].ID] {
				e.objects[i].Translate(dx, dy)
			}
		}
	} else {
		if t := target.Type(); t == document.ObjectTypeNote || t == document.ObjectTypeText {
			dx *= SmallObjectDamping
			dy *= SmallObjectDamping
		}
		target.Translate(dx, dy)
	}
	e.changed(Change{Objects: true})
}

// resize recomputes the target's bounds from the gesture start, so rounding
// never accumulates across moves.
func (e *Engine) resize(screen geometry.Point) {
	g := &e.gesture
	obj := e.find(g.target)
	if obj == nil {
		return
	}
	if !g.recorded {
		e.saveToHistory()
		g.recorded = true
	}

	total := screen.Sub(g.start)
	dx, dy := e.viewport.DeltaToScene(total.X, total.Y)
	if obj.IsDrawing() {
		r := geometry.ResizeRect(g.startRect, g.handle, dx, dy, 1)
		obj.SetPoints(geometry.ScalePoints(g.startPoints, g.startRect, r))
	} else {
		obj.SetBounds(geometry.ResizeRect(g.startRect, g.handle, dx, dy, geometry.MinObjectSize))
	}
	e.changed(Change{Objects: true})
}

// commitStroke appends a finished stroke. Strokes with fewer than two samples
// are discarded.
func (e *Engine) commitStroke(points []geometry.Point) {
	if len(points) < 2 {
		return
	}
	e.saveToHistory()
	e.objects = append(e.objects, document.NewDrawing(points, e.penStyle, e.inkColor, e.maxZ()+1))
	e.changed(Change{Objects: true})
}

// eraseAt removes every stroke with a sample within EraserRadius of p. The first
// deletion of a gesture records one history entry for the whole gesture.
func (e *Engine) eraseAt(p geometry.Point) {
	ids := e.strokesNear(p, EraserRadius)
	if len(ids) == 0 {
		return
	}
	if !e.gesture.recorded {
		e.saveToHistory()
		e.gesture.recorded = true
	}
	e.remove(ids)
}

// Wheel applies a wheel or trackpad gesture to the viewport.
func (e *Engine) Wheel(ev viewport.WheelEvent) {
	next := e.viewport.Wheel(ev)
	if next != e.viewport {
		e.viewport = next
		e.changed(Change{Viewport: true})
	}
}
