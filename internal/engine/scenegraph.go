package engine

import (
	"slices"

	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/geometry"
)

// Hit-test tolerances.
const (
	// EraserRadius is the scene distance within which a stroke point is erased.
	EraserRadius = 12.0
	// StrokeHitRadius is the scene distance within which a click selects a stroke.
	StrokeHitRadius = 12.0
	// HandleHitSlop is the screen distance within which a click grabs a handle.
	HandleHitSlop = 8.0
)

// paintOrder returns pointers into e.objects sorted back to front. Objects with
// equal zIndex keep insertion order.
func (e *Engine) paintOrder() []*document.Object {
	order := make([]*document.Object, len(e.objects))
	for i := range e.objects {
		order[i] = &e.objects[i]
	}
	slices.SortStableFunc(order, func(a, b *document.Object) int {
		return a.ZIndex - b.ZIndex
	})
	return order
}

// find returns the live object with id, or nil.
func (e *Engine) find(id string) *document.Object {
	if i := e.indexOf(id); i >= 0 {
		return &e.objects[i]
	}
	return nil
}

func (e *Engine) indexOf(id string) int {
	return slices.IndexFunc(e.objects, func(o document.Object) bool { return o.ID == id })
}

func (e *Engine) maxZ() int {
	return document.MaxZIndex(e.objects)
}

// HitTest returns the id of the topmost object under the screen point, or "".
func (e *Engine) HitTest(x, y float64) string {
	return e.hitObject(e.viewport.ToScene(geometry.Point{X: x, Y: y}))
}

// hitObject finds the topmost object at a scene point. Strokes are hit within
// StrokeHitRadius of any sample; everything else by its bounds.
func (e *Engine) hitObject(p geometry.Point) string {
	order := e.paintOrder()
	for i := len(order) - 1; i >= 0; i-- {
		obj := order[i]
		if obj.IsDrawing() {
			if strokeNear(obj, p, StrokeHitRadius) {
				return obj.ID
			}
			continue
		}
		if obj.Bounds().Contains(p) {
			return obj.ID
		}
	}
	return ""
}

// hitHandle finds a resize handle of a selected object at a screen point.
// Handles only exist while the select tool is active.
func (e *Engine) hitHandle(screen geometry.Point) (string, geometry.Handle, bool) {
	if e.tool != ToolSelect {
		return "", geometry.HandleNone, false
	}
	order := e.paintOrder()
	for i := len(order) - 1; i >= 0; i-- {
		obj := order[i]
		if !e.selected[obj.ID] {
			continue
		}
		positions := geometry.HandlePositions(obj.Bounds())
		for _, h := range geometry.Handles {
			c := e.viewport.ToScreen(positions[h])
			if abs(c.X-screen.X) <= HandleHitSlop && abs(c.Y-screen.Y) <= HandleHitSlop {
				return obj.ID, h, true
			}
		}
	}
	return "", geometry.HandleNone, false
}

// strokesNear returns the ids of every drawing with a sample within radius of p.
func (e *Engine) strokesNear(p geometry.Point, radius float64) []string {
	var ids []string
	for i := range e.objects {
		if e.objects[i].IsDrawing() && strokeNear(&e.objects[i], p, radius) {
			ids = append(ids, e.objects[i].ID)
		}
	}
	return ids
}

// objectsIn returns the ids of every object whose bounds intersect box.
func (e *Engine) objectsIn(box geometry.Rect) []string {
	var ids []string
	for _, obj := range e.paintOrder() {
		if obj.Bounds().Intersects(box) {
			ids = append(ids, obj.ID)
		}
	}
	return ids
}

// SelectionBounds returns the box enclosing every selected object.
func (e *Engine) SelectionBounds() geometry.Rect {
	return e.boundsOf(func(o *document.Object) bool { return e.selected[o.ID] })
}

// ContentBounds returns the box enclosing every object in the scene.
func (e *Engine) ContentBounds() geometry.Rect {
	return e.boundsOf(func(*document.Object) bool { return true })
}

// boundsOf encloses the corners of every matching object, so zero-extent
// strokes still contribute.
func (e *Engine) boundsOf(match func(*document.Object) bool) geometry.Rect {
	var corners []geometry.Point
	for i := range e.objects {
		if !match(&e.objects[i]) {
			continue
		}
		b := e.objects[i].Bounds()
		corners = append(corners, b.Origin(), geometry.Point{X: b.X + b.Width, Y: b.Y + b.Height})
	}
	return geometry.BoundsOf(corners)
}

func strokeNear(obj *document.Object, p geometry.Point, radius float64) bool {
	d, ok := obj.Drawing()
	if !ok {
		return false
	}
	if !obj.Bounds().Inset(-radius).Contains(p) {
		return false
	}
	for _, q := range d.Points() {
		if geometry.Distance(p, q) <= radius {
			return true
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
