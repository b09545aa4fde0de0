package geometry

import "fmt"

// MinObjectSize is the smallest width or height a resize may produce for
// anything but a freehand drawing.
const MinObjectSize = 40.0

// Handle identifies one of the eight resize grips around a selected object.
type Handle string

const (
	HandleNone Handle = ""
	HandleNW   Handle = "nw"
	HandleN    Handle = "n"
	HandleNE   Handle = "ne"
	HandleE    Handle = "e"
	HandleSE   Handle = "se"
	HandleS    Handle = "s"
	HandleSW   Handle = "sw"
	HandleW    Handle = "w"
)

// Handles lists the grips clockwise from the top-left corner.
var Handles = []Handle{HandleNW, HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW}

// ParseHandle validates a handle name.
func ParseHandle(s string) (Handle, error) {
	for _, h := range Handles {
		if string(h) == s {
			return h, nil
		}
	}
	return HandleNone, fmt.Errorf("unknown resize handle %q", s)
}

// MovesLeft reports whether dragging the handle moves the left edge.
func (h Handle) MovesLeft() bool { return h == HandleNW || h == HandleW || h == HandleSW }

// MovesRight reports whether dragging the handle moves the right edge.
func (h Handle) MovesRight() bool { return h == HandleNE || h == HandleE || h == HandleSE }

// MovesTop reports whether dragging the handle moves the top edge.
func (h Handle) MovesTop() bool { return h == HandleNW || h == HandleN || h == HandleNE }

// MovesBottom reports whether dragging the handle moves the bottom edge.
func (h Handle) MovesBottom() bool { return h == HandleSW || h == HandleS || h == HandleSE }

// ResizeRect applies a drag of (dx, dy) on handle to start. Each moving axis is
// clamped to minSize; when an edge that carries the origin moves, the origin is
// recomputed as start + (startSize - newSize) so the opposite edge stays put.
func ResizeRect(start Rect, h Handle, dx, dy, minSize float64) Rect {
	r := start

	switch {
	case h.MovesRight():
		r.Width = max(minSize, start.Width+dx)
	case h.MovesLeft():
		r.Width = max(minSize, start.Width-dx)
		r.X = start.X + (start.Width - r.Width)
	}

	switch {
	case h.MovesBottom():
		r.Height = max(minSize, start.Height+dy)
	case h.MovesTop():
		r.Height = max(minSize, start.Height-dy)
		r.Y = start.Y + (start.Height - r.Height)
	}

	return r
}

// ScalePoints remaps points from the from rect onto the to rect:
// to.origin + (p - from.origin) * (to.size / from.size), per axis. An axis with
// zero extent in from keeps scale 1 so straight strokes are never blown up.
func ScalePoints(points []Point, from, to Rect) []Point {
	sx, sy := 1.0, 1.0
	if from.Width > 0 {
		sx = to.Width / from.Width
	}
	if from.Height > 0 {
		sy = to.Height / from.Height
	}

	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{
			X: to.X + (p.X-from.X)*sx,
			Y: to.Y + (p.Y-from.Y)*sy,
		}
	}
	return out
}

// HandlePositions returns the center of each grip of r keyed by handle.
func HandlePositions(r Rect) map[Handle]Point {
	cx, cy := r.X+r.Width/2, r.Y+r.Height/2
	right, bottom := r.X+r.Width, r.Y+r.Height
	return map[Handle]Point{
		HandleNW: {r.X, r.Y},
		HandleN:  {cx, r.Y},
		HandleNE: {right, r.Y},
		HandleE:  {right, cy},
		HandleSE: {right, bottom},
		HandleS:  {cx, bottom},
		HandleSW: {r.X, bottom},
		HandleW:  {r.X, cy},
	}
}
