package geometry

import (
	"strconv"
	"strings"
)

// DefaultSpacing is the maximum gap, in scene units, between consecutive samples
// after Resample.
const DefaultSpacing = 2.0

// RenderIterations is how many Chaikin passes a stroke gets before it is drawn.
const RenderIterations = 2

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
type PathCommand []interface{}

// Resample returns points with intermediate samples linearly interpolated wherever
// two consecutive samples are farther apart than spacing. The input is not modified.
func Resample(points []Point, spacing float64) []Point {
	if len(points) < 2 || spacing <= 0 {
		return append([]Point(nil), points...)
	}

	out := make([]Point, 0, len(points))
	out = append(out, points[0])
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		d := Distance(prev, cur)
		if d > spacing {
			steps := int(d / spacing)
			for s := 1; s <= steps; s++ {
				t := float64(s) * spacing / d
				if t >= 1 {
					break
				}
				out = append(out, Lerp(prev, cur, t))
			}
		}
		out = append(out, cur)
	}
	return out
}

// Chaikin applies corner cutting. Each pass replaces every segment (p0, p1) with
// the points at 1/4 and 3/4 along it; the first and last points are kept so the
// stroke still starts and ends where the pointer did.
func Chaikin(points []Point, iterations int) []Point {
	out := append([]Point(nil), points...)
	if len(points) < 3 {
		return out
	}

	for it := 0; it < iterations; it++ {
		next := make([]Point, 0, 2*len(out))
		next = append(next, out[0])
		for i := 0; i < len(out)-1; i++ {
			p0, p1 := out[i], out[i+1]
			next = append(next, Lerp(p0, p1, 0.25), Lerp(p0, p1, 0.75))
		}
		next = append(next, out[len(out)-1])
		out = next
	}
	return out
}

// SmoothStroke is the render transform applied to raw stroke samples.
func SmoothStroke(points []Point) []Point {
	return Chaikin(Resample(points, DefaultSpacing), RenderIterations)
}

// PolylinePath emits M/L commands through points. A single point becomes a zero
// length segment so round caps still draw a dot.
func PolylinePath(points []Point) []PathCommand {
	if len(points) == 0 {
		return nil
	}

	path := make([]PathCommand, 0, len(points)+1)
	path = append(path, PathCommand{"M", points[0].X, points[0].Y})
	if len(points) == 1 {
		return append(path, PathCommand{"L", points[0].X, points[0].Y})
	}
	for _, p := range points[1:] {
		path = append(path, PathCommand{"L", p.X, p.Y})
	}
	return path
}

// CatmullRomPath converts points into cubic bezier segments of a uniform
// Catmull-Rom spline that passes through every point.
func CatmullRomPath(points []Point) []PathCommand {
	if len(points) < 3 {
		return PolylinePath(points)
	}

	path := make([]PathCommand, 0, len(points))
	path = append(path, PathCommand{"M", points[0].X, points[0].Y})
	for i := 0; i < len(points)-1; i++ {
		p0 := points[max(i-1, 0)]
		p1 := points[i]
		p2 := points[i+1]
		p3 := points[min(i+2, len(points)-1)]

		c1 := p1.Add(p2.Sub(p0).Mul(1.0 / 6))
		c2 := p2.Sub(p3.Sub(p1).Mul(1.0 / 6))
		path = append(path, PathCommand{"C", c1.X, c1.Y, c2.X, c2.Y, p2.X, p2.Y})
	}
	return path
}

// PathToSVG serializes path commands into an SVG path "d" attribute.
func PathToSVG(path []PathCommand) string {
	var b strings.Builder
	for i, cmd := range path {
		if len(cmd) == 0 {
			continue
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		op, _ := cmd[0].(string)
		b.WriteString(op)
		for _, v := range cmd[1:] {
			b.WriteByte(' ')
			b.WriteString(formatCoord(ToFloat64(v)))
		}
	}
	return b.String()
}

// PathPoints returns the on-curve end points of M/L/C commands, in order.
func PathPoints(path []PathCommand) []Point {
	pts := make([]Point, 0, len(path))
	for _, cmd := range path {
		if len(cmd) < 3 {
			continue
		}
		n := len(cmd)
		pts = append(pts, Point{ToFloat64(cmd[n-2]), ToFloat64(cmd[n-1])})
	}
	return pts
}

// ToFloat64 converts an interface{} to float64.
func ToFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
