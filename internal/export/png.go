package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/inamate/canvasboard/internal/engine"
	"github.com/inamate/canvasboard/internal/geometry"
)

// PNG rasterizes frames with an anti-aliasing vector rasterizer. Text uses a
// fixed 7x13 bitmap face regardless of font size.
type PNG struct{}

func (PNG) ContentType() string { return "image/png" }
func (PNG) Extension() string   { return "png" }

func (PNG) Capture(ctx context.Context, f *engine.Frame) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, h := int(math.Ceil(f.Width)), int(math.Ceil(f.Height))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("rasterize frame: empty size %dx%d", w, h)
	}

	r := newRaster(w, h)
	paintFrame(r, f)

	var buf bytes.Buffer
	if err := png.Encode(&buf, r.dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

type raster struct {
	dst *image.RGBA
	z   *vector.Rasterizer
}

func newRaster(w, h int) *raster {
	return &raster{
		dst: image.NewRGBA(image.Rect(0, 0, w, h)),
		z:   vector.NewRasterizer(w, h),
	}
}

// fill paints the union of polys. The rasterizer accumulates signed coverage,
// so overlapping polygons must share one winding direction.
func (r *raster) fill(polys [][]geometry.Point, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	b := r.dst.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	r.z.DrawOp = draw.Over
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		r.z.MoveTo(float32(poly[0].X), float32(poly[0].Y))
		for _, p := range poly[1:] {
			r.z.LineTo(float32(p.X), float32(p.Y))
		}
		r.z.ClosePath()
	}
	r.z.Draw(r.dst, b, image.NewUniform(c), image.Point{})
}

func (r *raster) fillRect(rect geometry.Rect, c color.NRGBA) {
	r.fill([][]geometry.Point{rectPolygon(rect)}, c)
}

func (r *raster) fillPolygon(pts []geometry.Point, c color.NRGBA) {
	r.fill([][]geometry.Point{pts}, c)
}

func (r *raster) fillEllipse(rect geometry.Rect, c color.NRGBA) {
	center := rect.Center()
	r.fill([][]geometry.Point{ellipse(center, rect.Width/2, rect.Height/2)}, c)
}

func (r *raster) strokeRect(rect geometry.Rect, c color.NRGBA, width float64) {
	o := rect.Inset(-width / 2)
	i := rect.Inset(width / 2)
	r.fill([][]geometry.Point{
		rectPolygon(geometry.Rect{X: o.X, Y: o.Y, Width: o.Width, Height: width}),
		rectPolygon(geometry.Rect{X: o.X, Y: i.Y + i.Height, Width: o.Width, Height: width}),
		rectPolygon(geometry.Rect{X: o.X, Y: o.Y, Width: width, Height: o.Height}),
		rectPolygon(geometry.Rect{X: i.X + i.Width, Y: o.Y, Width: width, Height: o.Height}),
	}, c)
}

func (r *raster) strokePaths(paths [][]geometry.Point, st strokeStyle) {
	var polys [][]geometry.Point
	for _, path := range paths {
		for _, run := range dashPolyline(path, st.dash) {
			polys = append(polys, strokeOutline(run, st.width/2, st.lineCap)...)
		}
	}
	r.fill(polys, st.color)
}

func (r *raster) drawText(rect geometry.Rect, text string, c color.NRGBA, _ float64) {
	if text == "" || c.A == 0 {
		return
	}
	face := basicfont.Face7x13
	clip := image.Rect(
		int(math.Floor(rect.X)), int(math.Floor(rect.Y)),
		int(math.Ceil(rect.X+rect.Width)), int(math.Ceil(rect.Y+rect.Height)),
	)
	dst, ok := r.dst.SubImage(clip).(*image.RGBA)
	if !ok || dst.Bounds().Empty() {
		return
	}

	maxChars := int((rect.Width - 2*textPadding) / float64(face.Advance))
	lineHeight := float64(face.Height)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	y := rect.Y + textPadding + float64(face.Ascent)
	for _, line := range wrapText(text, maxChars) {
		if y-float64(face.Ascent) > rect.Y+rect.Height {
			break
		}
		d.Dot = fixed.P(int(rect.X+textPadding), int(y))
		d.DrawString(line)
		y += lineHeight
	}
}

func (r *raster) drawLabel(at geometry.Point, text string, c color.NRGBA) {
	d := &font.Drawer{
		Dst:  r.dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(at.X), int(at.Y)),
	}
	d.DrawString(text)
}

func (r *raster) drawImage(rect geometry.Rect, img image.Image) {
	target := image.Rect(
		int(math.Round(rect.X)), int(math.Round(rect.Y)),
		int(math.Round(rect.X+rect.Width)), int(math.Round(rect.Y+rect.Height)),
	)
	if target.Empty() {
		return
	}
	draw.CatmullRom.Scale(r.dst, target, img, img.Bounds(), draw.Over, nil)
}

func rectPolygon(r geometry.Rect) []geometry.Point {
	return []geometry.Point{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
}

// ellipse traces an ellipse with decreasing angle, which matches the winding of
// the segment quads built by strokeOutline.
func ellipse(c geometry.Point, rx, ry float64) []geometry.Point {
	pts := make([]geometry.Point, 0, circleSteps)
	for i := 0; i < circleSteps; i++ {
		a := -2 * math.Pi * float64(i) / circleSteps
		pts = append(pts, geometry.Point{X: c.X + rx*math.Cos(a), Y: c.Y + ry*math.Sin(a)})
	}
	return pts
}

// strokeOutline builds the polygons covering a polyline of half-width hw: one
// quad per segment, discs at the joins and caps per lineCap.
func strokeOutline(pts []geometry.Point, hw float64, lineCap string) [][]geometry.Point {
	if len(pts) == 0 || hw <= 0 {
		return nil
	}
	if len(pts) == 1 || allSame(pts) {
		return [][]geometry.Point{ellipse(pts[0], hw, hw)}
	}

	pts = append([]geometry.Point(nil), pts...)
	if lineCap == "square" {
		pts[0] = extend(pts[1], pts[0], hw)
		pts[len(pts)-1] = extend(pts[len(pts)-2], pts[len(pts)-1], hw)
	}

	var polys [][]geometry.Point
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		d := geometry.Distance(a, b)
		if d == 0 {
			continue
		}
		n := geometry.Point{X: -(b.Y - a.Y) / d * hw, Y: (b.X - a.X) / d * hw}
		polys = append(polys, []geometry.Point{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)})
	}

	from, to := 1, len(pts)-1
	if lineCap == "round" || lineCap == "" {
		from, to = 0, len(pts)
	}
	for i := from; i < to; i++ {
		polys = append(polys, ellipse(pts[i], hw, hw))
	}
	return polys
}

func extend(from, to geometry.Point, by float64) geometry.Point {
	d := geometry.Distance(from, to)
	if d == 0 {
		return to
	}
	return to.Add(to.Sub(from).Mul(by / d))
}

func allSame(pts []geometry.Point) bool {
	for _, p := range pts[1:] {
		if p != pts[0] {
			return false
		}
	}
	return true
}

// wrapText breaks text into lines of at most maxChars, on word boundaries
// where possible.
func wrapText(text string, maxChars int) []string {
	if maxChars < 1 {
		maxChars = 1
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, w := range words {
			for len(w) > maxChars {
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				lines = append(lines, w[:maxChars])
				w = w[maxChars:]
			}
			switch {
			case line == "":
				line = w
			case len(line)+1+len(w) <= maxChars:
				line += " " + w
			default:
				lines = append(lines, line)
				line = w
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
