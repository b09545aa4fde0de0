package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/engine"
	"github.com/inamate/canvasboard/internal/geometry"
)

const (
	textPadding = 8.0
	labelColor  = "#6b7280"
	frameBorder = "#9ca3af"
	noteInk     = "#1f2937"

	curveSteps  = 12
	circleSteps = 48
)

// strokeStyle is a resolved ink stroke in output space.
type strokeStyle struct {
	color   color.NRGBA
	width   float64
	dash    []float64
	lineCap string
}

// surface is the drawing backend a frame is painted onto. Coordinates are in
// output pixels with the origin at the top left.
type surface interface {
	fillRect(r geometry.Rect, c color.NRGBA)
	fillPolygon(pts []geometry.Point, c color.NRGBA)
	fillEllipse(r geometry.Rect, c color.NRGBA)
	strokeRect(r geometry.Rect, c color.NRGBA, width float64)
	strokePaths(paths [][]geometry.Point, st strokeStyle)
	drawText(r geometry.Rect, text string, c color.NRGBA, size float64)
	drawLabel(at geometry.Point, text string, c color.NRGBA)
	drawImage(r geometry.Rect, img image.Image)
}

// paintFrame paints f in painter's order: background, grid, discrete objects,
// then the ink layer. Selection chrome is not part of an export.
func paintFrame(s surface, f *engine.Frame) {
	s.fillRect(geometry.Rect{Width: f.Width, Height: f.Height}, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	if g := f.Grid; g != nil && g.Spacing >= 2 {
		c := parseColor(g.Color, color.NRGBA{A: 255})
		for x := g.OffsetX; x < f.Width; x += g.Spacing {
			s.fillRect(geometry.Rect{X: x, Width: 1, Height: f.Height}, c)
		}
		for y := g.OffsetY; y < f.Height; y += g.Spacing {
			s.fillRect(geometry.Rect{Y: y, Width: f.Width, Height: 1}, c)
		}
	}

	for i := range f.Objects {
		paintObject(s, &f.Objects[i], f.Viewport.Scale)
	}

	m := layerMatrix(f.Ink.Transform)
	scale := math.Sqrt(math.Abs(m.Determinant()))
	for _, cmd := range f.Ink.Strokes {
		paintStroke(s, cmd, m, scale)
	}
	if f.Ink.Pending != nil {
		paintStroke(s, *f.Ink.Pending, m, scale)
	}
}

func paintObject(s surface, view *engine.ObjectView, scale float64) {
	obj := &view.Object
	r := view.Screen
	fill := parseColor(obj.Color, color.NRGBA{})

	switch obj.Type() {
	case document.ObjectTypeNote:
		n, _ := obj.Note()
		s.fillRect(r, fill)
		s.drawText(r, n.Content, parseColor(noteInk, color.NRGBA{A: 255}), document.DefaultFontSize*scale)

	case document.ObjectTypeShape:
		sh, _ := obj.Shape()
		switch sh.Kind {
		case document.ShapeCircle:
			s.fillEllipse(r, fill)
		case document.ShapeTriangle:
			s.fillPolygon([]geometry.Point{
				{X: r.X + r.Width/2, Y: r.Y},
				{X: r.X + r.Width, Y: r.Y + r.Height},
				{X: r.X, Y: r.Y + r.Height},
			}, fill)
		default:
			s.fillRect(r, fill)
		}

	case document.ObjectTypeText:
		t, _ := obj.Text()
		s.fillRect(r, fill)
		size := t.FontSize
		if size <= 0 {
			size = document.DefaultFontSize
		}
		s.drawText(r, textContent(t), parseColor(t.TextColor, parseColor(document.DefaultTextColor, color.NRGBA{A: 255})), size*scale)

	case document.ObjectTypeImage:
		im, _ := obj.Image()
		img, err := decodeDataURI(im.ImageURL)
		if err != nil {
			s.strokeRect(r, parseColor(frameBorder, color.NRGBA{A: 255}), 1)
			return
		}
		s.drawImage(r, img)

	case document.ObjectTypeFrame:
		fr, _ := obj.Frame()
		s.fillRect(r, fill)
		s.strokeRect(r, parseColor(frameBorder, color.NRGBA{A: 255}), 2)
		if fr.Label != "" {
			s.drawLabel(geometry.Point{X: r.X, Y: r.Y - 4}, fr.Label, parseColor(labelColor, color.NRGBA{A: 255}))
		}
	}
}

func textContent(t *document.Text) string {
	if !t.IsList {
		return t.Content
	}
	lines := strings.Split(t.Content, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = "- " + l
		}
	}
	return strings.Join(lines, "\n")
}

func paintStroke(s surface, cmd engine.DrawCommand, m geometry.Matrix2D, scale float64) {
	paths := flattenPath(cmd.Path, m)
	if len(paths) == 0 {
		return
	}
	c := parseColor(cmd.Stroke, parseColor(document.DrawingColor, color.NRGBA{A: 255}))
	if cmd.Opacity > 0 && cmd.Opacity < 1 {
		c.A = uint8(math.Round(float64(c.A) * cmd.Opacity))
	}
	width := cmd.StrokeWidth
	if width <= 0 {
		width = 1
	}
	st := strokeStyle{color: c, width: width * scale, lineCap: cmd.LineCap}
	for _, d := range cmd.Dash {
		st.dash = append(st.dash, d*scale)
	}
	s.strokePaths(paths, st)
}

func layerMatrix(v []float64) geometry.Matrix2D {
	if len(v) != 6 {
		return geometry.Identity()
	}
	var m geometry.Matrix2D
	copy(m[:], v)
	return m
}

// flattenPath converts M/L/C/Z commands into polylines in output space.
// Cubic segments are sampled at a fixed step count.
func flattenPath(path []geometry.PathCommand, m geometry.Matrix2D) [][]geometry.Point {
	var (
		out  [][]geometry.Point
		cur  []geometry.Point
		last geometry.Point
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
		}
		cur = nil
	}
	arg := func(cmd geometry.PathCommand, i int) float64 { return geometry.ToFloat64(cmd[i]) }

	for _, cmd := range path {
		if len(cmd) == 0 {
			continue
		}
		op, _ := cmd[0].(string)
		switch {
		case op == "M" && len(cmd) >= 3:
			flush()
			last = geometry.Point{X: arg(cmd, 1), Y: arg(cmd, 2)}
			cur = append(cur, m.Apply(last))
		case op == "L" && len(cmd) >= 3:
			last = geometry.Point{X: arg(cmd, 1), Y: arg(cmd, 2)}
			cur = append(cur, m.Apply(last))
		case op == "C" && len(cmd) >= 7:
			p0 := last
			c1 := geometry.Point{X: arg(cmd, 1), Y: arg(cmd, 2)}
			c2 := geometry.Point{X: arg(cmd, 3), Y: arg(cmd, 4)}
			p3 := geometry.Point{X: arg(cmd, 5), Y: arg(cmd, 6)}
			for i := 1; i <= curveSteps; i++ {
				cur = append(cur, m.Apply(cubicAt(p0, c1, c2, p3, float64(i)/curveSteps)))
			}
			last = p3
		case op == "Z" && len(cur) > 0:
			cur = append(cur, cur[0])
		}
	}
	flush()
	return out
}

func cubicAt(p0, p1, p2, p3 geometry.Point, t float64) geometry.Point {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return geometry.Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// dashPolyline splits pts into the "on" runs of a dash pattern.
func dashPolyline(pts []geometry.Point, pattern []float64) [][]geometry.Point {
	total := 0.0
	for _, d := range pattern {
		total += d
	}
	if len(pts) < 2 || len(pattern) == 0 || total <= 0 {
		return [][]geometry.Point{pts}
	}

	var (
		out    [][]geometry.Point
		run    = []geometry.Point{pts[0]}
		idx    int
		remain = pattern[0]
		on     = true
	)
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		seg := geometry.Distance(a, b)
		pos := 0.0
		for seg-pos > remain {
			pos += remain
			p := geometry.Lerp(a, b, pos/seg)
			if on {
				run = append(run, p)
				out = append(out, run)
				run = nil
			} else {
				run = []geometry.Point{p}
			}
			on = !on
			idx = (idx + 1) % len(pattern)
			remain = pattern[idx]
		}
		remain -= seg - pos
		if on {
			run = append(run, b)
		}
	}
	if on && len(run) > 1 {
		out = append(out, run)
	}
	return out
}

// parseColor reads #rgb, #rrggbb and #rrggbbaa colors. "transparent" is fully
// transparent; anything unreadable yields fallback.
func parseColor(s string, fallback color.NRGBA) color.NRGBA {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "transparent" {
		return color.NRGBA{}
	}
	if !strings.HasPrefix(s, "#") {
		return fallback
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return fallback
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

var errNotDataURI = errors.New("not a data uri")

// decodeDataURI decodes a base64 or percent-encoded data URI holding a PNG or
// JPEG image.
func decodeDataURI(uri string) (image.Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, errNotDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errNotDataURI
	}

	var (
		raw []byte
		err error
	)
	if strings.HasSuffix(meta, ";base64") {
		raw, err = base64.StdEncoding.DecodeString(payload)
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		raw = []byte(s)
	}
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return img, nil
}
