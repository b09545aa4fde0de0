package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/inamate/canvasboard/internal/engine"
	"github.com/inamate/canvasboard/internal/geometry"
)

// pxToPt maps one canvas pixel to one PDF point, so the page has the same
// numeric size as the frame.
const pxToPt = 1.0

// PDF writes a single-page vector document the size of the frame.
type PDF struct{}

func (PDF) ContentType() string { return "application/pdf" }
func (PDF) Extension() string   { return "pdf" }

func (PDF) Capture(ctx context.Context, f *engine.Frame) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("layout pdf: empty size %vx%v", f.Width, f.Height)
	}

	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: f.Width * pxToPt, Ht: f.Height * pxToPt},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	paintFrame(&pdfSurface{doc: doc}, f)

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfSurface struct {
	doc    *gofpdf.Fpdf
	images int
}

func (s *pdfSurface) setFill(c color.NRGBA) {
	s.doc.SetFillColor(int(c.R), int(c.G), int(c.B))
	s.doc.SetAlpha(float64(c.A)/255, "Normal")
}

func (s *pdfSurface) setDraw(c color.NRGBA, width float64) {
	s.doc.SetDrawColor(int(c.R), int(c.G), int(c.B))
	s.doc.SetAlpha(float64(c.A)/255, "Normal")
	s.doc.SetLineWidth(width * pxToPt)
}

func (s *pdfSurface) fillRect(r geometry.Rect, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	s.setFill(c)
	s.doc.Rect(r.X*pxToPt, r.Y*pxToPt, r.Width*pxToPt, r.Height*pxToPt, "F")
}

func (s *pdfSurface) fillPolygon(pts []geometry.Point, c color.NRGBA) {
	if c.A == 0 || len(pts) < 3 {
		return
	}
	s.setFill(c)
	s.doc.Polygon(toPointTypes(pts), "F")
}

func (s *pdfSurface) fillEllipse(r geometry.Rect, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	s.setFill(c)
	center := r.Center()
	s.doc.Ellipse(center.X*pxToPt, center.Y*pxToPt, r.Width/2*pxToPt, r.Height/2*pxToPt, 0, "F")
}

func (s *pdfSurface) strokeRect(r geometry.Rect, c color.NRGBA, width float64) {
	if c.A == 0 {
		return
	}
	s.setDraw(c, width)
	s.doc.SetDashPattern(nil, 0)
	s.doc.Rect(r.X*pxToPt, r.Y*pxToPt, r.Width*pxToPt, r.Height*pxToPt, "D")
}

func (s *pdfSurface) strokePaths(paths [][]geometry.Point, st strokeStyle) {
	if st.color.A == 0 {
		return
	}
	s.setDraw(st.color, st.width)
	lineCap := st.lineCap
	if lineCap == "" {
		lineCap = "round"
	}
	s.doc.SetLineCapStyle(lineCap)
	s.doc.SetLineJoinStyle("round")
	dash := make([]float64, len(st.dash))
	for i, d := range st.dash {
		dash[i] = d * pxToPt
	}
	s.doc.SetDashPattern(dash, 0)

	for _, path := range paths {
		if len(path) == 0 {
			continue
		}
		s.doc.MoveTo(path[0].X*pxToPt, path[0].Y*pxToPt)
		if len(path) == 1 {
			s.doc.LineTo(path[0].X*pxToPt, path[0].Y*pxToPt)
		}
		for _, p := range path[1:] {
			s.doc.LineTo(p.X*pxToPt, p.Y*pxToPt)
		}
		s.doc.DrawPath("D")
	}
	s.doc.SetDashPattern(nil, 0)
}

func (s *pdfSurface) drawText(r geometry.Rect, text string, c color.NRGBA, size float64) {
	if text == "" || c.A == 0 {
		return
	}
	if size <= 0 {
		size = 12
	}
	s.doc.SetAlpha(float64(c.A)/255, "Normal")
	s.doc.SetTextColor(int(c.R), int(c.G), int(c.B))
	s.doc.SetFont("Helvetica", "", size*pxToPt)
	s.doc.SetXY((r.X+textPadding)*pxToPt, (r.Y+textPadding)*pxToPt)
	width := max(r.Width-2*textPadding, 1)
	s.doc.MultiCell(width*pxToPt, size*1.25*pxToPt, s.doc.UnicodeTranslatorFromDescriptor("")(text), "", "L", false)
}

func (s *pdfSurface) drawLabel(at geometry.Point, text string, c color.NRGBA) {
	s.doc.SetAlpha(float64(c.A)/255, "Normal")
	s.doc.SetTextColor(int(c.R), int(c.G), int(c.B))
	s.doc.SetFont("Helvetica", "", 10*pxToPt)
	s.doc.Text(at.X*pxToPt, at.Y*pxToPt, s.doc.UnicodeTranslatorFromDescriptor("")(text))
}

func (s *pdfSurface) drawImage(r geometry.Rect, img image.Image) {
	if r.Width <= 0 || r.Height <= 0 {
		return
	}
	// Re-encode so JPEG and PNG sources register the same way.
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return
	}
	s.images++
	name := "img" + strconv.Itoa(s.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	s.doc.SetAlpha(1, "Normal")
	s.doc.RegisterImageOptionsReader(name, opts, &buf)
	s.doc.ImageOptions(name, r.X*pxToPt, r.Y*pxToPt, r.Width*pxToPt, r.Height*pxToPt, false, opts, 0, "")
}

func toPointTypes(pts []geometry.Point) []gofpdf.PointType {
	out := make([]gofpdf.PointType, len(pts))
	for i, p := range pts {
		out[i] = gofpdf.PointType{X: p.X * pxToPt, Y: p.Y * pxToPt}
	}
	return out
}
