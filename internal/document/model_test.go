package document

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/inamate/canvasboard/internal/geometry"
	"github.com/inamate/canvasboard/internal/viewport"
)

func TestNewDrawing_DerivesBounds(t *testing.T) {
	d := NewDrawing([]geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}, DefaultPen().Style(), "", 1)
	want := geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if got := d.Bounds(); got != want {
		t.Errorf("Bounds = %+v, want %+v", got, want)
	}
	if d.Color != DrawingColor {
		t.Errorf("Color = %q, want %q", d.Color, DrawingColor)
	}
}

func TestObject_AppendAndTranslateKeepBounds(t *testing.T) {
	d := NewDrawing([]geometry.Point{{X: 5, Y: 5}}, DefaultPen().Style(), "#000", 1)
	d.AppendPoint(geometry.Point{X: -5, Y: 20})
	d.Translate(3, -2)

	drawing, _ := d.Drawing()
	if got, want := d.Bounds(), geometry.BoundsOf(drawing.Points()); got != want {
		t.Errorf("Bounds = %+v, want tight box %+v", got, want)
	}
	if d.X != -2 || d.Y != 3 {
		t.Errorf("origin = (%v,%v), want (-2,3)", d.X, d.Y)
	}
}

func TestObject_CloneDoesNotAlias(t *testing.T) {
	d := NewDrawing([]geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, PenStyle{Key: "dashed", Dash: []float64{8, 6}}, "#000", 1)
	c := d.Clone()
	d.Translate(100, 100)
	orig, _ := d.Drawing()
	orig.PenStyle.Dash[0] = 99

	cd, _ := c.Drawing()
	if cd.Points()[0] != (geometry.Point{}) {
		t.Errorf("clone points moved: %v", cd.Points())
	}
	if cd.PenStyle.Dash[0] != 8 {
		t.Errorf("clone dash aliased: %v", cd.PenStyle.Dash)
	}
}

func TestSetBounds_RescalesDrawing(t *testing.T) {
	d := NewDrawing([]geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}, DefaultPen().Style(), "#000", 1)
	d.SetBounds(geometry.Rect{X: 0, Y: 0, Width: 20, Height: 40})
	drawing, _ := d.Drawing()
	if got := drawing.Points()[1]; got != (geometry.Point{X: 20, Y: 40}) {
		t.Errorf("scaled point = %v, want {20 40}", got)
	}
	if d.Width != 20 || d.Height != 40 {
		t.Errorf("size = %vx%v, want 20x40", d.Width, d.Height)
	}
}

func TestScene_JSONRoundTrip(t *testing.T) {
	in := NewSampleScene()
	in.Viewport = viewport.Viewport{X: 12, Y: -4, Scale: 1.5}

	data, err := MarshalScene(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out, err := UnmarshalScene(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(out.Objects) != len(in.Objects) {
		t.Fatalf("len(objects) = %d, want %d", len(out.Objects), len(in.Objects))
	}
	if out.Viewport != in.Viewport {
		t.Errorf("viewport = %+v, want %+v", out.Viewport, in.Viewport)
	}
	for i := range in.Objects {
		a, b := in.Objects[i], out.Objects[i]
		if a.Base != b.Base {
			t.Errorf("object %d base = %+v, want %+v", i, b.Base, a.Base)
		}
		if a.Type() != b.Type() {
			t.Errorf("object %d type = %q, want %q", i, b.Type(), a.Type())
		}
	}
}

func TestScene_WireShape(t *testing.T) {
	s := &Scene{Objects: []Object{NewShape(geometry.Point{X: 1, Y: 2}, ShapeTriangle, 3)}, Viewport: viewport.Identity()}
	data, err := MarshalScene(s)
	if err != nil {
		t.Fatal(err)
	}
	var generic struct {
		Objects []map[string]any `json:"objects"`
	}
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatal(err)
	}
	obj := generic.Objects[0]
	if obj["type"] != "shape" || obj["shape"] != "triangle" || obj["zIndex"] != float64(3) {
		t.Errorf("unexpected wire object: %v", obj)
	}
	if _, ok := obj["points"]; ok {
		t.Error("shape should not carry points")
	}
}

func TestScene_UnmarshalSkipsBadObjects(t *testing.T) {
	payload := `{"objects":[
		{"id":"a","type":"note","x":1,"y":2,"width":200,"height":150,"zIndex":1,"color":"#fff","content":"hi"},
		{"id":"b","type":"hologram"},
		{"id":"c","type":"drawing","points":[]},
		{"id":"d","type":"drawing","x":999,"y":999,"width":1,"height":1,"points":[{"x":0,"y":0},{"x":4,"y":3}],"penStyle":{"key":"marker","strokeWidth":6,"opacity":0.9}}
	],"viewport":{"x":0,"y":0,"scale":9}}`

	s, err := UnmarshalScene([]byte(payload))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(s.Objects) != 2 {
		t.Fatalf("len(objects) = %d, want 2", len(s.Objects))
	}
	if s.Viewport.Scale != viewport.MaxScale {
		t.Errorf("scale = %v, want clamped %v", s.Viewport.Scale, viewport.MaxScale)
	}
	d := s.Objects[1]
	if got := d.Bounds(); got != (geometry.Rect{X: 0, Y: 0, Width: 4, Height: 3}) {
		t.Errorf("drawing bounds = %+v, want derived {0 0 4 3}", got)
	}
}

func TestPenStyle_StrippedAndResolved(t *testing.T) {
	style := DefaultPen().Style()
	if style.Preset() == nil {
		t.Fatal("fresh style should carry its preset")
	}
	stripped := style.Stripped()
	if stripped.Preset() != nil {
		t.Error("stripped style still has a preset")
	}
	resolved := PenStyle{Key: "highlighter"}.Resolve()
	if resolved.Preset() == nil || resolved.Preset().Key != "highlighter" {
		t.Errorf("resolved preset = %+v", resolved.Preset())
	}
	if resolved.StrokeWidth != 16 || resolved.Opacity != 0.35 {
		t.Errorf("resolved style = %+v", resolved)
	}
	unknown := PenStyle{Key: "crayon", StrokeWidth: 3}.Resolve()
	if unknown.Key != DefaultPenKey || unknown.StrokeWidth != 3 {
		t.Errorf("unknown key resolved to %+v", unknown)
	}
}

func TestFramePreset_SizeWithin(t *testing.T) {
	p, ok := FramePresetByKey("desktop")
	if !ok {
		t.Fatal("desktop preset missing")
	}
	w, h := p.SizeWithin(480)
	if w != 480 || h != 300 {
		t.Errorf("SizeWithin = %vx%v, want 480x300", w, h)
	}
	small := FramePreset{Width: 100, Height: 50}
	if w, h := small.SizeWithin(480); w != 100 || h != 50 {
		t.Errorf("small preset scaled to %vx%v", w, h)
	}
}

func TestNewImage_FitsAndCenters(t *testing.T) {
	img := NewImage(geometry.Point{X: 500, Y: 500}, "data:image/png;base64,AAAA", 1600, 800, 1)
	if img.Width != 400 || img.Height != 200 {
		t.Errorf("size = %vx%v, want 400x200", img.Width, img.Height)
	}
	if img.Bounds().Center() != (geometry.Point{X: 500, Y: 500}) {
		t.Errorf("center = %v", img.Bounds().Center())
	}
	if !strings.HasPrefix(img.ID, "obj_") {
		t.Errorf("id %q", img.ID)
	}
}
