package document

import (
	"github.com/inamate/canvasboard/internal/geometry"
	"github.com/inamate/canvasboard/internal/viewport"
)

type ObjectType string

const (
	ObjectTypeNote    ObjectType = "note"
	ObjectTypeShape   ObjectType = "shape"
	ObjectTypeText    ObjectType = "text"
	ObjectTypeImage   ObjectType = "image"
	ObjectTypeDrawing ObjectType = "drawing"
	ObjectTypeFrame   ObjectType = "frame"
)

type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
	ShapeTriangle  ShapeKind = "triangle"
)

// Valid reports whether k is one of the known shape kinds.
func (k ShapeKind) Valid() bool {
	return k == ShapeRectangle || k == ShapeCircle || k == ShapeTriangle
}

// Base is the geometry and paint shared by every placeable object.
type Base struct {
	ID       string
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64 // degrees; carried through, not interpreted
	ZIndex   int
	Color    string
}

// Bounds returns the object's scene-space rect.
func (b Base) Bounds() geometry.Rect {
	return geometry.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// Payload is the per-variant part of an Object. The set of implementations is
// closed: Note, Shape, Text, Image, Drawing and Frame.
type Payload interface {
	Type() ObjectType
	clonePayload() Payload
}

type Note struct {
	Content string
}

type Shape struct {
	Kind ShapeKind
}

type Text struct {
	Content        string
	FontWeight     string
	FontStyle      string
	TextDecoration string
	FontSize       float64
	TextColor      string
	TextAlign      string
	IsList         bool
}

type Image struct {
	ImageURL string // data URI
}

// Drawing is a committed freehand stroke. Its points are private so that the
// owning Object's bounds can only change together with them.
type Drawing struct {
	points   []geometry.Point
	PenStyle PenStyle
}

type Frame struct {
	PresetKey string
	Label     string
}

func (*Note) Type() ObjectType    { return ObjectTypeNote }
func (*Shape) Type() ObjectType   { return ObjectTypeShape }
func (*Text) Type() ObjectType    { return ObjectTypeText }
func (*Image) Type() ObjectType   { return ObjectTypeImage }
func (*Drawing) Type() ObjectType { return ObjectTypeDrawing }
func (*Frame) Type() ObjectType   { return ObjectTypeFrame }

func (p *Note) clonePayload() Payload  { c := *p; return &c }
func (p *Shape) clonePayload() Payload { c := *p; return &c }
func (p *Text) clonePayload() Payload  { c := *p; return &c }
func (p *Image) clonePayload() Payload { c := *p; return &c }
func (p *Frame) clonePayload() Payload { c := *p; return &c }
func (p *Drawing) clonePayload() Payload {
	c := *p
	c.points = append([]geometry.Point(nil), p.points...)
	c.PenStyle = p.PenStyle.clone()
	return &c
}

// Points returns the raw stroke samples. The slice must not be modified.
func (d *Drawing) Points() []geometry.Point {
	return d.points
}

// Object is one placeable element of a scene.
type Object struct {
	Base
	Payload Payload
}

// Type returns the variant discriminator.
func (o *Object) Type() ObjectType {
	if o.Payload == nil {
		return ""
	}
	return o.Payload.Type()
}

// Clone returns a deep copy that shares no memory with o.
func (o Object) Clone() Object {
	if o.Payload != nil {
		o.Payload = o.Payload.clonePayload()
	}
	return o
}

func (o *Object) Note() (*Note, bool)       { p, ok := o.Payload.(*Note); return p, ok }
func (o *Object) Shape() (*Shape, bool)     { p, ok := o.Payload.(*Shape); return p, ok }
func (o *Object) Text() (*Text, bool)       { p, ok := o.Payload.(*Text); return p, ok }
func (o *Object) Image() (*Image, bool)     { p, ok := o.Payload.(*Image); return p, ok }
func (o *Object) Drawing() (*Drawing, bool) { p, ok := o.Payload.(*Drawing); return p, ok }
func (o *Object) Frame() (*Frame, bool)     { p, ok := o.Payload.(*Frame); return p, ok }

// IsDrawing reports whether o is a freehand stroke.
func (o *Object) IsDrawing() bool {
	_, ok := o.Payload.(*Drawing)
	return ok
}

// SetPoints replaces a drawing's samples and recomputes its bounds. It is a no-op
// for other variants.
func (o *Object) SetPoints(points []geometry.Point) {
	d, ok := o.Drawing()
	if !ok {
		return
	}
	d.points = append(d.points[:0:0], points...)
	o.refreshBounds()
}

// AppendPoint adds one sample to a drawing and extends its bounds.
func (o *Object) AppendPoint(p geometry.Point) {
	d, ok := o.Drawing()
	if !ok {
		return
	}
	d.points = append(d.points, p)
	o.refreshBounds()
}

// Translate moves the object by a scene-space delta. Drawings move every point.
func (o *Object) Translate(dx, dy float64) {
	if d, ok := o.Drawing(); ok {
		for i := range d.points {
			d.points[i].X += dx
			d.points[i].Y += dy
		}
		o.refreshBounds()
		return
	}
	o.X += dx
	o.Y += dy
}

// SetBounds resizes the object to r. Drawings are geometrically rescaled from
// their current bounds onto r, then re-derive their bounds from the new points.
func (o *Object) SetBounds(r geometry.Rect) {
	if d, ok := o.Drawing(); ok {
		o.SetPoints(geometry.ScalePoints(d.points, o.Bounds(), r))
		return
	}
	o.X, o.Y, o.Width, o.Height = r.X, r.Y, r.Width, r.Height
}

func (o *Object) refreshBounds() {
	d, ok := o.Drawing()
	if !ok {
		return
	}
	b := geometry.BoundsOf(d.points)
	o.X, o.Y, o.Width, o.Height = b.X, b.Y, b.Width, b.Height
}

// Scene is the persisted aggregate for one document context: every placed object
// plus the viewport it was last viewed with.
type Scene struct {
	Objects  []Object          `json:"objects"`
	Viewport viewport.Viewport `json:"viewport"`
}

// NewEmptyScene returns a scene with no objects and the identity viewport.
func NewEmptyScene() *Scene {
	return &Scene{
		Objects:  []Object{},
		Viewport: viewport.Identity(),
	}
}

// Clone deep-copies the scene.
func (s Scene) Clone() Scene {
	return Scene{
		Objects:  CloneObjects(s.Objects),
		Viewport: s.Viewport,
	}
}

// CloneObjects deep-copies a slice of objects.
func CloneObjects(objects []Object) []Object {
	out := make([]Object, len(objects))
	for i := range objects {
		out[i] = objects[i].Clone()
	}
	return out
}

// MaxZIndex returns the highest zIndex in objects, or 0 when there are none.
func MaxZIndex(objects []Object) int {
	maxZ := 0
	for i := range objects {
		maxZ = max(maxZ, objects[i].ZIndex)
	}
	return maxZ
}
