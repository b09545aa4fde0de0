package engine

import (
	"encoding/json"
	"math"

	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/geometry"
	"github.com/inamate/canvasboard/internal/viewport"
)

// Render constants.
const (
	GridSpacing    = 20.0
	GridColor      = "#e5e7eb"
	HandleSize     = 10.0
	SelectionColor = "#3b82f6"
)

// Frame is everything the host needs to paint one state of the canvas.
// Discrete objects are positioned regions in paint order; every stroke lives in
// the single ink layer, which paints above them.
type Frame struct {
	Width    float64           `json:"width"`
	Height   float64           `json:"height"`
	Viewport viewport.Viewport `json:"viewport"`
	Tool     Tool              `json:"tool"`

	Grid        *Grid          `json:"grid,omitempty"`
	Objects     []ObjectView   `json:"objects"`
	Ink         InkLayer       `json:"ink"`
	Affordances []Affordance   `json:"affordances,omitempty"`
	Marquee     *geometry.Rect `json:"marquee,omitempty"`

	FramePicker []document.FramePreset `json:"framePicker,omitempty"`
	CanUndo     bool                   `json:"canUndo"`
	CanRedo     bool                   `json:"canRedo"`
}

// Grid describes the background grid in screen space.
type Grid struct {
	Spacing float64 `json:"spacing"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Color   string  `json:"color"`
}

// ObjectView is a discrete object positioned on screen.
type ObjectView struct {
	Object document.Object `json:"object"`
	Screen geometry.Rect   `json:"screen"`
}

// InkLayer is the shared vector layer for strokes. Paths are in scene space;
// Transform maps them to the screen once for the whole layer.
type InkLayer struct {
	Width     float64       `json:"width"`
	Height    float64       `json:"height"`
	Transform []float64     `json:"transform"`
	Strokes   []DrawCommand `json:"strokes"`
	Pending   *DrawCommand  `json:"pending,omitempty"`
}

// DrawCommand represents a single stroke for the host to paint.
type DrawCommand struct {
	Op          string                 `json:"op"`                 // "path"
	ObjectID    string                 `json:"objectId,omitempty"` // For hit correlation
	Path        []geometry.PathCommand `json:"path"`
	Stroke      string                 `json:"stroke,omitempty"`
	StrokeWidth float64                `json:"strokeWidth,omitempty"`
	Opacity     float64                `json:"opacity,omitempty"`
	Dash        []float64              `json:"dash,omitempty"`
	LineCap     string                 `json:"lineCap,omitempty"`
}

// Affordance is the selection ring and resize handles of one selected object.
type Affordance struct {
	ObjectID string        `json:"objectId"`
	Ring     geometry.Rect `json:"ring"`
	Handles  []HandleView  `json:"handles"`
}

// HandleView is a resize grip centered on a screen point.
type HandleView struct {
	Handle geometry.Handle `json:"handle"`
	X      float64         `json:"x"`
	Y      float64         `json:"y"`
	Size   float64         `json:"size"`
}

// buildFrame compiles the current state into a frame in painter's order.
func (e *Engine) buildFrame() *Frame {
	vp := e.viewport
	f := &Frame{
		Width:    e.screenW,
		Height:   e.screenH,
		Viewport: vp,
		Tool:     e.tool,
		Objects:  []ObjectView{},
		Ink: InkLayer{
			Width:     e.screenW,
			Height:    e.screenH,
			Transform: vp.Matrix().ToSlice(),
			Strokes:   []DrawCommand{},
		},
		CanUndo: e.history.CanUndo(),
		CanRedo: e.history.CanRedo(),
	}

	if e.gridVisible {
		f.Grid = gridFor(vp)
	}

	for _, obj := range e.paintOrder() {
		if obj.IsDrawing() {
			f.Ink.Strokes = append(f.Ink.Strokes, strokeCommand(obj))
		} else {
			f.Objects = append(f.Objects, ObjectView{
				Object: obj.Clone(),
				Screen: vp.RectToScreen(obj.Bounds()),
			})
		}
		if e.tool == ToolSelect && e.selected[obj.ID] {
			f.Affordances = append(f.Affordances, affordanceFor(obj, vp))
		}
	}

	switch e.gesture.kind {
	case gestureInk:
		f.Ink.Pending = pendingCommand(e.gesture.stroke, e.penStyle, e.inkColor)
	case gestureMarquee:
		box := vp.RectToScreen(e.gesture.box)
		f.Marquee = &box
	}

	if e.pickerOpen {
		f.FramePicker = document.FramePresets()
	}
	return f
}

func gridFor(vp viewport.Viewport) *Grid {
	spacing := GridSpacing * vp.Scale
	return &Grid{
		Spacing: spacing,
		OffsetX: positiveMod(vp.X, spacing),
		OffsetY: positiveMod(vp.Y, spacing),
		Color:   GridColor,
	}
}

func strokeCommand(obj *document.Object) DrawCommand {
	d, _ := obj.Drawing()
	style := d.PenStyle
	if style.Preset() == nil {
		style = style.Resolve()
	}
	cmd := DrawCommand{
		Op:          "path",
		ObjectID:    obj.ID,
		Path:        style.StrokePath(d.Points()),
		Stroke:      obj.Color,
		StrokeWidth: style.StrokeWidth,
		Opacity:     style.Opacity,
		Dash:        style.Dash,
	}
	if p := style.Preset(); p != nil {
		cmd.LineCap = p.LineCap
	}
	return cmd
}

func pendingCommand(points []geometry.Point, style document.PenStyle, color string) *DrawCommand {
	if len(points) == 0 {
		return nil
	}
	cmd := DrawCommand{
		Op:          "path",
		Path:        style.StrokePath(points),
		Stroke:      color,
		StrokeWidth: style.StrokeWidth,
		Opacity:     style.Opacity,
		Dash:        style.Dash,
	}
	if p := style.Preset(); p != nil {
		cmd.LineCap = p.LineCap
	}
	return &cmd
}

func affordanceFor(obj *document.Object, vp viewport.Viewport) Affordance {
	bounds := obj.Bounds()
	positions := geometry.HandlePositions(bounds)
	a := Affordance{
		ObjectID: obj.ID,
		Ring:     vp.RectToScreen(bounds),
		Handles:  make([]HandleView, 0, len(geometry.Handles)),
	}
	for _, h := range geometry.Handles {
		p := vp.ToScreen(positions[h])
		a.Handles = append(a.Handles, HandleView{Handle: h, X: p.X, Y: p.Y, Size: HandleSize})
	}
	return a
}

func positiveMod(v, m float64) float64 {
	if m <= 0 {
		return 0
	}
	r := math.Mod(v, m)
	if r < 0 {
		r += m
	}
	return r
}

// FrameToJSON serializes a frame to JSON.
func FrameToJSON(f *Frame) (string, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return "{}", err
	}
	return string(data), nil
}
