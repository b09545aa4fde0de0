package document

import (
	"github.com/inamate/canvasboard/internal/geometry"
	"github.com/inamate/canvasboard/internal/typeid"
)

// Default placement sizes and paint.
const (
	NoteWidth   = 200.0
	NoteHeight  = 150.0
	ShapeWidth  = 120.0
	ShapeHeight = 120.0
	TextWidth   = 240.0
	TextHeight  = 60.0

	ImageMaxSide = 400.0
	FrameMaxSide = 480.0

	NoteColor    = "#fef08a"
	ShapeColor   = "#93c5fd"
	TextColor    = "transparent"
	ImageColor   = "transparent"
	FrameColor   = "#ffffff"
	DrawingColor = "#1f2937"

	DefaultFontSize  = 18.0
	DefaultTextColor = "#111827"
)

// NewNote creates a sticky note with its top-left corner at at.
func NewNote(at geometry.Point, zIndex int) Object {
	return Object{
		Base: Base{
			ID: typeid.NewObjectID(), X: at.X, Y: at.Y,
			Width: NoteWidth, Height: NoteHeight, ZIndex: zIndex, Color: NoteColor,
		},
		Payload: &Note{Content: ""},
	}
}

// NewShape creates a shape of the given kind; unknown kinds become rectangles.
func NewShape(at geometry.Point, kind ShapeKind, zIndex int) Object {
	if !kind.Valid() {
		kind = ShapeRectangle
	}
	return Object{
		Base: Base{
			ID: typeid.NewObjectID(), X: at.X, Y: at.Y,
			Width: ShapeWidth, Height: ShapeHeight, ZIndex: zIndex, Color: ShapeColor,
		},
		Payload: &Shape{Kind: kind},
	}
}

// NewText creates a text box with default typography.
func NewText(at geometry.Point, zIndex int) Object {
	return Object{
		Base: Base{
			ID: typeid.NewObjectID(), X: at.X, Y: at.Y,
			Width: TextWidth, Height: TextHeight, ZIndex: zIndex, Color: TextColor,
		},
		Payload: &Text{
			Content:        "Text",
			FontWeight:     "normal",
			FontStyle:      "normal",
			TextDecoration: "none",
			FontSize:       DefaultFontSize,
			TextColor:      DefaultTextColor,
			TextAlign:      "left",
		},
	}
}

// NewImage creates an image object centered on center, sized from the image's
// intrinsic dimensions scaled to fit ImageMaxSide.
func NewImage(center geometry.Point, dataURI string, intrinsicW, intrinsicH float64, zIndex int) Object {
	w, h := fitWithin(intrinsicW, intrinsicH, ImageMaxSide)
	return Object{
		Base: Base{
			ID: typeid.NewObjectID(), X: center.X - w/2, Y: center.Y - h/2,
			Width: w, Height: h, ZIndex: zIndex, Color: ImageColor,
		},
		Payload: &Image{ImageURL: dataURI},
	}
}

// NewFrame creates a frame from preset centered on center.
func NewFrame(center geometry.Point, preset FramePreset, zIndex int) Object {
	w, h := preset.SizeWithin(FrameMaxSide)
	return Object{
		Base: Base{
			ID: typeid.NewObjectID(), X: center.X - w/2, Y: center.Y - h/2,
			Width: w, Height: h, ZIndex: zIndex, Color: FrameColor,
		},
		Payload: &Frame{PresetKey: preset.Key, Label: preset.Label},
	}
}

// NewDrawing creates a committed stroke from points. Bounds are derived.
func NewDrawing(points []geometry.Point, style PenStyle, color string, zIndex int) Object {
	if color == "" {
		color = DrawingColor
	}
	obj := Object{
		Base:    Base{ID: typeid.NewObjectID(), ZIndex: zIndex, Color: color},
		Payload: &Drawing{PenStyle: style},
	}
	obj.SetPoints(points)
	return obj
}

// fitWithin scales (w, h) down so the longer side is at most maxSide. Missing
// dimensions fall back to a square of maxSide/2.
func fitWithin(w, h, maxSide float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxSide / 2, maxSide / 2
	}
	longest := max(w, h)
	if longest <= maxSide {
		return max(w, geometry.MinObjectSize), max(h, geometry.MinObjectSize)
	}
	return max(w*maxSide/longest, geometry.MinObjectSize), max(h*maxSide/longest, geometry.MinObjectSize)
}
