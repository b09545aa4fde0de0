package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inamate/canvasboard/internal/geometry"
	"github.com/inamate/canvasboard/internal/viewport"
)

// wireObject is the flat JSON shape of an Object: the shared base plus every
// variant's fields, discriminated by type.
type wireObject struct {
	ID       string     `json:"id"`
	Type     ObjectType `json:"type"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Rotation float64    `json:"rotation"`
	ZIndex   int        `json:"zIndex"`
	Color    string     `json:"color"`

	// note, text
	Content string `json:"content,omitempty"`

	// text
	FontWeight     string  `json:"fontWeight,omitempty"`
	FontStyle      string  `json:"fontStyle,omitempty"`
	TextDecoration string  `json:"textDecoration,omitempty"`
	FontSize       float64 `json:"fontSize,omitempty"`
	TextColor      string  `json:"textColor,omitempty"`
	TextAlign      string  `json:"textAlign,omitempty"`
	IsList         bool    `json:"isList,omitempty"`

	// shape
	Shape ShapeKind `json:"shape,omitempty"`

	// image
	ImageURL string `json:"imageUrl,omitempty"`

	// drawing
	Points   []geometry.Point `json:"points,omitempty"`
	PenStyle *PenStyle        `json:"penStyle,omitempty"`

	// frame
	FramePreset string `json:"framePreset,omitempty"`
	Label       string `json:"label,omitempty"`
}

var (
	ErrUnknownType = errors.New("unknown object type")
	ErrEmptyStroke = errors.New("drawing has no points")
)

func (o Object) MarshalJSON() ([]byte, error) {
	w := wireObject{
		ID:       o.ID,
		Type:     o.Type(),
		X:        o.X,
		Y:        o.Y,
		Width:    o.Width,
		Height:   o.Height,
		Rotation: o.Rotation,
		ZIndex:   o.ZIndex,
		Color:    o.Color,
	}

	switch p := o.Payload.(type) {
	case *Note:
		w.Content = p.Content
	case *Shape:
		w.Shape = p.Kind
	case *Text:
		w.Content = p.Content
		w.FontWeight = p.FontWeight
		w.FontStyle = p.FontStyle
		w.TextDecoration = p.TextDecoration
		w.FontSize = p.FontSize
		w.TextColor = p.TextColor
		w.TextAlign = p.TextAlign
		w.IsList = p.IsList
	case *Image:
		w.ImageURL = p.ImageURL
	case *Drawing:
		w.Points = p.points
		style := p.PenStyle.Stripped()
		w.PenStyle = &style
	case *Frame:
		w.FramePreset = p.PresetKey
		w.Label = p.Label
	default:
		return nil, fmt.Errorf("marshal object %s: %w", o.ID, ErrUnknownType)
	}

	return json.Marshal(w)
}

func (o *Object) UnmarshalJSON(data []byte) error {
	var w wireObject
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if strings.TrimSpace(w.ID) == "" {
		return errors.New("object without id")
	}

	o.Base = Base{
		ID:       w.ID,
		X:        w.X,
		Y:        w.Y,
		Width:    w.Width,
		Height:   w.Height,
		Rotation: w.Rotation,
		ZIndex:   w.ZIndex,
		Color:    w.Color,
	}

	switch w.Type {
	case ObjectTypeNote:
		o.Payload = &Note{Content: w.Content}
	case ObjectTypeShape:
		kind := w.Shape
		if !kind.Valid() {
			kind = ShapeRectangle
		}
		o.Payload = &Shape{Kind: kind}
	case ObjectTypeText:
		o.Payload = &Text{
			Content:        w.Content,
			FontWeight:     w.FontWeight,
			FontStyle:      w.FontStyle,
			TextDecoration: w.TextDecoration,
			FontSize:       w.FontSize,
			TextColor:      w.TextColor,
			TextAlign:      w.TextAlign,
			IsList:         w.IsList,
		}
	case ObjectTypeImage:
		o.Payload = &Image{ImageURL: w.ImageURL}
	case ObjectTypeDrawing:
		if len(w.Points) == 0 {
			return fmt.Errorf("object %s: %w", w.ID, ErrEmptyStroke)
		}
		d := &Drawing{}
		if w.PenStyle != nil {
			d.PenStyle = *w.PenStyle
		}
		o.Payload = d
		// Stored bounds are ignored; they are always derived from the points.
		o.SetPoints(w.Points)
	case ObjectTypeFrame:
		o.Payload = &Frame{PresetKey: w.FramePreset, Label: w.Label}
	default:
		return fmt.Errorf("object %s type %q: %w", w.ID, w.Type, ErrUnknownType)
	}

	return nil
}

// UnmarshalJSON decodes a scene, skipping objects that cannot be decoded so a
// single corrupt entry does not lose the whole board.
func (s *Scene) UnmarshalJSON(data []byte) error {
	var raw struct {
		Objects  []json.RawMessage  `json:"objects"`
		Viewport *viewport.Viewport `json:"viewport"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Objects = make([]Object, 0, len(raw.Objects))
	for i, rawObj := range raw.Objects {
		var obj Object
		if err := json.Unmarshal(rawObj, &obj); err != nil {
			slog.Warn("skip undecodable object", "index", i, "error", err)
			continue
		}
		s.Objects = append(s.Objects, obj)
	}

	s.Viewport = viewport.Identity()
	if raw.Viewport != nil {
		s.Viewport = raw.Viewport.Normalize()
	}
	return nil
}

// MarshalScene encodes a scene for transmission.
func MarshalScene(s *Scene) ([]byte, error) {
	if s.Objects == nil {
		s = &Scene{Objects: []Object{}, Viewport: s.Viewport}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}

// UnmarshalScene decodes a scene payload.
func UnmarshalScene(data []byte) (*Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal scene: %w", err)
	}
	return &s, nil
}
