package remote

import (
	"encoding/json"

	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/engine"
)

// Message is the envelope for every frame on the socket. Seq is echoed on
// replies so clients can match a save.result to the save that caused it.
type Message struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> server intents.
const (
	TypePointerDown    = "pointer.down"
	TypePointerMove    = "pointer.move"
	TypePointerUp      = "pointer.up"
	TypeWheel          = "wheel"
	TypeKey            = "key"
	TypeFocus          = "focus"
	TypeToolSet        = "tool.set"
	TypeStyleSet       = "style.set"
	TypeObjectEdit     = "object.edit"
	TypeSelect         = "select"
	TypeDelete         = "delete"
	TypeDuplicate      = "duplicate"
	TypeFramePicker    = "frame.picker"
	TypeFramePlace     = "frame.place"
	TypeImagePlace     = "image.place"
	TypeClear          = "clear"
	TypeUndo           = "undo"
	TypeRedo           = "redo"
	TypeZoom           = "zoom"
	TypeFit            = "fit"
	TypeSave           = "save"
	TypeResizeViewport = "resize.viewport"
)

// Server -> client messages.
const (
	TypeWelcome    = "welcome"
	TypeFrame      = "frame"
	TypeResult     = "result"
	TypeSaveResult = "save.result"
	TypeError      = "error"
)

type ToolPayload struct {
	Tool  string             `json:"tool"`
	Shape document.ShapeKind `json:"shape,omitempty"`
}

type StylePayload struct {
	Color string `json:"color,omitempty"`
	Pen   string `json:"pen,omitempty"`
}

type FocusPayload struct {
	Editing bool `json:"editing"`
}

// ObjectEditPayload changes one object. Only the fields present are applied.
type ObjectEditPayload struct {
	ID           string             `json:"id"`
	Content      *string            `json:"content,omitempty"`
	TextStyle    *engine.TextStyle  `json:"textStyle,omitempty"`
	Shape        document.ShapeKind `json:"shape,omitempty"`
	Label        *string            `json:"label,omitempty"`
	BringToFront bool               `json:"bringToFront,omitempty"`
}

type SelectPayload struct {
	IDs []string `json:"ids"`
}

type FramePickerPayload struct {
	Open bool `json:"open"`
}

type FramePlacePayload struct {
	Preset string `json:"preset"`
}

type ImagePlacePayload struct {
	ImageURL string  `json:"imageUrl"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

type ClearPayload struct {
	Confirmed bool `json:"confirmed"`
}

type ZoomPayload struct {
	Factor  float64  `json:"factor"`
	AnchorX *float64 `json:"anchorX,omitempty"`
	AnchorY *float64 `json:"anchorY,omitempty"`
}

type FitPayload struct {
	Padding float64 `json:"padding,omitempty"`
}

type ViewportPayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type PenInfo struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	StrokeWidth float64   `json:"strokeWidth"`
	Opacity     float64   `json:"opacity"`
	Dash        []float64 `json:"dash,omitempty"`
}

type WelcomePayload struct {
	ClientID      string                 `json:"clientId"`
	ContextID     string                 `json:"contextId"`
	Authenticated bool                   `json:"authenticated"`
	Pens          []PenInfo              `json:"pens"`
	Frames        []document.FramePreset `json:"frames"`
}

// ResultPayload acknowledges intents that produce ids or may be refused.
type ResultPayload struct {
	OK  bool     `json:"ok"`
	IDs []string `json:"ids,omitempty"`
}

type SaveResultPayload struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func newMessage(typ string, seq int64, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, Seq: seq, Payload: data}, nil
}

func penCatalog() []PenInfo {
	presets := document.PenPresets()
	out := make([]PenInfo, 0, len(presets))
	for _, p := range presets {
		out = append(out, PenInfo{
			Key:         p.Key,
			Label:       p.Label,
			StrokeWidth: p.StrokeWidth,
			Opacity:     p.Opacity,
			Dash:        p.Dash,
		})
	}
	return out
}
