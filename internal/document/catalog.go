package document

import (
	"github.com/inamate/canvasboard/internal/geometry"
)

// StrokePathFunc turns raw stroke samples into a drawable path.
type StrokePathFunc func(points []geometry.Point) []geometry.PathCommand

// PenPreset is a read-only catalogue entry describing a pen. It carries a render
// function, so it is never serialized; drawings reference it by Key.
type PenPreset struct {
	Key         string
	Label       string
	StrokeWidth float64
	Dash        []float64
	Opacity     float64
	LineCap     string
	Path        StrokePathFunc
}

// Style returns a fresh PenStyle bound to this preset.
func (p *PenPreset) Style() PenStyle {
	return PenStyle{
		Key:         p.Key,
		StrokeWidth: p.StrokeWidth,
		Dash:        append([]float64(nil), p.Dash...),
		Opacity:     p.Opacity,
		preset:      p,
	}
}

// PenStyle is the per-stroke style. Only the exported fields travel over the
// wire; the preset reference is re-resolved from Key after a load.
type PenStyle struct {
	Key         string    `json:"key"`
	StrokeWidth float64   `json:"strokeWidth"`
	Dash        []float64 `json:"dash,omitempty"`
	Opacity     float64   `json:"opacity"`

	preset *PenPreset
}

// Preset returns the resolved catalogue entry, or nil when the style has been
// sanitized and not yet rehydrated.
func (s PenStyle) Preset() *PenPreset {
	return s.preset
}

// Stripped returns the style without its preset reference.
func (s PenStyle) Stripped() PenStyle {
	s = s.clone()
	s.preset = nil
	return s
}

// Resolve binds the style to the catalogue entry named by Key, falling back to
// the default pen for unknown keys. Zero-valued fields take the preset's values.
func (s PenStyle) Resolve() PenStyle {
	p, ok := PenPresetByKey(s.Key)
	if !ok {
		p = DefaultPen()
		s.Key = p.Key
	}
	s = s.clone()
	s.preset = p
	if s.StrokeWidth <= 0 {
		s.StrokeWidth = p.StrokeWidth
	}
	if s.Opacity <= 0 || s.Opacity > 1 {
		s.Opacity = p.Opacity
	}
	if s.Dash == nil && p.Dash != nil {
		s.Dash = append([]float64(nil), p.Dash...)
	}
	return s
}

// StrokePath renders points through the preset's path function, or through the
// default smoothing when the style is unresolved.
func (s PenStyle) StrokePath(points []geometry.Point) []geometry.PathCommand {
	if s.preset != nil && s.preset.Path != nil {
		return s.preset.Path(points)
	}
	return chaikinPath(points)
}

func (s PenStyle) clone() PenStyle {
	if s.Dash != nil {
		s.Dash = append([]float64(nil), s.Dash...)
	}
	return s
}

func chaikinPath(points []geometry.Point) []geometry.PathCommand {
	return geometry.PolylinePath(geometry.SmoothStroke(points))
}

func catmullRomPath(points []geometry.Point) []geometry.PathCommand {
	return geometry.CatmullRomPath(points)
}

func rawPath(points []geometry.Point) []geometry.PathCommand {
	return geometry.PolylinePath(geometry.Resample(points, geometry.DefaultSpacing))
}

const DefaultPenKey = "pen"

var penPresets = []*PenPreset{
	{Key: DefaultPenKey, Label: "Pen", StrokeWidth: 2, Opacity: 1, LineCap: "round", Path: chaikinPath},
	{Key: "fine", Label: "Fine liner", StrokeWidth: 1, Opacity: 1, LineCap: "round", Path: chaikinPath},
	{Key: "marker", Label: "Marker", StrokeWidth: 6, Opacity: 0.9, LineCap: "round", Path: catmullRomPath},
	{Key: "highlighter", Label: "Highlighter", StrokeWidth: 16, Opacity: 0.35, LineCap: "square", Path: rawPath},
	{Key: "dashed", Label: "Dashed", StrokeWidth: 2, Dash: []float64{8, 6}, Opacity: 1, LineCap: "butt", Path: chaikinPath},
}

// PenPresets lists the pen catalogue in display order.
func PenPresets() []*PenPreset {
	return append([]*PenPreset(nil), penPresets...)
}

// PenPresetByKey looks up a pen preset.
func PenPresetByKey(key string) (*PenPreset, bool) {
	for _, p := range penPresets {
		if p.Key == key {
			return p, true
		}
	}
	return nil, false
}

// DefaultPen returns the preset used when nothing else is selected.
func DefaultPen() *PenPreset {
	return penPresets[0]
}

// FramePreset is a device or paper silhouette with an intrinsic size.
type FramePreset struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SizeWithin returns the preset's size scaled down (never up) so that its longer
// side fits in maxSide, keeping the aspect ratio.
func (p FramePreset) SizeWithin(maxSide float64) (float64, float64) {
	longest := max(p.Width, p.Height)
	if longest <= maxSide || longest <= 0 {
		return p.Width, p.Height
	}
	return p.Width * maxSide / longest, p.Height * maxSide / longest
}

var framePresets = []FramePreset{
	{Key: "iphone", Label: "iPhone", Width: 390, Height: 844},
	{Key: "android", Label: "Android", Width: 412, Height: 915},
	{Key: "ipad", Label: "iPad", Width: 820, Height: 1180},
	{Key: "watch", Label: "Watch", Width: 198, Height: 242},
	{Key: "desktop", Label: "Desktop", Width: 1440, Height: 900},
	{Key: "browser", Label: "Browser", Width: 1280, Height: 800},
	{Key: "a4", Label: "A4", Width: 595, Height: 842},
	{Key: "letter", Label: "Letter", Width: 612, Height: 792},
	{Key: "square", Label: "Square post", Width: 1080, Height: 1080},
}

// FramePresets lists the frame catalogue in display order.
func FramePresets() []FramePreset {
	return append([]FramePreset(nil), framePresets...)
}

// FramePresetByKey looks up a frame preset.
func FramePresetByKey(key string) (FramePreset, bool) {
	for _, p := range framePresets {
		if p.Key == key {
			return p, true
		}
	}
	return FramePreset{}, false
}
