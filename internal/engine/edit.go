package engine

import (
	"log/slog"
	"slices"

	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/geometry"
	"github.com/inamate/canvasboard/internal/typeid"
)

// DuplicateOffset is the scene offset applied to duplicated objects.
const DuplicateOffset = 20.0

// TextStyle is a partial update of a text object's typography. Empty strings,
// a zero FontSize and a nil IsList leave the field unchanged.
type TextStyle struct {
	FontWeight     string  `json:"fontWeight,omitempty"`
	FontStyle      string  `json:"fontStyle,omitempty"`
	TextDecoration string  `json:"textDecoration,omitempty"`
	FontSize       float64 `json:"fontSize,omitempty"`
	TextColor      string  `json:"textColor,omitempty"`
	TextAlign      string  `json:"textAlign,omitempty"`
	IsList         *bool   `json:"isList,omitempty"`
}

// place creates an object for the active placement tool at a scene point,
// selects it alone and reverts to the select tool.
func (e *Engine) place(at geometry.Point) {
	z := e.maxZ() + 1
	var obj document.Object
	switch e.tool {
	case ToolNote:
		obj = document.NewNote(at, z)
	case ToolShape:
		obj = document.NewShape(at, e.shapeKind, z)
	case ToolText:
		obj = document.NewText(at, z)
	default:
		return
	}
	e.insert(obj)
	e.tool = ToolSelect
}

// insert records history, appends obj and selects it alone.
func (e *Engine) insert(obj document.Object) {
	e.saveToHistory()
	e.objects = append(e.objects, obj)
	clear(e.selected)
	e.selected[obj.ID] = true
	e.changed(Change{Objects: true})
}

// remove deletes the objects with the given ids. It does not record history.
func (e *Engine) remove(ids []string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
		delete(e.selected, id)
	}
	before := len(e.objects)
	e.objects = slices.DeleteFunc(e.objects, func(o document.Object) bool { return drop[o.ID] })
	if len(e.objects) != before {
		e.changed(Change{Objects: true})
	}
}

// DeleteSelected removes every selected object.
func (e *Engine) DeleteSelected() bool {
	if len(e.selected) == 0 {
		return false
	}
	e.saveToHistory()
	e.remove(e.Selection())
	return true
}

// ClearAll removes every object. It does nothing unless the user confirmed.
func (e *Engine) ClearAll(confirmed bool) bool {
	if !confirmed || len(e.objects) == 0 {
		return false
	}
	e.cancelGesture()
	e.saveToHistory()
	e.objects = []document.Object{}
	clear(e.selected)
	e.changed(Change{Objects: true})
	slog.Debug("canvas cleared")
	return true
}

// PlaceImage adds an image centered in the visible viewport and selects it.
func (e *Engine) PlaceImage(dataURI string, width, height float64) string {
	if dataURI == "" {
		return ""
	}
	obj := document.NewImage(e.visibleCenter(), dataURI, width, height, e.maxZ()+1)
	e.insert(obj)
	return obj.ID
}

// OpenFramePicker shows the frame preset picker.
func (e *Engine) OpenFramePicker() {
	e.SetTool(ToolFrame)
}

// CloseFramePicker hides the picker without placing anything.
func (e *Engine) CloseFramePicker() {
	if e.pickerOpen {
		e.pickerOpen = false
		e.invalidate()
	}
}

// FramePickerOpen reports whether the preset picker is showing.
func (e *Engine) FramePickerOpen() bool {
	return e.pickerOpen
}

// PlaceFrame centers the preset named key in the visible viewport. The frame
// tool stays active for repeated placement.
func (e *Engine) PlaceFrame(key string) (string, bool) {
	preset, ok := document.FramePresetByKey(key)
	if !ok {
		return "", false
	}
	obj := document.NewFrame(e.visibleCenter(), preset, e.maxZ()+1)
	e.insert(obj)
	e.tool = ToolFrame
	e.pickerOpen = false
	return obj.ID, true
}

func (e *Engine) visibleCenter() geometry.Point {
	return e.viewport.VisibleSceneRect(e.screenW, e.screenH).Center()
}

// SetColor recolors the selected objects. With nothing selected it sets the ink
// color for new strokes.
func (e *Engine) SetColor(color string) {
	if color == "" {
		return
	}
	if len(e.selected) == 0 {
		e.inkColor = color
		e.invalidate()
		return
	}
	e.saveToHistory()
	for i := range e.objects {
		if e.selected[e.objects[i].ID] {
			e.objects[i].Color = color
		}
	}
	e.changed(Change{Objects: true})
}

// SetContent replaces the text of a note or text object.
func (e *Engine) SetContent(id, content string) bool {
	return e.edit(id, func(obj *document.Object) bool {
		if n, ok := obj.Note(); ok {
			n.Content = content
			return true
		}
		if t, ok := obj.Text(); ok {
			t.Content = content
			return true
		}
		return false
	})
}

// SetTextStyle applies a partial typography update to a text object.
func (e *Engine) SetTextStyle(id string, style TextStyle) bool {
	return e.edit(id, func(obj *document.Object) bool {
		t, ok := obj.Text()
		if !ok {
			return false
		}
		setIf(&t.FontWeight, style.FontWeight)
		setIf(&t.FontStyle, style.FontStyle)
		setIf(&t.TextDecoration, style.TextDecoration)
		setIf(&t.TextColor, style.TextColor)
		setIf(&t.TextAlign, style.TextAlign)
		if style.FontSize > 0 {
			t.FontSize = style.FontSize
		}
		if style.IsList != nil {
			t.IsList = *style.IsList
		}
		return true
	})
}

// SetShapeKind changes the silhouette of a shape.
func (e *Engine) SetShapeKind(id string, kind document.ShapeKind) bool {
	if !kind.Valid() {
		return false
	}
	return e.edit(id, func(obj *document.Object) bool {
		s, ok := obj.Shape()
		if ok {
			s.Kind = kind
		}
		return ok
	})
}

// SetFrameLabel renames a frame.
func (e *Engine) SetFrameLabel(id, label string) bool {
	return e.edit(id, func(obj *document.Object) bool {
		f, ok := obj.Frame()
		if ok {
			f.Label = label
		}
		return ok
	})
}

// edit records history and applies fn to the object with id. Nothing is
// recorded when fn reports the object does not support the edit.
func (e *Engine) edit(id string, fn func(*document.Object) bool) bool {
	obj := e.find(id)
	if obj == nil {
		return false
	}
	before := e.snapshot().Clone()
	if !fn(obj) {
		return false
	}
	e.history.Push(before)
	e.changed(Change{Objects: true})
	return true
}

// BringToFront raises id above every other object.
func (e *Engine) BringToFront(id string) bool {
	obj := e.find(id)
	if obj == nil {
		return false
	}
	top := e.maxZ()
	if obj.ZIndex == top && e.countZ(top) == 1 {
		return false
	}
	e.saveToHistory()
	obj.ZIndex = top + 1
	e.changed(Change{Objects: true})
	return true
}

// Duplicate copies the selection with fresh ids, offsets the copies and selects
// them.
func (e *Engine) Duplicate() []string {
	ids := e.Selection()
	if len(ids) == 0 {
		return nil
	}
	e.saveToHistory()
	clear(e.selected)
	z := e.maxZ()
	var created []string
	for _, id := range ids {
		src := e.find(id)
		if src == nil {
			continue
		}
		dup := src.Clone()
		dup.ID = typeid.NewObjectID()
		z++
		dup.ZIndex = z
		dup.Translate(DuplicateOffset, DuplicateOffset)
		e.objects = append(e.objects, dup)
		e.selected[dup.ID] = true
		created = append(created, dup.ID)
	}
	e.changed(Change{Objects: true})
	return created
}

// Pan moves the viewport by a screen delta.
func (e *Engine) Pan(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	e.viewport = e.viewport.Pan(dx, dy)
	e.changed(Change{Viewport: true})
}

// Zoom scales the viewport by factor around a screen anchor, or around the
// scene origin when anchor is nil.
func (e *Engine) Zoom(factor float64, anchor *geometry.Point) {
	next := e.viewport.Zoom(factor, anchor)
	if next != e.viewport {
		e.viewport = next
		e.changed(Change{Viewport: true})
	}
}

// FitToContent sets the viewport so every object is visible with padding screen
// pixels around it. Scale never exceeds 1.
func (e *Engine) FitToContent(padding float64) {
	if len(e.objects) == 0 {
		return
	}
	content := e.ContentBounds()
	availW := max(e.screenW-2*padding, 1)
	availH := max(e.screenH-2*padding, 1)
	scale := 1.0
	if content.Width > 0 {
		scale = min(scale, availW/content.Width)
	}
	if content.Height > 0 {
		scale = min(scale, availH/content.Height)
	}
	next := e.viewport
	next.Scale = scale
	next = next.Normalize()
	c := content.Center()
	next.X = e.screenW/2 - c.X*next.Scale
	next.Y = e.screenH/2 - c.Y*next.Scale
	if next != e.viewport {
		e.viewport = next
		e.changed(Change{Viewport: true})
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
