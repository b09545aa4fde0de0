package engine

import (
	"fmt"

	"github.com/inamate/canvasboard/internal/document"
)

// Tool is the active input mode.
type Tool string

const (
	ToolSelect Tool = "select"
	ToolNote   Tool = "note"
	ToolShape  Tool = "shape"
	ToolText   Tool = "text"
	ToolPen    Tool = "pen"
	ToolFrame  Tool = "frame"
	ToolEraser Tool = "eraser"
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolSelect, ToolNote, ToolShape, ToolText, ToolPen, ToolFrame, ToolEraser}

// ParseTool validates a tool name.
func ParseTool(s string) (Tool, error) {
	for _, t := range Tools {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

// places reports whether the tool creates an object on click and then reverts
// to select.
func (t Tool) places() bool {
	return t == ToolNote || t == ToolShape || t == ToolText
}

// Tool returns the active tool.
func (e *Engine) Tool() Tool {
	return e.tool
}

// SetTool switches the active tool. Any in-progress stroke or gesture is
// cancelled. Choosing the frame tool opens the preset picker.
func (e *Engine) SetTool(t Tool) {
	if t == "" {
		t = ToolSelect
	}
	e.cancelGesture()
	e.pickerOpen = t == ToolFrame
	if e.tool != t {
		e.tool = t
	}
	e.invalidate()
}

// SetShapeTool activates the shape tool with the kind new shapes will take.
func (e *Engine) SetShapeTool(kind document.ShapeKind) {
	if kind.Valid() {
		e.shapeKind = kind
	}
	e.SetTool(ToolShape)
}

// PenStyle returns the style applied to new strokes.
func (e *Engine) PenStyle() document.PenStyle {
	return e.penStyle
}

// SetPenStyle selects the pen preset for new strokes. Unknown keys fall back to
// the default pen.
func (e *Engine) SetPenStyle(key string) {
	e.penStyle = document.PenStyle{Key: key}.Resolve()
	e.invalidate()
}

// InkColor returns the color applied to new strokes.
func (e *Engine) InkColor() string {
	return e.inkColor
}

// cancelGesture drops any in-flight gesture without committing it.
func (e *Engine) cancelGesture() {
	if e.gesture.kind != gestureNone {
		e.gesture = gesture{}
		e.invalidate()
	}
}
