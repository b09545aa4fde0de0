package engine

import "strings"

// KeyEvent is a key press as reported by the host. Key uses DOM key names
// ("Delete", "Escape", "z").
type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Shift bool   `json:"shift,omitempty"`
}

// KeyDown handles canvas shortcuts and reports whether the key was consumed.
// Nothing is handled while an editable control has focus.
func (e *Engine) KeyDown(ev KeyEvent) bool {
	if e.editingFocus {
		return false
	}
	mod := ev.Ctrl || ev.Meta
	key := strings.ToLower(ev.Key)

	switch {
	case key == "delete" || key == "backspace":
		return e.DeleteSelected()
	case key == "escape":
		e.cancelGesture()
		e.CloseFramePicker()
		e.clearSelection()
		return true
	case mod && key == "z" && ev.Shift:
		return e.Redo()
	case mod && key == "z":
		return e.Undo()
	case mod && key == "y":
		return e.Redo()
	case mod && key == "d":
		return len(e.Duplicate()) > 0
	}
	return false
}
