package engine

import (
	"maps"

	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/viewport"
)

// Snapshot is a full deep copy of the undoable canvas state.
type Snapshot struct {
	Objects  []document.Object
	Selected map[string]bool
	Viewport viewport.Viewport
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Objects:  document.CloneObjects(s.Objects),
		Selected: maps.Clone(s.Selected),
		Viewport: s.Viewport,
	}
}

func (e *Engine) snapshot() Snapshot {
	return Snapshot{Objects: e.objects, Selected: e.selected, Viewport: e.viewport}
}

// saveToHistory records the current state before a destructive mutation. The
// history manager clones on the way in.
func (e *Engine) saveToHistory() {
	e.history.Push(e.snapshot())
}

func (e *Engine) restore(s Snapshot) {
	e.objects = s.Objects
	e.selected = s.Selected
	if e.selected == nil {
		e.selected = make(map[string]bool)
	}
	e.viewport = s.Viewport
	e.gesture = gesture{}
	e.changed(Change{Objects: true, Viewport: true})
}

// Undo restores the state before the most recent recorded mutation.
func (e *Engine) Undo() bool {
	e.cancelGesture()
	s, ok := e.history.Undo(e.snapshot())
	if !ok {
		return false
	}
	e.restore(s)
	return true
}

// Redo re-applies the most recently undone mutation.
func (e *Engine) Redo() bool {
	e.cancelGesture()
	s, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.restore(s)
	return true
}
