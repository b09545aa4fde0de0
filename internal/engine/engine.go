package engine

import (
	"encoding/json"
	"log/slog"

	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/geometry"
	"github.com/inamate/canvasboard/internal/history"
	"github.com/inamate/canvasboard/internal/viewport"
)

// Default screen size used until the host reports the real one.
const (
	DefaultScreenWidth  = 1280.0
	DefaultScreenHeight = 800.0
)

// Change describes what a mutation touched. Selection-only changes that do not
// alter any object are not reported.
type Change struct {
	Objects  bool `json:"objects"`
	Viewport bool `json:"viewport"`
}

// Engine is the canvas state machine. It owns the scene, the selection, the
// viewport and every in-flight gesture, and turns pointer and keyboard input into
// scene mutations. An Engine is not safe for concurrent use; wrap it in a Session
// when more than one goroutine drives it.
type Engine struct {
	// Scene state
	objects  []document.Object
	selected map[string]bool
	viewport viewport.Viewport

	// Tool state
	tool       Tool
	penStyle   document.PenStyle
	inkColor   string
	shapeKind  document.ShapeKind
	pickerOpen bool

	// Host state
	screenW, screenH float64
	gridVisible      bool
	editingFocus     bool

	gesture gesture
	history *history.Manager[Snapshot]

	onChange []func(Change)

	// Dirty flag - frame needs rebuild
	dirty   bool
	frame   *Frame
	version uint64
	ticked  uint64
}

// NewEngine creates an engine with an empty scene and the select tool active.
func NewEngine() *Engine {
	return &Engine{
		objects:     []document.Object{},
		selected:    make(map[string]bool),
		viewport:    viewport.Identity(),
		tool:        ToolSelect,
		penStyle:    document.DefaultPen().Style(),
		inkColor:    document.DrawingColor,
		shapeKind:   document.ShapeRectangle,
		screenW:     DefaultScreenWidth,
		screenH:     DefaultScreenHeight,
		gridVisible: true,
		history:     history.New(history.DefaultLimit, Snapshot.Clone),
		dirty:       true,
		version:     1,
	}
}

// --- Scene lifecycle ---

// LoadScene replaces the live state wholesale with a copy of s. Selection,
// gestures and history are reset. Loading does not fire change hooks.
func (e *Engine) LoadScene(s *document.Scene) {
	if s == nil {
		s = document.NewEmptyScene()
	}
	e.objects = document.CloneObjects(s.Objects)
	e.viewport = s.Viewport.Normalize()
	clear(e.selected)
	e.gesture = gesture{}
	e.pickerOpen = false
	e.history.Reset()
	e.invalidate()
	slog.Debug("scene loaded", "objects", len(e.objects))
}

// Reset starts a fresh empty scene with the identity viewport.
func (e *Engine) Reset() {
	e.LoadScene(document.NewEmptyScene())
}

// LoadSampleScene loads the built-in welcome board.
func (e *Engine) LoadSampleScene() {
	e.LoadScene(document.NewSampleScene())
}

// LoadSceneJSON parses a scene payload and loads it.
func (e *Engine) LoadSceneJSON(data string) error {
	s, err := document.UnmarshalScene([]byte(data))
	if err != nil {
		return err
	}
	e.LoadScene(s)
	return nil
}

// Scene returns a deep copy of the persisted part of the state.
func (e *Engine) Scene() *document.Scene {
	return &document.Scene{
		Objects:  document.CloneObjects(e.objects),
		Viewport: e.viewport,
	}
}

// SceneJSON returns the persisted part of the state as JSON.
func (e *Engine) SceneJSON() string {
	data, err := document.MarshalScene(e.Scene())
	if err != nil {
		slog.Warn("failed to marshal scene", "error", err)
		return "{}"
	}
	return string(data)
}

// OnChange registers fn to run after every mutation of objects or viewport.
func (e *Engine) OnChange(fn func(Change)) {
	e.onChange = append(e.onChange, fn)
}

// --- Host state ---

// SetScreenSize records the size of the visible canvas in screen pixels.
func (e *Engine) SetScreenSize(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	if e.screenW != w || e.screenH != h {
		e.screenW, e.screenH = w, h
		e.invalidate()
	}
}

// ScreenSize returns the visible canvas size in screen pixels.
func (e *Engine) ScreenSize() (float64, float64) {
	return e.screenW, e.screenH
}

// SetEditingFocus tells the engine an editable control has keyboard focus, which
// disables canvas shortcuts.
func (e *Engine) SetEditingFocus(focused bool) {
	e.editingFocus = focused
}

// GridVisible reports whether the background grid is drawn.
func (e *Engine) GridVisible() bool {
	return e.gridVisible
}

// SetGridVisible shows or hides the background grid.
func (e *Engine) SetGridVisible(visible bool) {
	if e.gridVisible != visible {
		e.gridVisible = visible
		e.invalidate()
	}
}

// --- Queries ---

// Objects returns a deep copy of the objects in insertion order.
func (e *Engine) Objects() []document.Object {
	return document.CloneObjects(e.objects)
}

// Object returns a copy of the object with id.
func (e *Engine) Object(id string) (document.Object, bool) {
	if obj := e.find(id); obj != nil {
		return obj.Clone(), true
	}
	return document.Object{}, false
}

// Selection returns the selected ids in paint order.
func (e *Engine) Selection() []string {
	var ids []string
	for _, obj := range e.paintOrder() {
		if e.selected[obj.ID] {
			ids = append(ids, obj.ID)
		}
	}
	return ids
}

// IsSelected reports whether id is in the selection.
func (e *Engine) IsSelected(id string) bool {
	return e.selected[id]
}

// Viewport returns the current viewport.
func (e *Engine) Viewport() viewport.Viewport {
	return e.viewport
}

// IsDragging reports whether an object drag or resize is in progress.
func (e *Engine) IsDragging() bool {
	return e.gesture.kind == gestureDrag || e.gesture.kind == gestureResize
}

// IsSelecting reports whether a marquee selection is in progress.
func (e *Engine) IsSelecting() bool {
	return e.gesture.kind == gestureMarquee
}

// SelectionBox returns the marquee rectangle in scene space.
func (e *Engine) SelectionBox() (geometry.Rect, bool) {
	if e.gesture.kind != gestureMarquee {
		return geometry.Rect{}, false
	}
	return e.gesture.box, true
}

// PendingStroke returns a copy of the in-progress ink stroke.
func (e *Engine) PendingStroke() []geometry.Point {
	if e.gesture.kind != gestureInk {
		return nil
	}
	return append([]geometry.Point(nil), e.gesture.stroke...)
}

// CanUndo reports whether Undo would restore anything.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo reports whether Redo would restore anything.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// GetSelection returns the current selection as JSON.
func (e *Engine) GetSelection() string {
	ids := e.Selection()
	if ids == nil {
		ids = []string{}
	}
	data, _ := json.Marshal(ids)
	return string(data)
}

// --- Frame loop ---

// Tick is called once per animation frame. It returns the current frame and
// whether anything changed since the previous tick, so hosts can skip redundant
// repaints.
func (e *Engine) Tick() (*Frame, bool) {
	f := e.Render()
	changed := e.ticked != e.version
	e.ticked = e.version
	return f, changed
}

// Render returns the frame for the current state, rebuilding it only when the
// state changed since the last call.
func (e *Engine) Render() *Frame {
	if e.dirty || e.frame == nil {
		e.frame = e.buildFrame()
		e.dirty = false
	}
	return e.frame
}

// RenderJSON returns the current frame as JSON.
func (e *Engine) RenderJSON() string {
	result, err := FrameToJSON(e.Render())
	if err != nil {
		slog.Warn("failed to marshal frame", "error", err)
	}
	return result
}

// invalidate marks the frame for rebuild.
func (e *Engine) invalidate() {
	e.dirty = true
	e.version++
}

// changed invalidates the frame and notifies change hooks.
func (e *Engine) changed(c Change) {
	e.invalidate()
	if !c.Objects && !c.Viewport {
		return
	}
	for _, fn := range e.onChange {
		fn(c)
	}
}
