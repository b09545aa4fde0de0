//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/engine"
	"github.com/inamate/canvasboard/internal/geometry"
	"github.com/inamate/canvasboard/internal/persist"
	"github.com/inamate/canvasboard/internal/viewport"
)

var (
	session *engine.Session
	service *persist.HTTPService
	bridge  *persist.Bridge
)

func main() {
	session = engine.NewSession(engine.NewEngine())
	service = persist.NewHTTPService("", "")
	bridge = persist.NewBridge(session, service, persist.BridgeOpts{})

	// Create the engine API object
	canvasEngine := js.Global().Get("Object").New()

	// --- Session ---
	canvasEngine.Set("configure", js.FuncOf(configure))
	canvasEngine.Set("switchContext", js.FuncOf(switchContext))
	canvasEngine.Set("save", js.FuncOf(save))

	// --- Input (frontend → engine) ---
	canvasEngine.Set("pointerDown", js.FuncOf(pointer(func(e *engine.Engine, ev engine.PointerEvent) { e.PointerDown(ev) })))
	canvasEngine.Set("pointerMove", js.FuncOf(pointer(func(e *engine.Engine, ev engine.PointerEvent) { e.PointerMove(ev) })))
	canvasEngine.Set("pointerUp", js.FuncOf(pointer(func(e *engine.Engine, ev engine.PointerEvent) { e.PointerUp(ev) })))
	canvasEngine.Set("wheel", js.FuncOf(wheel))
	canvasEngine.Set("keyDown", js.FuncOf(keyDown))
	canvasEngine.Set("setEditingFocus", js.FuncOf(setEditingFocus))
	canvasEngine.Set("setScreenSize", js.FuncOf(setScreenSize))

	// --- Commands ---
	canvasEngine.Set("setTool", js.FuncOf(setTool))
	canvasEngine.Set("setPenStyle", js.FuncOf(setPenStyle))
	canvasEngine.Set("setColor", js.FuncOf(setColor))
	canvasEngine.Set("setContent", js.FuncOf(setContent))
	canvasEngine.Set("setTextStyle", js.FuncOf(setTextStyle))
	canvasEngine.Set("setShapeKind", js.FuncOf(setShapeKind))
	canvasEngine.Set("setFrameLabel", js.FuncOf(setFrameLabel))
	canvasEngine.Set("bringToFront", js.FuncOf(bringToFront))
	canvasEngine.Set("setSelection", js.FuncOf(setSelection))
	canvasEngine.Set("deleteSelected", js.FuncOf(deleteSelected))
	canvasEngine.Set("duplicate", js.FuncOf(duplicate))
	canvasEngine.Set("openFramePicker", js.FuncOf(openFramePicker))
	canvasEngine.Set("closeFramePicker", js.FuncOf(closeFramePicker))
	canvasEngine.Set("placeFrame", js.FuncOf(placeFrame))
	canvasEngine.Set("placeImage", js.FuncOf(placeImage))
	canvasEngine.Set("clearAll", js.FuncOf(clearAll))
	canvasEngine.Set("undo", js.FuncOf(undo))
	canvasEngine.Set("redo", js.FuncOf(redo))
	canvasEngine.Set("zoom", js.FuncOf(zoom))
	canvasEngine.Set("fitToContent", js.FuncOf(fitToContent))
	canvasEngine.Set("loadSceneJSON", js.FuncOf(loadSceneJSON))
	canvasEngine.Set("loadSampleScene", js.FuncOf(loadSampleScene))

	// --- Queries (frontend ← engine) ---
	canvasEngine.Set("tick", js.FuncOf(tick))
	canvasEngine.Set("render", js.FuncOf(render))
	canvasEngine.Set("hitTest", js.FuncOf(hitTest))
	canvasEngine.Set("getSelection", js.FuncOf(getSelection))
	canvasEngine.Set("getScene", js.FuncOf(getScene))
	canvasEngine.Set("getCatalog", js.FuncOf(getCatalog))

	// Register on global scope
	js.Global().Set("canvasEngine", canvasEngine)

	// Signal that WASM is ready
	js.Global().Set("canvasWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) any {
	return js.ValueOf(map[string]any{"error": err.Error()})
}

func okResult() any {
	return js.ValueOf(map[string]any{"ok": true})
}

func argString(args []js.Value, i int) string {
	if len(args) <= i || args[i].Type() != js.TypeString {
		return ""
	}
	return args[i].String()
}

func argFloat(args []js.Value, i int) float64 {
	if len(args) <= i || args[i].Type() != js.TypeNumber {
		return 0
	}
	return args[i].Float()
}

func argBool(args []js.Value, i int) bool {
	return len(args) > i && args[i].Truthy()
}

// promise runs fn off the event loop; blocking network calls inside a js.Func
// callback would deadlock the runtime.
func promise(fn func() error) js.Value {
	handler := js.FuncOf(func(this js.Value, args []js.Value) any {
		resolve, reject := args[0], args[1]
		go func() {
			if err := fn(); err != nil {
				reject.Invoke(js.Global().Get("Error").New(err.Error()))
				return
			}
			resolve.Invoke(true)
		}()
		return nil
	})
	defer handler.Release()
	return js.Global().Get("Promise").New(handler)
}

// --- Session ---

// configure(apiBase, token) points persistence at the board API.
func configure(this js.Value, args []js.Value) any {
	service = persist.NewHTTPService(argString(args, 0), argString(args, 1))
	old := bridge
	bridge = persist.NewBridge(session, service, persist.BridgeOpts{})
	go old.Close(context.Background())
	return okResult()
}

// switchContext(contextId) loads the scene stored for the context. A missing
// token or context keeps the canvas local-only.
func switchContext(this js.Value, args []js.Value) any {
	contextID := argString(args, 0)
	authenticated := len(args) > 1 && args[1].Truthy()
	done := bridge.SwitchContext(context.Background(), contextID, authenticated)
	return promise(func() error {
		<-done
		return nil
	})
}

func save(this js.Value, args []js.Value) any {
	b := bridge
	return promise(func() error {
		return b.SaveNow(context.Background())
	})
}

// --- Input ---

func pointer(apply func(*engine.Engine, engine.PointerEvent)) func(js.Value, []js.Value) any {
	return func(this js.Value, args []js.Value) any {
		ev := engine.PointerEvent{
			X:      argFloat(args, 0),
			Y:      argFloat(args, 1),
			Shift:  argBool(args, 2),
			Button: engine.Button(argFloat(args, 3)),
		}
		session.Do(func(e *engine.Engine) { apply(e, ev) })
		return nil
	}
}

func wheel(this js.Value, args []js.Value) any {
	ev := viewport.WheelEvent{
		DeltaX:   argFloat(args, 0),
		DeltaY:   argFloat(args, 1),
		ScreenX:  argFloat(args, 2),
		ScreenY:  argFloat(args, 3),
		Modifier: argBool(args, 4),
	}
	session.Do(func(e *engine.Engine) { e.Wheel(ev) })
	return nil
}

func keyDown(this js.Value, args []js.Value) any {
	ev := engine.KeyEvent{
		Key:   argString(args, 0),
		Ctrl:  argBool(args, 1),
		Meta:  argBool(args, 2),
		Shift: argBool(args, 3),
	}
	var handled bool
	session.Do(func(e *engine.Engine) { handled = e.KeyDown(ev) })
	return js.ValueOf(handled)
}

func setEditingFocus(this js.Value, args []js.Value) any {
	focused := argBool(args, 0)
	session.Do(func(e *engine.Engine) { e.SetEditingFocus(focused) })
	return nil
}

func setScreenSize(this js.Value, args []js.Value) any {
	w, h := argFloat(args, 0), argFloat(args, 1)
	session.Do(func(e *engine.Engine) { e.SetScreenSize(w, h) })
	return nil
}

// --- Commands ---

func setTool(this js.Value, args []js.Value) any {
	tool, err := engine.ParseTool(argString(args, 0))
	if err != nil {
		return errorResult(err)
	}
	kind := document.ShapeKind(argString(args, 1))
	session.Do(func(e *engine.Engine) {
		if tool == engine.ToolShape {
			e.SetShapeTool(kind)
			return
		}
		e.SetTool(tool)
	})
	return okResult()
}

func setPenStyle(this js.Value, args []js.Value) any {
	key := argString(args, 0)
	session.Do(func(e *engine.Engine) { e.SetPenStyle(key) })
	return nil
}

func setColor(this js.Value, args []js.Value) any {
	color := argString(args, 0)
	session.Do(func(e *engine.Engine) { e.SetColor(color) })
	return nil
}

func setContent(this js.Value, args []js.Value) any {
	id, content := argString(args, 0), argString(args, 1)
	var ok bool
	session.Do(func(e *engine.Engine) { ok = e.SetContent(id, content) })
	return js.ValueOf(ok)
}

// setTextStyle(id, styleJSON) merges the given text style fields.
func setTextStyle(this js.Value, args []js.Value) any {
	var style engine.TextStyle
	if err := json.Unmarshal([]byte(argString(args, 1)), &style); err != nil {
		return errorResult(err)
	}
	id := argString(args, 0)
	var ok bool
	session.Do(func(e *engine.Engine) { ok = e.SetTextStyle(id, style) })
	return js.ValueOf(ok)
}

func setShapeKind(this js.Value, args []js.Value) any {
	id, kind := argString(args, 0), document.ShapeKind(argString(args, 1))
	if !kind.Valid() {
		return js.ValueOf(false)
	}
	var ok bool
	session.Do(func(e *engine.Engine) { ok = e.SetShapeKind(id, kind) })
	return js.ValueOf(ok)
}

func setFrameLabel(this js.Value, args []js.Value) any {
	id, label := argString(args, 0), argString(args, 1)
	var ok bool
	session.Do(func(e *engine.Engine) { ok = e.SetFrameLabel(id, label) })
	return js.ValueOf(ok)
}

func bringToFront(this js.Value, args []js.Value) any {
	id := argString(args, 0)
	var ok bool
	session.Do(func(e *engine.Engine) { ok = e.BringToFront(id) })
	return js.ValueOf(ok)
}

func setSelection(this js.Value, args []js.Value) any {
	var ids []string
	if len(args) > 0 && args[0].Type() == js.TypeObject {
		arr := args[0]
		length := arr.Length()
		ids = make([]string, length)
		for i := 0; i < length; i++ {
			ids[i] = arr.Index(i).String()
		}
	}
	session.Do(func(e *engine.Engine) {
		if len(ids) == 0 {
			e.ClearSelection()
			return
		}
		e.Select(ids...)
	})
	return nil
}

func deleteSelected(this js.Value, args []js.Value) any {
	var ok bool
	session.Do(func(e *engine.Engine) { ok = e.DeleteSelected() })
	return js.ValueOf(ok)
}

func duplicate(this js.Value, args []js.Value) any {
	var ids []string
	session.Do(func(e *engine.Engine) { ids = e.Duplicate() })
	data, _ := json.Marshal(ids)
	return js.ValueOf(string(data))
}

func openFramePicker(this js.Value, args []js.Value) any {
	session.Do(func(e *engine.Engine) { e.OpenFramePicker() })
	return nil
}

func closeFramePicker(this js.Value, args []js.Value) any {
	session.Do(func(e *engine.Engine) { e.CloseFramePicker() })
	return nil
}

func placeFrame(this js.Value, args []js.Value) any {
	key := argString(args, 0)
	var id string
	session.Do(func(e *engine.Engine) { id, _ = e.PlaceFrame(key) })
	return js.ValueOf(id)
}

func placeImage(this js.Value, args []js.Value) any {
	uri := argString(args, 0)
	w, h := argFloat(args, 1), argFloat(args, 2)
	if uri == "" {
		return js.ValueOf("")
	}
	var id string
	session.Do(func(e *engine.Engine) { id = e.PlaceImage(uri, w, h) })
	return js.ValueOf(id)
}

// clearAll(confirmed) empties the canvas; the host owns the confirmation prompt.
func clearAll(this js.Value, args []js.Value) any {
	confirmed := argBool(args, 0)
	var ok bool
	session.Do(func(e *engine.Engine) { ok = e.ClearAll(confirmed) })
	return js.ValueOf(ok)
}

func undo(this js.Value, args []js.Value) any {
	var ok bool
	session.Do(func(e *engine.Engine) { ok = e.Undo() })
	return js.ValueOf(ok)
}

func redo(this js.Value, args []js.Value) any {
	var ok bool
	session.Do(func(e *engine.Engine) { ok = e.Redo() })
	return js.ValueOf(ok)
}

func zoom(this js.Value, args []js.Value) any {
	factor := argFloat(args, 0)
	var anchor *geometry.Point
	if len(args) > 2 {
		anchor = &geometry.Point{X: argFloat(args, 1), Y: argFloat(args, 2)}
	}
	session.Do(func(e *engine.Engine) { e.Zoom(factor, anchor) })
	return nil
}

func fitToContent(this js.Value, args []js.Value) any {
	padding := argFloat(args, 0)
	session.Do(func(e *engine.Engine) { e.FitToContent(padding) })
	return nil
}

func loadSceneJSON(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing scene JSON"})
	}
	var err error
	data := args[0].String()
	session.Do(func(e *engine.Engine) { err = e.LoadSceneJSON(data) })
	if err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadSampleScene(this js.Value, args []js.Value) any {
	session.Do(func(e *engine.Engine) { e.LoadSampleScene() })
	return okResult()
}

// --- Queries ---

// tick returns the frame JSON when anything changed since the last tick, and
// null otherwise.
func tick(this js.Value, args []js.Value) any {
	f, changed := session.Tick()
	if !changed {
		return js.Null()
	}
	data, err := engine.FrameToJSON(f)
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(data)
}

func render(this js.Value, args []js.Value) any {
	var data string
	session.Do(func(e *engine.Engine) { data = e.RenderJSON() })
	return js.ValueOf(data)
}

func hitTest(this js.Value, args []js.Value) any {
	x, y := argFloat(args, 0), argFloat(args, 1)
	var id string
	session.Do(func(e *engine.Engine) { id = e.HitTest(x, y) })
	return js.ValueOf(id)
}

func getSelection(this js.Value, args []js.Value) any {
	var data string
	session.Do(func(e *engine.Engine) { data = e.GetSelection() })
	return js.ValueOf(data)
}

func getScene(this js.Value, args []js.Value) any {
	var data string
	session.Do(func(e *engine.Engine) { data = e.SceneJSON() })
	return js.ValueOf(data)
}

func getCatalog(this js.Value, args []js.Value) any {
	type pen struct {
		Key   string `json:"key"`
		Label string `json:"label"`
	}
	var pens []pen
	for _, p := range document.PenPresets() {
		pens = append(pens, pen{Key: p.Key, Label: p.Label})
	}
	data, _ := json.Marshal(map[string]any{
		"tools":  engine.Tools,
		"pens":   pens,
		"frames": document.FramePresets(),
	})
	return js.ValueOf(string(data))
}
