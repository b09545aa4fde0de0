package remote

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/inamate/canvasboard/internal/engine"
	"github.com/inamate/canvasboard/internal/geometry"
	"github.com/inamate/canvasboard/internal/viewport"
)

// DefaultFitPadding is the screen margin kept around content by a fit intent
// without an explicit padding.
const DefaultFitPadding = 40

// handle applies one client intent to the engine. Frames are not sent here; the
// write pump picks up the change on its next tick.
func (c *Client) handle(ctx context.Context, msg *Message) {
	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp:
		var ev engine.PointerEvent
		if !c.decode(msg, &ev) {
			return
		}
		c.session.Do(func(e *engine.Engine) {
			switch msg.Type {
			case TypePointerDown:
				e.PointerDown(ev)
			case TypePointerMove:
				e.PointerMove(ev)
			default:
				e.PointerUp(ev)
			}
		})

	case TypeWheel:
		var ev viewport.WheelEvent
		if !c.decode(msg, &ev) {
			return
		}
		c.session.Do(func(e *engine.Engine) { e.Wheel(ev) })

	case TypeKey:
		var ev engine.KeyEvent
		if !c.decode(msg, &ev) {
			return
		}
		var handled bool
		c.session.Do(func(e *engine.Engine) { handled = e.KeyDown(ev) })
		c.reply(TypeResult, msg.Seq, ResultPayload{OK: handled})

	case TypeFocus:
		var p FocusPayload
		if !c.decode(msg, &p) {
			return
		}
		c.session.Do(func(e *engine.Engine) { e.SetEditingFocus(p.Editing) })

	case TypeToolSet:
		var p ToolPayload
		if !c.decode(msg, &p) {
			return
		}
		tool, err := engine.ParseTool(p.Tool)
		if err != nil {
			c.sendError(msg.Seq, err.Error())
			return
		}
		c.session.Do(func(e *engine.Engine) {
			if tool == engine.ToolShape {
				e.SetShapeTool(p.Shape)
				return
			}
			e.SetTool(tool)
		})

	case TypeStyleSet:
		var p StylePayload
		if !c.decode(msg, &p) {
			return
		}
		c.session.Do(func(e *engine.Engine) {
			if p.Pen != "" {
				e.SetPenStyle(p.Pen)
			}
			if p.Color != "" {
				e.SetColor(p.Color)
			}
		})

	case TypeObjectEdit:
		var p ObjectEditPayload
		if !c.decode(msg, &p) {
			return
		}
		var ok bool
		c.session.Do(func(e *engine.Engine) { ok = applyEdit(e, p) })
		c.reply(TypeResult, msg.Seq, ResultPayload{OK: ok})

	case TypeSelect:
		var p SelectPayload
		if !c.decode(msg, &p) {
			return
		}
		c.session.Do(func(e *engine.Engine) {
			if len(p.IDs) == 0 {
				e.ClearSelection()
				return
			}
			e.Select(p.IDs...)
		})

	case TypeDelete:
		var ok bool
		c.session.Do(func(e *engine.Engine) { ok = e.DeleteSelected() })
		c.reply(TypeResult, msg.Seq, ResultPayload{OK: ok})

	case TypeDuplicate:
		var ids []string
		c.session.Do(func(e *engine.Engine) { ids = e.Duplicate() })
		c.reply(TypeResult, msg.Seq, ResultPayload{OK: len(ids) > 0, IDs: ids})

	case TypeFramePicker:
		var p FramePickerPayload
		if !c.decode(msg, &p) {
			return
		}
		c.session.Do(func(e *engine.Engine) {
			if p.Open {
				e.OpenFramePicker()
			} else {
				e.CloseFramePicker()
			}
		})

	case TypeFramePlace:
		var p FramePlacePayload
		if !c.decode(msg, &p) {
			return
		}
		var (
			id string
			ok bool
		)
		c.session.Do(func(e *engine.Engine) { id, ok = e.PlaceFrame(p.Preset) })
		if !ok {
			c.sendError(msg.Seq, "unknown frame preset")
			return
		}
		c.reply(TypeResult, msg.Seq, ResultPayload{OK: true, IDs: []string{id}})

	case TypeImagePlace:
		var p ImagePlacePayload
		if !c.decode(msg, &p) {
			return
		}
		if p.ImageURL == "" {
			c.sendError(msg.Seq, "imageUrl is required")
			return
		}
		var id string
		c.session.Do(func(e *engine.Engine) { id = e.PlaceImage(p.ImageURL, p.Width, p.Height) })
		c.reply(TypeResult, msg.Seq, ResultPayload{OK: true, IDs: []string{id}})

	case TypeClear:
		var p ClearPayload
		if !c.decode(msg, &p) {
			return
		}
		var ok bool
		c.session.Do(func(e *engine.Engine) { ok = e.ClearAll(p.Confirmed) })
		c.reply(TypeResult, msg.Seq, ResultPayload{OK: ok})

	case TypeUndo, TypeRedo:
		var ok bool
		c.session.Do(func(e *engine.Engine) {
			if msg.Type == TypeUndo {
				ok = e.Undo()
			} else {
				ok = e.Redo()
			}
		})
		c.reply(TypeResult, msg.Seq, ResultPayload{OK: ok})

	case TypeZoom:
		var p ZoomPayload
		if !c.decode(msg, &p) {
			return
		}
		var anchor *geometry.Point
		if p.AnchorX != nil && p.AnchorY != nil {
			anchor = &geometry.Point{X: *p.AnchorX, Y: *p.AnchorY}
		}
		c.session.Do(func(e *engine.Engine) { e.Zoom(p.Factor, anchor) })

	case TypeFit:
		var p FitPayload
		if !c.decode(msg, &p) {
			return
		}
		if p.Padding <= 0 {
			p.Padding = DefaultFitPadding
		}
		c.session.Do(func(e *engine.Engine) { e.FitToContent(p.Padding) })

	case TypeResizeViewport:
		var p ViewportPayload
		if !c.decode(msg, &p) {
			return
		}
		c.session.Do(func(e *engine.Engine) { e.SetScreenSize(p.Width, p.Height) })

	case TypeSave:
		result := SaveResultPayload{OK: true}
		if err := c.bridge.SaveNow(ctx); err != nil {
			slog.Warn("manual save failed", "error", err, "client", c.ClientID, "context", c.ContextID)
			result = SaveResultPayload{Error: err.Error()}
		}
		c.reply(TypeSaveResult, msg.Seq, result)

	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", c.ClientID)
		c.sendError(msg.Seq, "unknown message type")
	}
}

// decode unmarshals the payload into v, replying with an error when it is
// malformed. A missing payload leaves v at its zero value.
func (c *Client) decode(msg *Message, v any) bool {
	if len(msg.Payload) == 0 {
		return true
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		slog.Warn("invalid payload", "error", err, "type", msg.Type, "client", c.ClientID)
		c.sendError(msg.Seq, "invalid "+msg.Type+" payload")
		return false
	}
	return true
}

func applyEdit(e *engine.Engine, p ObjectEditPayload) bool {
	if _, ok := e.Object(p.ID); !ok {
		return false
	}
	ok := true
	if p.Content != nil {
		ok = e.SetContent(p.ID, *p.Content) && ok
	}
	if p.TextStyle != nil {
		ok = e.SetTextStyle(p.ID, *p.TextStyle) && ok
	}
	if p.Shape != "" {
		ok = p.Shape.Valid() && e.SetShapeKind(p.ID, p.Shape) && ok
	}
	if p.Label != nil {
		ok = e.SetFrameLabel(p.ID, *p.Label) && ok
	}
	if p.BringToFront {
		ok = e.BringToFront(p.ID) && ok
	}
	return ok
}
