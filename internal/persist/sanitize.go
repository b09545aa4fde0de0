package persist

import (
	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/typeid"
)

// Sanitize returns a copy of s that is safe to transmit: pen styles lose their
// catalogue reference, empty strokes are dropped and the viewport is clamped.
func Sanitize(s *document.Scene) *document.Scene {
	if s == nil {
		return document.NewEmptyScene()
	}
	out := &document.Scene{
		Objects:  make([]document.Object, 0, len(s.Objects)),
		Viewport: s.Viewport.Normalize(),
	}
	for _, obj := range s.Objects {
		obj = obj.Clone()
		if d, ok := obj.Drawing(); ok {
			if len(d.Points()) == 0 {
				continue
			}
			d.PenStyle = d.PenStyle.Stripped()
		}
		out.Objects = append(out.Objects, obj)
	}
	return out
}

// Rehydrate prepares a loaded scene for editing: pen styles are re-resolved from
// the catalogue by key, stroke bounds are re-derived from their points, missing
// or repeated ids are replaced and the viewport is clamped.
func Rehydrate(s *document.Scene) *document.Scene {
	if s == nil {
		return document.NewEmptyScene()
	}
	out := &document.Scene{
		Objects:  make([]document.Object, 0, len(s.Objects)),
		Viewport: s.Viewport.Normalize(),
	}
	seen := make(map[string]bool, len(s.Objects))
	for _, obj := range s.Objects {
		obj = obj.Clone()
		if d, ok := obj.Drawing(); ok {
			if len(d.Points()) == 0 {
				continue
			}
			d.PenStyle = d.PenStyle.Resolve()
			obj.SetPoints(d.Points())
		}
		if obj.ID == "" || seen[obj.ID] {
			obj.ID = typeid.NewObjectID()
		}
		seen[obj.ID] = true
		out.Objects = append(out.Objects, obj)
	}
	return out
}
