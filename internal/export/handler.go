package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/persist"
)

// Scene bodies carry images as data URIs.
const maxSceneSize = 32 << 20 // 32MB

// Handler exports scenes posted by the client, e.g. a canvas that is not
// persisted anywhere.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// ExportScene handles POST /api/export?format=png|pdf&name=... with a scene
// JSON body and streams the rendered document back as an attachment.
func (h *Handler) ExportScene(w http.ResponseWriter, r *http.Request) {
	c, err := CapturerFor(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, "invalid format: must be png or pdf", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSceneSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "request too large", http.StatusBadRequest)
		return
	}
	scene, err := document.UnmarshalScene(data)
	if err != nil {
		http.Error(w, "invalid scene: "+err.Error(), http.StatusBadRequest)
		return
	}

	Write(w, r, persist.Rehydrate(scene), c, r.URL.Query().Get("name"))
}

// Write renders scene with c and writes it to w as a download named name.
func Write(w http.ResponseWriter, r *http.Request, scene *document.Scene, c Capturer, name string) {
	out, err := RenderScene(r.Context(), scene, c)
	if err != nil {
		if errors.Is(err, r.Context().Err()) {
			return
		}
		slog.Error("export failed", "format", c.Extension(), "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", c.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, SafeName(name), c.Extension()))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.Write(out)

	slog.Info("export complete", "format", c.Extension(), "objects", len(scene.Objects), "size", len(out))
}

// SafeName reduces name to a filename-safe slug.
func SafeName(name string) string {
	if name == "" {
		return "canvas"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
