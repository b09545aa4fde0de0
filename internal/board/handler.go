package board

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inamate/canvasboard/internal/auth"
	"github.com/inamate/canvasboard/internal/export"
)

const maxSceneSize = 32 << 20 // 32MB, images travel as data URIs

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes registers the scene endpoints on r. Callers wrap r with auth.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/scenes", h.List).Methods("GET")
	r.HandleFunc("/scenes/{contextId}", h.Get).Methods("GET")
	r.HandleFunc("/scenes/{contextId}", h.Put).Methods("PUT")
	r.HandleFunc("/scenes/{contextId}", h.Delete).Methods("DELETE")
	r.HandleFunc("/scenes/{contextId}/export", h.Export).Methods("GET")
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	scenes, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scenes)
}

// Get returns the stored scene document itself, with its version in a header.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	contextID := mux.Vars(r)["contextId"]

	snap, err := h.service.Load(r.Context(), userID, contextID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Scene-Version", strconv.Itoa(snap.Version))
	w.WriteHeader(http.StatusOK)
	w.Write(snap.Document)
}

func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	contextID := mux.Vars(r)["contextId"]

	r.Body = http.MaxBytesReader(w, r.Body, maxSceneSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "scene too large"})
		return
	}

	saved, err := h.service.Save(r.Context(), userID, contextID, data)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	contextID := mux.Vars(r)["contextId"]

	if err := h.service.Delete(r.Context(), userID, contextID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export renders the stored scene as PNG or PDF.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	contextID := mux.Vars(r)["contextId"]

	c, err := export.CapturerFor(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be png or pdf"})
		return
	}

	scene, err := h.service.Scene(r.Context(), userID, contextID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	export.Write(w, r, scene, c, contextID)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "scene not found"})
	case errors.Is(err, ErrInvalidContext):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid context id"})
	case errors.Is(err, ErrInvalidScene):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
