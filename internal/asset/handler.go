package asset

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/image/draw"

	"github.com/inamate/canvasboard/internal/typeid"
)

const maxUploadSize = 10 << 20 // 10MB

// DefaultMaxDimension bounds the longer side of a stored image.
const DefaultMaxDimension = 1600

var ErrUnsupportedType = errors.New("only PNG and JPEG images are supported")

// UploadResponse is returned from the upload endpoint. ImageURL is a PNG data
// URI ready to be placed as an image object.
type UploadResponse struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Name     string `json:"name"`
}

// Handler serves the image upload endpoint.
type Handler struct {
	maxDimension int
}

// NewHandler creates an asset handler that downsizes uploads so neither side
// exceeds maxDimension.
func NewHandler(maxDimension int) *Handler {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Handler{maxDimension: maxDimension}
}

// Upload handles POST /assets/upload (multipart form with "file" field).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 10MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/png") && !strings.HasPrefix(contentType, "image/jpeg") {
		http.Error(w, ErrUnsupportedType.Error(), http.StatusBadRequest)
		return
	}

	uri, width, height, err := h.Encode(file)
	if err != nil {
		http.Error(w, "invalid image: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp := UploadResponse{
		ID:       typeid.NewAssetID(),
		ImageURL: uri,
		Width:    width,
		Height:   height,
		Name:     header.Filename,
	}
	slog.Info("image uploaded", "id", resp.ID, "name", header.Filename, "width", width, "height", height)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// Encode decodes a PNG or JPEG image, downsizes it to the handler's limit and
// returns it as a PNG data URI with its final dimensions.
func (h *Handler) Encode(src io.Reader) (string, int, int, error) {
	img, format, err := image.Decode(src)
	if err != nil {
		return "", 0, 0, fmt.Errorf("decode image: %w", err)
	}
	if format != "png" && format != "jpeg" {
		return "", 0, 0, ErrUnsupportedType
	}

	img = Downscale(img, h.maxDimension)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", 0, 0, fmt.Errorf("encode png: %w", err)
	}
	b := img.Bounds()
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	return uri, b.Dx(), b.Dy(), nil
}

// Downscale shrinks img so its longer side is at most maxSide, keeping the
// aspect ratio. Smaller images are returned unchanged.
func Downscale(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := max(w, h)
	if maxSide <= 0 || longest <= maxSide {
		return img
	}
	nw := max(1, w*maxSide/longest)
	nh := max(1, h*maxSide/longest)
	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
