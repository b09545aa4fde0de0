package asset

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
)

func solid(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 10, G: 120, B: 200, A: 255})
		}
	}
	return img
}

func uploadRequest(t *testing.T, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="photo"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/assets/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestDownscale(t *testing.T) {
	tests := []struct {
		w, h, max int
		wantW     int
		wantH     int
	}{
		{3200, 1600, 1600, 1600, 800},
		{1000, 4000, 1600, 400, 1600},
		{800, 600, 1600, 800, 600},
		{5000, 1, 100, 100, 1},
	}
	for _, tt := range tests {
		b := Downscale(solid(tt.w, tt.h), tt.max).Bounds()
		if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
			t.Errorf("Downscale(%dx%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.max, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
		}
	}
}

func TestUpload_JPEGBecomesPNGDataURI(t *testing.T) {
	var src bytes.Buffer
	if err := jpeg.Encode(&src, solid(400, 200), nil); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	NewHandler(100).Upload(rec, uploadRequest(t, "image/jpeg", src.Bytes()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Width != 100 || resp.Height != 50 {
		t.Errorf("size = %dx%d, want 100x50", resp.Width, resp.Height)
	}
	payload, ok := strings.CutPrefix(resp.ImageURL, "data:image/png;base64,")
	if !ok {
		t.Fatalf("imageUrl = %.40q, want a PNG data URI", resp.ImageURL)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("data URI is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("encoded size = %dx%d", b.Dx(), b.Dy())
	}
}

func TestUpload_Rejects(t *testing.T) {
	var src bytes.Buffer
	png.Encode(&src, solid(4, 4))

	tests := map[string]*http.Request{
		"wrong type":   uploadRequest(t, "image/gif", src.Bytes()),
		"not an image": uploadRequest(t, "image/png", []byte("definitely not a png")),
	}
	for name, req := range tests {
		rec := httptest.NewRecorder()
		NewHandler(0).Upload(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
}
