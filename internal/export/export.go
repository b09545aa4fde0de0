// Package export turns rendered canvas frames into PNG and PDF documents.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/engine"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

const (
	// DefaultPadding is the margin kept around scene content, in pixels.
	DefaultPadding = 40.0
	// MaxSide caps either side of an exported canvas.
	MaxSide = 4096.0
	minSide = 64.0
)

// Capturer is an engine capturer that also names its output.
type Capturer interface {
	engine.Capturer
	ContentType() string
	Extension() string
}

// CapturerFor returns the capturer for a format name ("png" or "pdf").
func CapturerFor(format string) (Capturer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "png":
		return PNG{}, nil
	case "pdf":
		return PDF{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// RenderScene exports a whole scene: the canvas is sized to the content plus
// padding and the viewport is fitted so everything is visible.
func RenderScene(ctx context.Context, scene *document.Scene, c engine.Capturer) ([]byte, error) {
	e := engine.NewEngine()
	e.LoadScene(scene)

	content := e.ContentBounds()
	w := min(max(content.Width+2*DefaultPadding, minSide), MaxSide)
	h := min(max(content.Height+2*DefaultPadding, minSide), MaxSide)
	e.SetScreenSize(w, h)
	e.FitToContent(DefaultPadding)

	return e.Export(ctx, c)
}
