package engine

import (
	"context"
	"fmt"
)

// Capturer rasterizes a rendered frame into an encoded image.
type Capturer interface {
	Capture(ctx context.Context, f *Frame) ([]byte, error)
}

// Export captures the canvas with the background grid hidden. The grid is
// restored afterwards whether or not the capture succeeded.
func (e *Engine) Export(ctx context.Context, c Capturer) ([]byte, error) {
	f, restore := e.BeginExport()
	defer restore()
	data, err := c.Capture(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("capture canvas: %w", err)
	}
	return data, nil
}

// BeginExport hides the grid and returns the frame to capture together with a
// func that puts the grid back. Hosts that capture off the interaction loop call
// restore once the capture finishes.
func (e *Engine) BeginExport() (*Frame, func()) {
	prev := e.gridVisible
	e.SetGridVisible(false)
	return e.Render(), func() { e.SetGridVisible(prev) }
}
