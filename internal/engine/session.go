package engine

import (
	"context"
	"sync"

	"github.com/inamate/canvasboard/internal/document"
)

// Session serializes access to an Engine so that input handlers, the frame
// ticker and asynchronous persistence callbacks can share it. All engine work
// runs inside Do, one call at a time, like handlers on an event loop.
type Session struct {
	mu     sync.Mutex
	engine *Engine
}

// NewSession wraps e.
func NewSession(e *Engine) *Session {
	return &Session{engine: e}
}

// Do runs fn with exclusive access to the engine.
func (s *Session) Do(fn func(*Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.engine)
}

// Scene returns a deep copy of the engine's scene.
func (s *Session) Scene() *document.Scene {
	var scene *document.Scene
	s.Do(func(e *Engine) { scene = e.Scene() })
	return scene
}

// LoadScene replaces the engine's scene.
func (s *Session) LoadScene(scene *document.Scene) {
	s.Do(func(e *Engine) { e.LoadScene(scene) })
}

// Tick returns the current frame and whether it changed since the last tick.
func (s *Session) Tick() (*Frame, bool) {
	var (
		f       *Frame
		changed bool
	)
	s.Do(func(e *Engine) { f, changed = e.Tick() })
	return f, changed
}

// Export captures the canvas without holding the engine while the capture runs.
// The grid stays hidden until the capture returns.
func (s *Session) Export(ctx context.Context, c Capturer) ([]byte, error) {
	var (
		f       *Frame
		restore func()
	)
	s.Do(func(e *Engine) { f, restore = e.BeginExport() })
	defer s.Do(func(*Engine) { restore() })
	return c.Capture(ctx, f)
}
