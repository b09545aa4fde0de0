package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/engine"
)

// DefaultDebounce is the quiet period after the last edit before an autosave.
const DefaultDebounce = time.Second

var (
	ErrNoContext = errors.New("no document context")
	ErrNotLoaded = errors.New("scene not loaded yet")
)

// Bridge keeps an engine session in sync with a persistence service. Edits are
// autosaved after a debounce window; context switches load the stored scene.
// Autosave stays disabled until the load for the active context has been
// applied, so an empty scene can never overwrite a stored one.
//
// Lock order is session then bridge: engine callbacks may call into the bridge,
// and the bridge never holds its own lock while entering the session.
type Bridge struct {
	session  *engine.Session
	svc      Service
	debounce time.Duration

	mu         sync.Mutex
	contextID  string
	active     bool
	loaded     bool
	generation uint64
	timer      *time.Timer
	pending    bool
	running    bool
	closed     bool
}

type BridgeOpts struct {
	Debounce time.Duration
}

// NewBridge attaches a bridge to session. It subscribes to the engine's change
// hook; nothing is saved until SwitchContext loads a context.
func NewBridge(session *engine.Session, svc Service, opts BridgeOpts) *Bridge {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	b := &Bridge{
		session:  session,
		svc:      svc,
		debounce: debounce,
	}
	session.Do(func(e *engine.Engine) {
		e.OnChange(func(engine.Change) { b.Notify() })
	})
	return b
}

// ContextID returns the active context id.
func (b *Bridge) ContextID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.contextID
}

// Loaded reports whether the active context's scene has been applied.
func (b *Bridge) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

// SwitchContext points the bridge at a new document context. The engine is
// reset to an empty scene straight away. When persistence is available the
// stored scene is loaded in the background and replaces the live state; the
// returned channel is closed once that load has been applied or discarded.
// Without a context id or an authenticated user the canvas stays local-only.
func (b *Bridge) SwitchContext(ctx context.Context, contextID string, authenticated bool) <-chan struct{} {
	done := make(chan struct{})

	b.mu.Lock()
	b.stopTimerLocked()
	b.generation++
	gen := b.generation
	b.contextID = contextID
	b.active = contextID != "" && authenticated
	b.loaded = false
	active := b.active
	b.mu.Unlock()

	b.session.Do(func(e *engine.Engine) {
		if b.isCurrent(gen) {
			e.Reset()
		}
	})

	if !active {
		slog.Debug("persistence unavailable, editing locally", "context", contextID)
		close(done)
		return done
	}

	go func() {
		defer close(done)
		b.load(ctx, gen, contextID)
	}()
	return done
}

func (b *Bridge) load(ctx context.Context, gen uint64, contextID string) {
	scene, err := b.svc.Load(ctx, contextID)
	if err != nil {
		slog.Warn("failed to load scene, starting empty", "context", contextID, "error", err)
		scene = nil
	}
	if scene == nil {
		scene = document.NewEmptyScene()
	}
	scene = Rehydrate(scene)

	applied := false
	b.session.Do(func(e *engine.Engine) {
		if !b.isCurrent(gen) {
			return
		}
		e.LoadScene(scene)
		b.mu.Lock()
		b.loaded = true
		b.mu.Unlock()
		applied = true
	})
	if !applied {
		slog.Debug("discarded stale scene load", "context", contextID)
		return
	}
	slog.Info("scene loaded", "context", contextID, "objects", len(scene.Objects))
}

func (b *Bridge) isCurrent(gen uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return gen == b.generation && !b.closed
}

// Notify schedules an autosave after the debounce window, restarting the window
// if one is already pending.
func (b *Bridge) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || !b.active || !b.loaded {
		return
	}
	b.pending = true
	if b.timer == nil {
		b.timer = time.AfterFunc(b.debounce, b.onTimer)
		return
	}
	b.timer.Reset(b.debounce)
}

func (b *Bridge) onTimer() {
	b.mu.Lock()
	if b.running {
		// A save is in flight; try again once it is done.
		if b.timer != nil {
			b.timer.Reset(b.debounce)
		}
		b.mu.Unlock()
		return
	}
	if !b.pending || !b.active || !b.loaded {
		b.mu.Unlock()
		return
	}
	b.pending = false
	b.running = true
	gen, contextID := b.generation, b.contextID
	b.mu.Unlock()

	if err := b.save(context.Background(), gen, contextID); err != nil {
		slog.Warn("autosave failed", "context", contextID, "error", err)
	}

	b.mu.Lock()
	b.running = false
	if b.pending && b.timer != nil && !b.closed {
		b.timer.Reset(b.debounce)
	}
	b.mu.Unlock()
}

// save snapshots the engine and stores it, unless the context changed in the
// meantime.
func (b *Bridge) save(ctx context.Context, gen uint64, contextID string) error {
	var scene *document.Scene
	b.session.Do(func(e *engine.Engine) {
		if b.isCurrent(gen) {
			scene = e.Scene()
		}
	})
	if scene == nil {
		return nil
	}
	if err := b.svc.Save(ctx, contextID, Sanitize(scene)); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	slog.Debug("scene saved", "context", contextID, "objects", len(scene.Objects))
	return nil
}

// SaveNow saves immediately, cancelling any pending autosave. Unlike autosave,
// failures are returned to the caller.
func (b *Bridge) SaveNow(ctx context.Context) error {
	b.mu.Lock()
	if !b.active {
		b.mu.Unlock()
		return ErrNoContext
	}
	if !b.loaded {
		b.mu.Unlock()
		return ErrNotLoaded
	}
	b.stopTimerLocked()
	b.pending = false
	gen, contextID := b.generation, b.contextID
	b.mu.Unlock()

	return b.save(ctx, gen, contextID)
}

// Close stops autosaving. A pending autosave is flushed first.
func (b *Bridge) Close(ctx context.Context) error {
	b.mu.Lock()
	flush := b.pending && b.active && b.loaded && !b.closed
	b.stopTimerLocked()
	gen, contextID := b.generation, b.contextID
	b.mu.Unlock()

	var err error
	if flush {
		err = b.save(ctx, gen, contextID)
	}

	b.mu.Lock()
	b.closed = true
	b.pending = false
	b.mu.Unlock()
	return err
}

func (b *Bridge) stopTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
