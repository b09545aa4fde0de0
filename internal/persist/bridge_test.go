package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/engine"
	"github.com/inamate/canvasboard/internal/geometry"
)

type fakeService struct {
	mu      sync.Mutex
	scenes  map[string]*document.Scene
	saves   []string
	saveErr error
	loadErr error
	gates   map[string]chan struct{}
}

func newFakeService() *fakeService {
	return &fakeService{
		scenes: make(map[string]*document.Scene),
		gates:  make(map[string]chan struct{}),
	}
}

func (f *fakeService) Save(_ context.Context, contextID string, scene *document.Scene) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	c := scene.Clone()
	f.scenes[contextID] = &c
	f.saves = append(f.saves, contextID)
	return nil
}

func (f *fakeService) Load(_ context.Context, contextID string) (*document.Scene, error) {
	f.mu.Lock()
	gate := f.gates[contextID]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	s, ok := f.scenes[contextID]
	if !ok {
		return nil, nil
	}
	c := s.Clone()
	return &c, nil
}

func (f *fakeService) gate(contextID string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[contextID] = ch
	return ch
}

func (f *fakeService) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeService) stored(contextID string) *document.Scene {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scenes[contextID]
}

func sceneWith(n int) *document.Scene {
	s := document.NewEmptyScene()
	for i := 0; i < n; i++ {
		s.Objects = append(s.Objects, document.NewNote(geometry.Point{X: float64(i) * 250}, i+1))
	}
	return s
}

func newBridge(t *testing.T, svc Service, debounce time.Duration) (*engine.Session, *Bridge) {
	t.Helper()
	session := engine.NewSession(engine.NewEngine())
	b := NewBridge(session, svc, BridgeOpts{Debounce: debounce})
	t.Cleanup(func() { _ = b.Close(context.Background()) })
	return session, b
}

func objectCount(s *engine.Session) int {
	n := 0
	s.Do(func(e *engine.Engine) { n = len(e.Objects()) })
	return n
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBridge_LoadReplacesState(t *testing.T) {
	svc := newFakeService()
	svc.scenes["a"] = sceneWith(2)
	session, b := newBridge(t, svc, 20*time.Millisecond)

	session.Do(func(e *engine.Engine) { e.LoadSampleScene() })
	<-b.SwitchContext(context.Background(), "a", true)

	if !b.Loaded() {
		t.Fatal("bridge not marked loaded")
	}
	if n := objectCount(session); n != 2 {
		t.Errorf("objects = %d, want 2 from the stored scene", n)
	}
}

func TestBridge_AutosaveIsDebounced(t *testing.T) {
	svc := newFakeService()
	session, b := newBridge(t, svc, 30*time.Millisecond)
	<-b.SwitchContext(context.Background(), "a", true)

	for i := 0; i < 3; i++ {
		session.Do(func(e *engine.Engine) { e.Pan(1, 0) })
	}

	eventually(t, "autosave", func() bool { return svc.saveCount() == 1 })
	time.Sleep(100 * time.Millisecond)
	if n := svc.saveCount(); n != 1 {
		t.Errorf("saves = %d, want a single debounced save", n)
	}
	if x := svc.stored("a").Viewport.X; x != 3 {
		t.Errorf("saved viewport.X = %v, want 3", x)
	}
}

func TestBridge_NoAutosaveBeforeLoad(t *testing.T) {
	svc := newFakeService()
	svc.scenes["a"] = sceneWith(3)
	release := svc.gate("a")
	session, b := newBridge(t, svc, 10*time.Millisecond)

	done := b.SwitchContext(context.Background(), "a", true)
	session.Do(func(e *engine.Engine) { e.Pan(10, 10) })
	time.Sleep(50 * time.Millisecond)
	if n := svc.saveCount(); n != 0 {
		t.Fatalf("autosave fired before load: %d saves", n)
	}

	close(release)
	<-done
	time.Sleep(50 * time.Millisecond)
	if n := svc.saveCount(); n != 0 {
		t.Errorf("load itself triggered %d saves", n)
	}
	if n := objectCount(session); n != 3 {
		t.Errorf("objects = %d, want stored scene's 3", n)
	}
}

func TestBridge_StaleLoadIgnored(t *testing.T) {
	svc := newFakeService()
	svc.scenes["a"] = sceneWith(1)
	svc.scenes["b"] = sceneWith(2)
	releaseA := svc.gate("a")
	session, b := newBridge(t, svc, 20*time.Millisecond)

	doneA := b.SwitchContext(context.Background(), "a", true)
	<-b.SwitchContext(context.Background(), "b", true)
	close(releaseA)
	<-doneA

	if b.ContextID() != "b" {
		t.Errorf("context = %q, want b", b.ContextID())
	}
	if n := objectCount(session); n != 2 {
		t.Errorf("objects = %d, want scene b's 2", n)
	}
}

func TestBridge_LocalOnlyWithoutSession(t *testing.T) {
	svc := newFakeService()
	session, b := newBridge(t, svc, 10*time.Millisecond)
	session.Do(func(e *engine.Engine) { e.LoadSampleScene() })

	<-b.SwitchContext(context.Background(), "a", false)
	if n := objectCount(session); n != 0 {
		t.Errorf("objects = %d, want cleared canvas", n)
	}

	session.Do(func(e *engine.Engine) {
		e.SetTool(engine.ToolNote)
		e.PointerDown(engine.PointerEvent{X: 10, Y: 10})
	})
	time.Sleep(40 * time.Millisecond)
	if n := svc.saveCount(); n != 0 {
		t.Errorf("local-only canvas saved %d times", n)
	}
	if err := b.SaveNow(context.Background()); !errors.Is(err, ErrNoContext) {
		t.Errorf("SaveNow err = %v, want ErrNoContext", err)
	}
}

func TestBridge_SaveNowSurfacesErrors(t *testing.T) {
	svc := newFakeService()
	_, b := newBridge(t, svc, time.Hour)
	<-b.SwitchContext(context.Background(), "a", true)

	if err := b.SaveNow(context.Background()); err != nil {
		t.Fatalf("SaveNow: %v", err)
	}
	if svc.saveCount() != 1 {
		t.Fatalf("saves = %d, want 1", svc.saveCount())
	}

	boom := errors.New("disk full")
	svc.mu.Lock()
	svc.saveErr = boom
	svc.mu.Unlock()
	if err := b.SaveNow(context.Background()); !errors.Is(err, boom) {
		t.Errorf("SaveNow err = %v, want wrapped %v", err, boom)
	}
}

func TestBridge_LoadFailureStartsEmpty(t *testing.T) {
	svc := newFakeService()
	svc.loadErr = errors.New("timeout")
	session, b := newBridge(t, svc, time.Hour)
	session.Do(func(e *engine.Engine) { e.LoadSampleScene() })

	<-b.SwitchContext(context.Background(), "a", true)
	if n := objectCount(session); n != 0 {
		t.Errorf("objects = %d, want empty scene", n)
	}
	if !b.Loaded() {
		t.Error("a failed load should still unlock autosave for the empty scene")
	}
}

func TestBridge_CloseFlushesPendingSave(t *testing.T) {
	svc := newFakeService()
	session := engine.NewSession(engine.NewEngine())
	b := NewBridge(session, svc, BridgeOpts{Debounce: time.Hour})
	<-b.SwitchContext(context.Background(), "a", true)

	session.Do(func(e *engine.Engine) { e.Pan(5, 5) })
	if err := b.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if svc.saveCount() != 1 {
		t.Errorf("saves = %d, want pending save flushed", svc.saveCount())
	}

	session.Do(func(e *engine.Engine) { e.Pan(5, 5) })
	time.Sleep(20 * time.Millisecond)
	if svc.saveCount() != 1 {
		t.Error("closed bridge kept saving")
	}
}
