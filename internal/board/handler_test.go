package board

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/inamate/canvasboard/internal/auth"
	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/geometry"
	"github.com/inamate/canvasboard/internal/persist"
	"github.com/inamate/canvasboard/internal/store"
)

type testServer struct {
	*httptest.Server
	auth *auth.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := store.NewMemory(5)
	authSvc := auth.NewService(st, "secret", auth.Options{TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost})

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authSvc.AuthMiddleware)
	NewHandler(NewService(st)).Routes(api)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, auth: authSvc}
}

func (s *testServer) token(t *testing.T, email string) string {
	t.Helper()
	res, err := s.auth.Register(context.Background(), email, "password123", "Tester")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return res.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSceneLifecycle(t *testing.T) {
	srv := newTestServer(t)
	tok := srv.token(t, "a@example.com")

	if resp := srv.do(t, "GET", "/api/scenes/board-1", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated GET = %d, want 401", resp.StatusCode)
	}
	if resp := srv.do(t, "GET", "/api/scenes/board-1", tok, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET before save = %d, want 404", resp.StatusCode)
	}

	body, _ := document.MarshalScene(document.NewSampleScene())
	resp := srv.do(t, "PUT", "/api/scenes/board-1", tok, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT = %d", resp.StatusCode)
	}
	var saved Saved
	json.NewDecoder(resp.Body).Decode(&saved)
	if saved.Version != 1 || saved.ContextID != "board-1" {
		t.Errorf("saved = %+v", saved)
	}

	resp = srv.do(t, "GET", "/api/scenes/board-1", tok, nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("X-Scene-Version") != "1" {
		t.Fatalf("GET = %d version %q", resp.StatusCode, resp.Header.Get("X-Scene-Version"))
	}

	resp = srv.do(t, "GET", "/api/scenes", tok, nil)
	var list []store.SceneSummary
	json.NewDecoder(resp.Body).Decode(&list)
	if len(list) != 1 || list[0].ContextID != "board-1" {
		t.Errorf("list = %+v", list)
	}

	other := srv.token(t, "b@example.com")
	if resp := srv.do(t, "GET", "/api/scenes/board-1", other, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("other user's GET = %d, want 404", resp.StatusCode)
	}

	resp = srv.do(t, "GET", "/api/scenes/board-1/export?format=png", tok, nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("export = %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if resp := srv.do(t, "GET", "/api/scenes/board-1/export?format=svg", tok, nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("svg export = %d, want 400", resp.StatusCode)
	}

	if resp := srv.do(t, "DELETE", "/api/scenes/board-1", tok, nil); resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE = %d, want 204", resp.StatusCode)
	}
	if resp := srv.do(t, "DELETE", "/api/scenes/board-1", tok, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("second DELETE = %d, want 404", resp.StatusCode)
	}
}

func TestPut_Validates(t *testing.T) {
	srv := newTestServer(t)
	tok := srv.token(t, "a@example.com")

	if resp := srv.do(t, "PUT", "/api/scenes/board", tok, []byte(`{"objects": 7}`)); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed scene = %d, want 400", resp.StatusCode)
	}
	if resp := srv.do(t, "PUT", "/api/scenes/"+strings.Repeat("x", 200), tok, []byte(`{"objects":[]}`)); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("long context id = %d, want 400", resp.StatusCode)
	}
}

func TestSave_NormalizesScene(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory(5)
	svc := NewService(st)

	scene := document.NewEmptyScene()
	scene.Viewport.Scale = 40
	scene.Objects = append(scene.Objects, document.NewShape(geometry.Point{}, document.ShapeCircle, 1))
	data, _ := document.MarshalScene(scene)

	if _, err := svc.Save(ctx, "u1", "ctx", data); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := svc.Scene(ctx, "u1", "ctx")
	if err != nil {
		t.Fatalf("Scene: %v", err)
	}
	if got.Viewport.Scale != 3 {
		t.Errorf("stored scale = %v, want clamped 3", got.Viewport.Scale)
	}
	if len(got.Objects) != 1 {
		t.Errorf("objects = %d, want 1", len(got.Objects))
	}
}

// The REST API is the server side of persist.HTTPService.
func TestHTTPServiceAgainstAPI(t *testing.T) {
	srv := newTestServer(t)
	svc := persist.NewHTTPService(srv.URL, srv.token(t, "a@example.com"))
	ctx := context.Background()

	if scene, err := svc.Load(ctx, "fresh"); err != nil || scene != nil {
		t.Fatalf("Load fresh = %v, %v", scene, err)
	}

	in := document.NewSampleScene()
	if err := svc.Save(ctx, "fresh", in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := svc.Load(ctx, "fresh")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out = persist.Rehydrate(out)
	for i := range in.Objects {
		if out.Objects[i].ID != in.Objects[i].ID || out.Objects[i].Bounds() != in.Objects[i].Bounds() {
			t.Errorf("object %d changed: %+v -> %+v", i, in.Objects[i].Base, out.Objects[i].Base)
		}
	}
}
