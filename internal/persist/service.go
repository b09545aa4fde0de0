// Package persist connects a canvas engine to a persistence service: debounced
// autosave, context-keyed loads and the sanitize/rehydrate steps around them.
package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/store"
)

// Service stores and retrieves scenes by context id. Load returns a nil scene
// and no error when nothing is stored for the context.
type Service interface {
	Save(ctx context.Context, contextID string, scene *document.Scene) error
	Load(ctx context.Context, contextID string) (*document.Scene, error)
}

// StoreService is a Service over a scene store, scoped to one owner.
type StoreService struct {
	scenes  store.SceneStore
	ownerID string
}

func NewStoreService(scenes store.SceneStore, ownerID string) *StoreService {
	return &StoreService{scenes: scenes, ownerID: ownerID}
}

func (s *StoreService) Save(ctx context.Context, contextID string, scene *document.Scene) error {
	data, err := document.MarshalScene(Sanitize(scene))
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}
	if _, err := s.scenes.SaveScene(ctx, s.ownerID, contextID, data); err != nil {
		return err
	}
	return nil
}

func (s *StoreService) Load(ctx context.Context, contextID string) (*document.Scene, error) {
	snap, err := s.scenes.LoadScene(ctx, s.ownerID, contextID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	scene, err := document.UnmarshalScene(snap.Document)
	if err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return scene, nil
}

// HTTPService is a Service over the board REST API.
type HTTPService struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPService(baseURL, token string) *HTTPService {
	return &HTTPService{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken replaces the bearer token used for requests.
func (s *HTTPService) SetToken(token string) {
	s.token = token
}

func (s *HTTPService) sceneURL(contextID string) string {
	return s.baseURL + "/api/scenes/" + url.PathEscape(contextID)
}

func (s *HTTPService) Save(ctx context.Context, contextID string, scene *document.Scene) error {
	data, err := document.MarshalScene(Sanitize(scene))
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.sceneURL(contextID), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return statusError(resp)
	}
	return nil
}

func (s *HTTPService) Load(ctx context.Context, contextID string) (*document.Scene, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.sceneURL(contextID), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode/100 != 2:
		return nil, statusError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	scene, err := document.UnmarshalScene(data)
	if err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return scene, nil
}

func (s *HTTPService) do(req *http.Request) (*http.Response, error) {
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("scene service: %d %s", resp.StatusCode, msg)
}
