// Package board is the REST face of scene persistence: list, load, save,
// delete and export a user's scenes by context id.
package board

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/persist"
	"github.com/inamate/canvasboard/internal/store"
)

var (
	ErrNotFound       = errors.New("scene not found")
	ErrInvalidScene   = errors.New("invalid scene")
	ErrInvalidContext = errors.New("invalid context id")
)

var contextIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// ValidContextID reports whether id can name a scene.
func ValidContextID(id string) bool {
	return contextIDPattern.MatchString(id)
}

type Service struct {
	scenes store.SceneStore
}

func NewService(scenes store.SceneStore) *Service {
	return &Service{scenes: scenes}
}

// Saved is the result of a save.
type Saved struct {
	ContextID string `json:"contextId"`
	Version   int    `json:"version"`
	Objects   int    `json:"objects"`
}

func (s *Service) List(ctx context.Context, ownerID string) ([]store.SceneSummary, error) {
	scenes, err := s.scenes.ListScenes(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	if scenes == nil {
		scenes = []store.SceneSummary{}
	}
	return scenes, nil
}

// Load returns the latest stored document for a context.
func (s *Service) Load(ctx context.Context, ownerID, contextID string) (*store.Snapshot, error) {
	if !ValidContextID(contextID) {
		return nil, ErrInvalidContext
	}
	snap, err := s.scenes.LoadScene(ctx, ownerID, contextID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load scene: %w", err)
	}
	return snap, nil
}

// Scene loads and decodes a context's scene, ready for editing or export.
func (s *Service) Scene(ctx context.Context, ownerID, contextID string) (*document.Scene, error) {
	snap, err := s.Load(ctx, ownerID, contextID)
	if err != nil {
		return nil, err
	}
	scene, err := document.UnmarshalScene(snap.Document)
	if err != nil {
		return nil, fmt.Errorf("decode stored scene: %w", err)
	}
	return persist.Rehydrate(scene), nil
}

// Save validates a scene document, normalizes it and stores it as a new version.
func (s *Service) Save(ctx context.Context, ownerID, contextID string, data []byte) (*Saved, error) {
	if !ValidContextID(contextID) {
		return nil, ErrInvalidContext
	}
	scene, err := document.UnmarshalScene(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	clean := persist.Sanitize(scene)
	normalized, err := document.MarshalScene(clean)
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}

	snap, err := s.scenes.SaveScene(ctx, ownerID, contextID, normalized)
	if err != nil {
		return nil, fmt.Errorf("save scene: %w", err)
	}
	return &Saved{ContextID: contextID, Version: snap.Version, Objects: len(clean.Objects)}, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, contextID string) error {
	if !ValidContextID(contextID) {
		return ErrInvalidContext
	}
	if err := s.scenes.DeleteScene(ctx, ownerID, contextID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete scene: %w", err)
	}
	return nil
}
