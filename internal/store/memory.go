package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/inamate/canvasboard/internal/typeid"
)

// Memory is an in-process Store for tests and throwaway servers.
type Memory struct {
	retention int

	mu     sync.RWMutex
	scenes map[sceneKey][]Snapshot
	users  map[string]User
}

type sceneKey struct {
	owner   string
	context string
}

func NewMemory(retention int) *Memory {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Memory{
		retention: retention,
		scenes:    make(map[sceneKey][]Snapshot),
		users:     make(map[string]User),
	}
}

func (m *Memory) SaveScene(_ context.Context, ownerID, contextID string, document []byte) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sceneKey{ownerID, contextID}
	versions := m.scenes[key]
	next := 1
	if n := len(versions); n > 0 {
		next = versions[n-1].Version + 1
	}
	snap := Snapshot{
		ID:        typeid.NewSnapshotID(),
		OwnerID:   ownerID,
		ContextID: contextID,
		Version:   next,
		Document:  slices.Clone(document),
		CreatedAt: time.Now().UTC(),
	}
	versions = append(versions, snap)
	if over := len(versions) - m.retention; over > 0 {
		versions = slices.Delete(versions, 0, over)
	}
	m.scenes[key] = versions

	out := snap
	out.Document = slices.Clone(snap.Document)
	return &out, nil
}

func (m *Memory) LoadScene(_ context.Context, ownerID, contextID string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	versions := m.scenes[sceneKey{ownerID, contextID}]
	if len(versions) == 0 {
		return nil, ErrNotFound
	}
	snap := versions[len(versions)-1]
	snap.Document = slices.Clone(snap.Document)
	return &snap, nil
}

func (m *Memory) ListScenes(_ context.Context, ownerID string) ([]SceneSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []SceneSummary
	for key, versions := range m.scenes {
		if key.owner != ownerID || len(versions) == 0 {
			continue
		}
		latest := versions[len(versions)-1]
		out = append(out, SceneSummary{
			ContextID: key.context,
			Version:   latest.Version,
			Snapshots: len(versions),
			UpdatedAt: latest.CreatedAt,
		})
	}
	slices.SortFunc(out, func(a, b SceneSummary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ContextID, b.ContextID)
	})
	return out, nil
}

func (m *Memory) DeleteScene(_ context.Context, ownerID, contextID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sceneKey{ownerID, contextID}
	if _, ok := m.scenes[key]; !ok {
		return ErrNotFound
	}
	delete(m.scenes, key)
	return nil
}

func (m *Memory) CreateUser(_ context.Context, u User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = typeid.NewUserID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	m.users[u.ID] = u
	return &u, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetUserByID(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) Close() error { return nil }
