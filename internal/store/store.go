// Package store persists versioned scene snapshots and user accounts.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultRetention is the number of snapshots kept per scene.
const DefaultRetention = 20

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Snapshot is one saved version of a scene.
type Snapshot struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"ownerId"`
	ContextID string          `json:"contextId"`
	Version   int             `json:"version"`
	Document  json.RawMessage `json:"document"`
	CreatedAt time.Time       `json:"createdAt"`
}

// SceneSummary describes the latest state of one scene.
type SceneSummary struct {
	ContextID string    `json:"contextId"`
	Version   int       `json:"version"`
	Snapshots int       `json:"snapshots"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SceneStore keeps scene snapshots keyed by owner and context id. Every save
// appends a new version; older versions beyond the retention limit are pruned.
type SceneStore interface {
	SaveScene(ctx context.Context, ownerID, contextID string, document []byte) (*Snapshot, error)
	LoadScene(ctx context.Context, ownerID, contextID string) (*Snapshot, error)
	ListScenes(ctx context.Context, ownerID string) ([]SceneSummary, error)
	DeleteScene(ctx context.Context, ownerID, contextID string) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u User) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}

type Store interface {
	SceneStore
	UserStore
	Close() error
}

// Drivers accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Options struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
	Retention   int
}

// Open connects to the store selected by opts.Driver and applies its schema.
func Open(ctx context.Context, opts Options) (Store, error) {
	retention := opts.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}
	switch opts.Driver {
	case DriverPostgres:
		return NewPostgres(ctx, opts.DatabaseURL, retention)
	case DriverSQLite:
		return NewSQLite(ctx, opts.SQLitePath, retention)
	case DriverMemory, "":
		return NewMemory(retention), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
