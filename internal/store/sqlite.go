package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/inamate/canvasboard/internal/typeid"

	_ "modernc.org/sqlite"
)

// SQLite is a single-file Store for single-node deployments and the CLI.
type SQLite struct {
	db        *sql.DB
	retention int
}

func NewSQLite(ctx context.Context, path string, retention int) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection serializes writers; busy_timeout covers other processes.
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}
	s := &SQLite{db: db, retention: retention}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE COLLATE NOCASE,
			display_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS scene_snapshots (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			context_id TEXT NOT NULL,
			version INTEGER NOT NULL,
			document TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			UNIQUE(owner_id, context_id, version)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scene_snapshots_scene ON scene_snapshots(owner_id, context_id, version);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

func (s *SQLite) SaveScene(ctx context.Context, ownerID, contextID string, document []byte) (*Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM scene_snapshots WHERE owner_id = ? AND context_id = ?`,
		ownerID, contextID).Scan(&current)
	if err != nil {
		return nil, fmt.Errorf("read scene version: %w", err)
	}

	snap := &Snapshot{
		ID:        typeid.NewSnapshotID(),
		OwnerID:   ownerID,
		ContextID: contextID,
		Version:   current + 1,
		Document:  append([]byte(nil), document...),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO scene_snapshots (id, owner_id, context_id, version, document, created_at_unixms) VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, ownerID, contextID, snap.Version, string(document), snap.CreatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM scene_snapshots WHERE owner_id = ? AND context_id = ? AND version <= ?`,
		ownerID, contextID, snap.Version-s.retention)
	if err != nil {
		return nil, fmt.Errorf("prune snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}
	return snap, nil
}

func (s *SQLite) LoadScene(ctx context.Context, ownerID, contextID string) (*Snapshot, error) {
	var (
		snap      Snapshot
		document  string
		createdMs int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, context_id, version, document, created_at_unixms
		FROM scene_snapshots WHERE owner_id = ? AND context_id = ?
		ORDER BY version DESC LIMIT 1`,
		ownerID, contextID).Scan(&snap.ID, &snap.OwnerID, &snap.ContextID, &snap.Version, &document, &createdMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	snap.Document = []byte(document)
	snap.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &snap, nil
}

func (s *SQLite) ListScenes(ctx context.Context, ownerID string) ([]SceneSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT context_id, MAX(version), COUNT(*), MAX(created_at_unixms)
		FROM scene_snapshots WHERE owner_id = ?
		GROUP BY context_id
		ORDER BY MAX(created_at_unixms) DESC, context_id ASC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var out []SceneSummary
	for rows.Next() {
		var (
			sum       SceneSummary
			updatedMs int64
		)
		if err := rows.Scan(&sum.ContextID, &sum.Version, &sum.Snapshots, &updatedMs); err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		sum.UpdatedAt = time.UnixMilli(updatedMs).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLite) DeleteScene(ctx context.Context, ownerID, contextID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM scene_snapshots WHERE owner_id = ? AND context_id = ?`, ownerID, contextID)
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) CreateUser(ctx context.Context, u User) (*User, error) {
	if u.ID == "" {
		u.ID = typeid.NewUserID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, created_at_unixms) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.DisplayName, u.PasswordHash, u.CreatedAt.UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, `email = ?`, email)
}

func (s *SQLite) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.getUser(ctx, `id = ?`, id)
}

func (s *SQLite) getUser(ctx context.Context, where string, arg string) (*User, error) {
	var (
		u         User
		createdMs int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at_unixms FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &createdMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &u, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
