package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inamate/canvasboard/internal/typeid"
)

// Postgres is the production Store backed by a pgx connection pool.
type Postgres struct {
	pool      *pgxpool.Pool
	retention int
}

func NewPostgres(ctx context.Context, databaseURL string, retention int) (*Postgres, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	p := &Postgres{pool: pool, retention: retention}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			display_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower ON users (lower(email))`,
		`CREATE TABLE IF NOT EXISTS scene_snapshots (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			context_id TEXT NOT NULL,
			version INTEGER NOT NULL,
			document JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (owner_id, context_id, version)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
	}
	return nil
}

func (p *Postgres) SaveScene(ctx context.Context, ownerID, contextID string, document []byte) (*Snapshot, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize concurrent saves of the same scene.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text || '/' || $2::text))`, ownerID, contextID); err != nil {
		return nil, fmt.Errorf("lock scene: %w", err)
	}

	var current int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM scene_snapshots WHERE owner_id = $1 AND context_id = $2`,
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
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO scene_snapshots (id, owner_id, context_id, version, document)
		VALUES ($1, $2, $3, $4, $5::jsonb) RETURNING created_at`,
		snap.ID, ownerID, contextID, snap.Version, string(document)).Scan(&snap.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM scene_snapshots WHERE owner_id = $1 AND context_id = $2 AND version <= $3`,
		ownerID, contextID, snap.Version-p.retention)
	if err != nil {
		return nil, fmt.Errorf("prune snapshots: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}
	return snap, nil
}

func (p *Postgres) LoadScene(ctx context.Context, ownerID, contextID string) (*Snapshot, error) {
	var snap Snapshot
	err := p.pool.QueryRow(ctx,
		`SELECT id, owner_id, context_id, version, document, created_at
		FROM scene_snapshots WHERE owner_id = $1 AND context_id = $2
		ORDER BY version DESC LIMIT 1`,
		ownerID, contextID).Scan(&snap.ID, &snap.OwnerID, &snap.ContextID, &snap.Version, &snap.Document, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return &snap, nil
}

func (p *Postgres) ListScenes(ctx context.Context, ownerID string) ([]SceneSummary, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT context_id, MAX(version), COUNT(*), MAX(created_at)
		FROM scene_snapshots WHERE owner_id = $1
		GROUP BY context_id
		ORDER BY MAX(created_at) DESC, context_id ASC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var out []SceneSummary
	for rows.Next() {
		var sum SceneSummary
		if err := rows.Scan(&sum.ContextID, &sum.Version, &sum.Snapshots, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteScene(ctx context.Context, ownerID, contextID string) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM scene_snapshots WHERE owner_id = $1 AND context_id = $2`, ownerID, contextID)
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateUser(ctx context.Context, u User) (*User, error) {
	if u.ID == "" {
		u.ID = typeid.NewUserID()
	}
	err := p.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, display_name, password_hash)
		VALUES ($1, $2, $3, $4) RETURNING created_at`,
		u.ID, u.Email, u.DisplayName, u.PasswordHash).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return p.getUser(ctx, `lower(email) = lower($1)`, email)
}

func (p *Postgres) GetUserByID(ctx context.Context, id string) (*User, error) {
	return p.getUser(ctx, `id = $1`, id)
}

func (p *Postgres) getUser(ctx context.Context, where, arg string) (*User, error) {
	var u User
	err := p.pool.QueryRow(ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

var (
	_ Store = (*Postgres)(nil)
	_ Store = (*SQLite)(nil)
	_ Store = (*Memory)(nil)
)
