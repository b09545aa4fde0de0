package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func stores(t *testing.T, retention int) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "board.sqlite"), retention)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Store{
		"memory": NewMemory(retention),
		"sqlite": sqlite,
	}
}

func TestSaveAndLoadScene(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t, 3) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.LoadScene(ctx, "u1", "ctx"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("LoadScene on empty store: err = %v, want ErrNotFound", err)
			}

			for i, doc := range []string{`{"v":1}`, `{"v":2}`} {
				snap, err := s.SaveScene(ctx, "u1", "ctx", []byte(doc))
				if err != nil {
					t.Fatalf("SaveScene: %v", err)
				}
				if snap.Version != i+1 {
					t.Errorf("version = %d, want %d", snap.Version, i+1)
				}
			}

			got, err := s.LoadScene(ctx, "u1", "ctx")
			if err != nil {
				t.Fatalf("LoadScene: %v", err)
			}
			if string(got.Document) != `{"v":2}` || got.Version != 2 {
				t.Errorf("latest = v%d %s, want v2 {\"v\":2}", got.Version, got.Document)
			}

			if _, err := s.LoadScene(ctx, "u2", "ctx"); !errors.Is(err, ErrNotFound) {
				t.Errorf("scenes leaked across owners: err = %v", err)
			}
		})
	}
}

func TestSaveScene_PrunesToRetention(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t, 3) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				if _, err := s.SaveScene(ctx, "u1", "ctx", []byte(`{}`)); err != nil {
					t.Fatalf("SaveScene: %v", err)
				}
			}
			list, err := s.ListScenes(ctx, "u1")
			if err != nil {
				t.Fatalf("ListScenes: %v", err)
			}
			if len(list) != 1 {
				t.Fatalf("len(list) = %d, want 1", len(list))
			}
			if list[0].Version != 5 || list[0].Snapshots != 3 {
				t.Errorf("summary = %+v, want version 5 with 3 snapshots", list[0])
			}
		})
	}
}

func TestDeleteScene(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t, 3) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.SaveScene(ctx, "u1", "ctx", []byte(`{}`)); err != nil {
				t.Fatal(err)
			}
			if err := s.DeleteScene(ctx, "u1", "ctx"); err != nil {
				t.Fatalf("DeleteScene: %v", err)
			}
			if err := s.DeleteScene(ctx, "u1", "ctx"); !errors.Is(err, ErrNotFound) {
				t.Errorf("second delete err = %v, want ErrNotFound", err)
			}
			if _, err := s.LoadScene(ctx, "u1", "ctx"); !errors.Is(err, ErrNotFound) {
				t.Errorf("load after delete err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t, 3) {
		t.Run(name, func(t *testing.T) {
			u, err := s.CreateUser(ctx, User{Email: "ada@example.com", DisplayName: "Ada", PasswordHash: "hash"})
			if err != nil {
				t.Fatalf("CreateUser: %v", err)
			}
			if u.ID == "" {
				t.Fatal("CreateUser did not assign an id")
			}
			if _, err := s.CreateUser(ctx, User{Email: "ADA@example.com", DisplayName: "Dup"}); !errors.Is(err, ErrConflict) {
				t.Errorf("duplicate email err = %v, want ErrConflict", err)
			}

			byEmail, err := s.GetUserByEmail(ctx, "ada@example.com")
			if err != nil || byEmail.ID != u.ID || byEmail.PasswordHash != "hash" {
				t.Errorf("GetUserByEmail = %+v, %v", byEmail, err)
			}
			byID, err := s.GetUserByID(ctx, u.ID)
			if err != nil || byID.Email != "ada@example.com" {
				t.Errorf("GetUserByID = %+v, %v", byID, err)
			}
			if _, err := s.GetUserByID(ctx, "user_missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("missing user err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "mongo"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}
