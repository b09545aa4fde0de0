package config

import (
	"log/slog"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AutosaveDebounce != time.Second {
		t.Errorf("AutosaveDebounce = %v, want 1s", cfg.AutosaveDebounce)
	}
	if cfg.SnapshotRetention != 20 || cfg.MaxImageDimension != 1600 {
		t.Errorf("retention/max image = %d/%d", cfg.SnapshotRetention, cfg.MaxImageDimension)
	}
	if cfg.Level() != slog.LevelInfo {
		t.Errorf("Level = %v, want info", cfg.Level())
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("AUTOSAVE_DEBOUNCE", "250ms")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALLOWED_ORIGINS", "https://board.example.com, http://localhost:5173 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AutosaveDebounce != 250*time.Millisecond {
		t.Errorf("AutosaveDebounce = %v", cfg.AutosaveDebounce)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level = %v, want debug", cfg.Level())
	}
	wantHosts := []string{"board.example.com", "localhost:5173"}
	if got := cfg.OriginHosts(); !reflect.DeepEqual(got, wantHosts) {
		t.Errorf("OriginHosts = %v, want %v", got, wantHosts)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	if _, err := Load(); err == nil {
		t.Error("expected error for unknown driver")
	}
}
