package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/canvasboard/internal/asset"
	"github.com/inamate/canvasboard/internal/auth"
	"github.com/inamate/canvasboard/internal/board"
	"github.com/inamate/canvasboard/internal/config"
	"github.com/inamate/canvasboard/internal/export"
	mw "github.com/inamate/canvasboard/internal/middleware"
	"github.com/inamate/canvasboard/internal/remote"
	"github.com/inamate/canvasboard/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, store.Options{
		Driver:      cfg.StoreDriver,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		Retention:   cfg.SnapshotRetention,
	})
	if err != nil {
		slog.Error("open store", "error", err, "driver", cfg.StoreDriver)
		os.Exit(1)
	}
	defer st.Close()

	authService := auth.NewService(st, cfg.JWTSecret, auth.Options{TokenTTL: cfg.TokenTTL})
	authHandler := auth.NewHandler(authService)

	boardHandler := board.NewHandler(board.NewService(st))
	assetHandler := asset.NewHandler(cfg.MaxImageDimension)
	exportHandler := export.NewHandler()

	hub := remote.NewHub(st, remote.Options{Debounce: cfg.AutosaveDebounce})
	go hub.Run()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Asset and export endpoints work without an account so local-only
	// canvases can still place images and download snapshots.
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST")
	r.HandleFunc("/api/export", exportHandler.ExportScene).Methods("POST")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/auth/me", authHandler.Me).Methods("GET")
	boardHandler.Routes(api)

	// WebSocket endpoint
	r.HandleFunc("/ws/canvas/{contextId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, cfg.OriginHosts())
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mw.CORS(cfg.Origins())(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		// Stop the hub first so pending autosaves reach the store.
		if err := hub.Stop(shutdownCtx); err != nil {
			slog.Error("flush canvases", "error", err)
		}
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "store", cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *remote.Hub, authSvc *auth.Service, origins []string) {
	contextID := mux.Vars(r)["contextId"]
	if !board.ValidContextID(contextID) {
		http.Error(w, "invalid context id", http.StatusBadRequest)
		return
	}

	// Without a valid token the canvas still works, it just never persists.
	sess := authSvc.SessionFor(r, contextID)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	hub.Serve(r.Context(), conn, sess)
}
