// Package remote runs canvas engines on the server for websocket clients. Each
// connection owns one engine session and one persistence bridge; there is no
// state shared between connections.
package remote

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/inamate/canvasboard/internal/auth"
	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/engine"
	"github.com/inamate/canvasboard/internal/persist"
	"github.com/inamate/canvasboard/internal/store"
)

type Options struct {
	Debounce      time.Duration
	FrameInterval time.Duration
}

type Hub struct {
	scenes store.SceneStore
	opts   Options

	mu       sync.RWMutex
	clients  map[string]*Client // clientID -> client
	flushing sync.WaitGroup

	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub(scenes store.SceneStore, opts Options) *Hub {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	return &Hub{
		scenes:     scenes,
		opts:       opts,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.stop:
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stop:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NewClient builds a client with a fresh engine bound to sess. Persistence is
// only wired for authenticated sessions; everyone else edits locally.
func (h *Hub) NewClient(conn *websocket.Conn, sess auth.Session) *Client {
	var svc persist.Service
	if sess.Authenticated {
		svc = persist.NewStoreService(h.scenes, sess.UserID)
	}
	session := engine.NewSession(engine.NewEngine())
	return &Client{
		hub:           h,
		conn:          conn,
		send:          make(chan []byte, 256),
		session:       session,
		bridge:        persist.NewBridge(session, svc, persist.BridgeOpts{Debounce: h.opts.Debounce}),
		frameTick:     h.opts.FrameInterval,
		ClientID:      uuid.New().String(),
		UserID:        sess.UserID,
		ContextID:     sess.ContextID,
		Authenticated: sess.Authenticated,
	}
}

// Serve runs a connection until it closes: the client is registered, its
// context is loaded and the pumps are started. It blocks on the read pump.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, sess auth.Session) {
	select {
	case <-h.stop:
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	default:
	}

	client := h.NewClient(conn, sess)
	h.Register(client)

	client.bridge.SwitchContext(ctx, client.ContextID, client.Authenticated)
	client.reply(TypeWelcome, 0, WelcomePayload{
		ClientID:      client.ClientID,
		ContextID:     client.ContextID,
		Authenticated: client.Authenticated,
		Pens:          penCatalog(),
		Frames:        document.FramePresets(),
	})

	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ClientID] = client
	h.mu.Unlock()

	slog.Info("client joined", "client", client.ClientID, "user", client.UserID, "context", client.ContextID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ClientID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.ClientID)
	close(client.send)
	h.mu.Unlock()

	h.flushing.Add(1)
	go func() {
		defer h.flushing.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		if err := client.bridge.Close(ctx); err != nil {
			slog.Warn("flush on disconnect failed", "error", err, "client", client.ClientID, "context", client.ContextID)
		}
	}()

	slog.Info("client left", "client", client.ClientID, "context", client.ContextID)
}

// Stop shuts the hub down, flushing every pending autosave before closing the
// remaining connections.
func (h *Hub) Stop(ctx context.Context) error {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for id, c := range h.clients {
		clients = append(clients, c)
		delete(h.clients, id)
	}
	h.mu.Unlock()

	var errs []error
	for _, c := range clients {
		if err := c.bridge.Close(ctx); err != nil {
			errs = append(errs, err)
		}
		c.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}

	flushed := make(chan struct{})
	go func() {
		h.flushing.Wait()
		close(flushed)
	}()
	select {
	case <-flushed:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}

	slog.Info("hub stopped", "clients", len(clients))
	return errors.Join(errs...)
}
