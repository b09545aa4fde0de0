package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"github.com/inamate/canvasboard/internal/engine"
	"github.com/inamate/canvasboard/internal/persist"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 12 * 1024 * 1024 // image.place carries a data URI

	// DefaultFrameInterval batches frames to one per display refresh.
	DefaultFrameInterval = 16 * time.Millisecond
)

// Client is one websocket connection driving its own engine session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	session   *engine.Session
	bridge    *persist.Bridge
	frameTick time.Duration

	ClientID      string
	UserID        string
	ContextID     string
	Authenticated bool
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "client", c.ClientID)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "client", c.ClientID)
			c.sendError(0, "invalid message")
			continue
		}

		c.handle(ctx, &msg)
	}
}

// WritePump drains queued replies, pushes the latest frame once per tick when
// the engine changed, and keeps the connection alive with pings.
func (c *Client) WritePump(ctx context.Context) {
	pings := time.NewTicker(pingPeriod)
	frames := time.NewTicker(c.frameTick)
	defer func() {
		pings.Stop()
		frames.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(ctx, message); err != nil {
				slog.Debug("write error", "error", err, "client", c.ClientID)
				return
			}

		case <-frames.C:
			frame, changed := c.session.Tick()
			if !changed {
				continue
			}
			msg, err := newMessage(TypeFrame, 0, frame)
			if err != nil {
				slog.Error("marshal frame", "error", err)
				continue
			}
			data, _ := json.Marshal(msg)
			if err := c.write(ctx, data); err != nil {
				slog.Debug("write error", "error", err, "client", c.ClientID)
				return
			}

		case <-pings.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(writeCtx, websocket.MessageText, data)
}

func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "client", c.ClientID)
	}
}

func (c *Client) reply(typ string, seq int64, payload any) {
	msg, err := newMessage(typ, seq, payload)
	if err != nil {
		slog.Error("marshal payload", "error", err, "type", typ)
		return
	}
	c.Send(msg)
}

func (c *Client) sendError(seq int64, message string) {
	c.reply(TypeError, seq, ErrorPayload{Message: message})
}
