package ws

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// conn is the subset of *websocket.Conn the client needs. Narrowed so hub
// tests can substitute a stub.
type conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	Close() error
}

// Client is a single websocket connection with its channel memberships.
type Client struct {
	id       string
	userID   string
	channels []string
	conn     conn
	send     chan []byte
	done     chan struct{}
	hub      *Hub
	limiter  *rate.Limiter
	closed   int32
}

func NewClient(c conn, userID string, channels []string, hub *Hub) *Client {
	return &Client{
		id:       uuid.NewString(),
		userID:   userID,
		channels: channels,
		conn:     c,
		send:     make(chan []byte, hub.cfg.SendBufferSize),
		done:     make(chan struct{}),
		hub:      hub,
		limiter:  rate.NewLimiter(rate.Limit(hub.cfg.RateLimitPerSec), hub.cfg.RateLimitPerSec),
	}
}

func (c *Client) UserID() string { return c.userID }

// trySend queues a frame without blocking. Reports false when the client
// is gone or its buffer is full.
func (c *Client) trySend(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// readPump consumes inbound frames. The hub is a push transport, so the
// only inbound traffic it honors is keepalive: ws pongs refresh the read
// deadline, and an app-level {"type":"ping"} gets a pong event back for
// clients behind proxies that strip control frames. Everything else is
// ignored.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
		c.hub.setPresence(c.userID)
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if !c.limiter.Allow() {
			continue
		}
		var in struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &in); err != nil {
			continue
		}
		if in.Type == "ping" {
			_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
			b, _ := json.Marshal(frame{Event: "pong"})
			c.trySend(b)
		}
	}
}

// writePump drains the send channel and pings on an interval so
// intermediary proxies keep the connection alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		close(c.done)
		_ = c.conn.Close()
	}
}
