package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fathima-sithara/hireloop-backend/internal/metrics"
)

const (
	relayChannel = "rt:events"
	presenceTTL  = 90 * time.Second
)

// Hub is the connection registry. It authenticates nothing itself (the
// handshake handler does) and touches no domain storage: it only fans
// events out to whoever is currently subscribed. All Publish* methods are
// fire-and-forget and safe on a nil hub, so callers never treat an absent
// or empty hub as an error.
type Hub struct {
	id  string
	cfg Config
	log *zap.SugaredLogger
	rdb *redis.Client

	mu       sync.RWMutex
	clients  map[*Client]struct{}
	channels map[string]map[*Client]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

type Config struct {
	PingInterval    time.Duration
	PongWait        time.Duration
	SendBufferSize  int
	RateLimitPerSec int
}

// NewHub creates the hub. rdb may be nil for single-node deployments; the
// redis relay and presence tracking are then skipped.
func NewHub(rdb *redis.Client, cfg Config, log *zap.SugaredLogger) *Hub {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 25 * time.Second
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = 256
	}
	if cfg.RateLimitPerSec <= 0 {
		cfg.RateLimitPerSec = 10
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		id:       uuid.NewString(),
		cfg:      cfg,
		log:      log,
		rdb:      rdb,
		clients:  make(map[*Client]struct{}),
		channels: make(map[string]map[*Client]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	if rdb != nil {
		go h.subscribeRelay()
	}
	return h
}

// Register places the client into its channels and marks presence.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	for _, ch := range c.channels {
		if h.channels[ch] == nil {
			h.channels[ch] = make(map[*Client]struct{})
		}
		h.channels[ch][c] = struct{}{}
	}
	h.mu.Unlock()

	metrics.WsConnections.Inc()
	h.setPresence(c.userID)
}

// Unregister removes the client from every channel. No durable side
// effects beyond dropping the presence key when the user's last
// connection goes away.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for _, ch := range c.channels {
		if conns, ok := h.channels[ch]; ok {
			delete(conns, c)
			if len(conns) == 0 {
				delete(h.channels, ch)
			}
		}
	}
	_, stillOnline := h.channels[ChannelForUser(c.userID)]
	h.mu.Unlock()

	metrics.WsConnections.Dec()
	if !stillOnline {
		h.clearPresence(c.userID)
	}
}

// PublishToUser delivers the event to every connection on the user's
// personal channel.
func (h *Hub) PublishToUser(userID, event string, payload any) {
	if h == nil {
		return
	}
	h.publish(ChannelForUser(userID), event, payload)
}

// PublishToRole delivers the event to the shared channel for a role.
func (h *Hub) PublishToRole(role, event string, payload any) {
	if h == nil {
		return
	}
	room := RoomForRole(role)
	if room == "" {
		return
	}
	h.publish(room, event, payload)
}

// PublishToAll delivers the event to every connection.
func (h *Hub) PublishToAll(event string, payload any) {
	if h == nil {
		return
	}
	h.publish("", event, payload)
}

func (h *Hub) publish(channel, event string, payload any) {
	b, err := json.Marshal(frame{Event: event, Data: payload})
	if err != nil {
		h.log.Warnw("marshal realtime frame", "event", event, "err", err)
		return
	}
	metrics.EventsPublished.WithLabelValues(event).Inc()
	h.deliverLocal(channel, b)
	h.relay(channel, event, payload)
}

func (h *Hub) deliverLocal(channel string, b []byte) {
	h.mu.RLock()
	var conns []*Client
	if channel == "" {
		conns = make([]*Client, 0, len(h.clients))
		for c := range h.clients {
			conns = append(conns, c)
		}
	} else {
		for c := range h.channels[channel] {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if !c.trySend(b) {
			// slow consumer: drop the connection rather than block the sender
			h.Unregister(c)
			c.close()
		}
	}
}

// relay publishes the envelope for other nodes. Best effort, like
// everything else on this path.
func (h *Hub) relay(channel, event string, payload any) {
	if h.rdb == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	env := envelope{Origin: h.id, Channel: channel, Event: event, Payload: raw}
	b, _ := json.Marshal(env)
	if err := h.rdb.Publish(context.Background(), relayChannel, b).Err(); err != nil {
		h.log.Debugw("redis relay publish", "err", err)
	}
}

func (h *Hub) subscribeRelay() {
	pubsub := h.rdb.Subscribe(context.Background(), relayChannel)
	defer pubsub.Close()
	ch := pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				h.log.Warn("redis relay subscription closed")
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			if env.Origin == h.id {
				continue
			}
			b, err := json.Marshal(frame{Event: env.Event, Data: env.Payload})
			if err != nil {
				continue
			}
			h.deliverLocal(env.Channel, b)
		}
	}
}

func (h *Hub) setPresence(userID string) {
	if h.rdb == nil {
		return
	}
	_ = h.rdb.Set(context.Background(), "presence:"+userID, "online", presenceTTL).Err()
}

func (h *Hub) clearPresence(userID string) {
	if h.rdb == nil {
		return
	}
	_ = h.rdb.Del(context.Background(), "presence:"+userID).Err()
}

// CheckPresence reports whether the user has a live connection on any node.
func (h *Hub) CheckPresence(userID string) bool {
	if h.rdb != nil {
		val, err := h.rdb.Get(context.Background(), "presence:"+userID).Result()
		return err == nil && val == "online"
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.channels[ChannelForUser(userID)]
	return ok
}

// ConnectionCount returns the number of live local connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown disconnects every client and stops background tasks.
func (h *Hub) Shutdown() {
	h.cancel()
	h.mu.Lock()
	conns := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		h.Unregister(c)
		c.close()
	}
}
