package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains tenant_id -> set of connections and broadcasts reservation
// board events. Uses Redis pub/sub for horizontal scaling: local broadcast
// plus publish to Redis for other instances.
type Hub struct {
	// tenantID -> map[clientID]*Client
	rooms    map[uuid.UUID]map[string]*Client
	subs     map[uuid.UUID]func() // cancel Redis subscription per tenant
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
}

// RedisPublisher publishes tenant events to Redis for cross-instance broadcast.
type RedisPublisher interface {
	PublishTenantEvent(tenantID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to tenant channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeTenant(tenantID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	return &Hub{
		rooms:    make(map[uuid.UUID]map[string]*Client),
		subs:     make(map[uuid.UUID]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client to its tenant room. Starts the Redis subscription
// for the tenant when the first client joins.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.TenantID] == nil {
		h.rooms[c.TenantID] = make(map[string]*Client)
		if h.redisSub != nil {
			cancel, err := h.redisSub.SubscribeTenant(c.TenantID, func(event string, payload []byte) {
				h.BroadcastToTenant(c.TenantID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.TenantID] = cancel
			}
		}
	}
	h.rooms[c.TenantID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined tenant room",
		zap.String("client_id", c.ID), zap.String("tenant_id", c.TenantID.String()))
}

// Unregister removes a client from its tenant room. Cancels the Redis
// subscription when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.TenantID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.rooms, c.TenantID)
			if cancel, ok := h.subs[c.TenantID]; ok {
				cancel()
				delete(h.subs, c.TenantID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left tenant room",
		zap.String("client_id", c.ID), zap.String("tenant_id", c.TenantID.String()))
}

// BroadcastToTenant sends a message to all clients in a tenant room (local only).
func (h *Hub) BroadcastToTenant(tenantID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.rooms[tenantID]
	h.mu.RUnlock()

	if clients == nil {
		return
	}
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// BroadcastToTenantAndPublish sends to local clients and publishes to Redis
// for other instances.
func (h *Hub) BroadcastToTenantAndPublish(tenantID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.BroadcastToTenant(tenantID, event, payload)
	if h.redis != nil {
		_ = h.redis.PublishTenantEvent(tenantID, event, data)
	}
}

// ViewerCount returns the number of connected clients in a tenant room.
func (h *Hub) ViewerCount(tenantID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[tenantID])
}
