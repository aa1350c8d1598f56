package ws

import (
	"encoding/json"
	"sync"
	"time"

	"go-doc-ledger/internal/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Client struct {
	TenantID uuid.UUID
	Conn     Conn
}

type message struct {
	tenantID uuid.UUID
	data     []byte
}

// Event is the envelope sent to subscribers.
type Event struct {
	Event    string      `json:"event"`
	TenantID uuid.UUID   `json:"tenant_id"`
	SentAt   time.Time   `json:"sent_at"`
	Payload  interface{} `json:"payload"`
}

// Hub fans ledger events out to the websocket clients of one tenant.
type Hub struct {
	clients    map[uuid.UUID]map[Conn]bool
	register   chan Client
	unregister chan Client
	broadcast  chan message
	quit       chan struct{}
	closeOnce  sync.Once
	mutex      sync.Mutex
	log        *logrus.Entry
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[Conn]bool),
		register:   make(chan Client),
		unregister: make(chan Client),
		broadcast:  make(chan message, 256),
		quit:       make(chan struct{}),
		log:        logger.WithComponent("ws"),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mutex.Lock()
			if h.clients[c.TenantID] == nil {
				h.clients[c.TenantID] = make(map[Conn]bool)
			}
			h.clients[c.TenantID][c.Conn] = true
			h.mutex.Unlock()
			h.log.WithField("tenant_id", c.TenantID).Debug("ws client connected")

		case c := <-h.unregister:
			h.mutex.Lock()
			h.drop(c.TenantID, c.Conn)
			h.mutex.Unlock()

		case msg := <-h.broadcast:
			h.mutex.Lock()
			for conn := range h.clients[msg.tenantID] {
				if err := conn.WriteMessage(websocket.TextMessage, msg.data); err != nil {
					h.drop(msg.tenantID, conn)
				}
			}
			h.mutex.Unlock()

		case <-h.quit:
			h.mutex.Lock()
			for tenantID, conns := range h.clients {
				for conn := range conns {
					h.drop(tenantID, conn)
				}
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Register adds a connection to its tenant. It reports false, closing the
// connection, once the hub has been closed.
func (h *Hub) Register(c Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		_ = c.Conn.Close()
		return false
	}
}

// Unregister removes a connection. It returns immediately after Close.
func (h *Hub) Unregister(c Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// Close stops Run and disconnects every client.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
}

func (h *Hub) drop(tenantID uuid.UUID, conn Conn) {
	conns := h.clients[tenantID]
	if _, ok := conns[conn]; !ok {
		return
	}
	delete(conns, conn)
	_ = conn.Close()
	if len(conns) == 0 {
		delete(h.clients, tenantID)
	}
}

// ClientCount reports the connected clients of a tenant.
func (h *Hub) ClientCount(tenantID uuid.UUID) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients[tenantID])
}

// NotifyTenant queues an event for the tenant's clients. It never blocks the caller;
// when the queue is full the event is dropped and logged.
func (h *Hub) NotifyTenant(tenantID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(Event{Event: event, TenantID: tenantID, SentAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		logger.LogError("ws", "NotifyTenant", event, tenantID, err)
		return
	}
	select {
	case h.broadcast <- message{tenantID: tenantID, data: data}:
	default:
		h.log.WithFields(logrus.Fields{"tenant_id": tenantID, "event": event}).Warn("ws broadcast queue full; event dropped")
	}
}
