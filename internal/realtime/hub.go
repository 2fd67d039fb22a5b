// Package realtime pushes collection events to websocket subscribers.
package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/hotrank/internal/contracts"
	"github.com/wonny/hotrank/pkg/logger"
)

const (
	// Ping/Pong settings
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	clientBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	out  chan contracts.CollectionEvent
	done chan struct{}
}

// Hub fans out collection events to connected websocket clients.
// New clients first receive the recent event history.
// ⭐ SSOT: 수집 이벤트 실시간 전파는 이 허브에서만
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	history []contracts.CollectionEvent
	limit   int
	logger  *logger.Logger
}

// NewHub creates a hub keeping the last limit events
func NewHub(limit int, log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		history: make([]contracts.CollectionEvent, 0, limit),
		limit:   limit,
		logger:  log.Module("realtime"),
	}
}

// NotifyCollection records the event and broadcasts it. Slow clients drop events.
func (h *Hub) NotifyCollection(_ context.Context, event contracts.CollectionEvent) {
	h.mu.Lock()
	h.history = append(h.history, event)
	if h.limit > 0 && len(h.history) > h.limit {
		h.history = h.history[len(h.history)-h.limit:]
	}
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case c.out <- event:
		default:
			h.logger.Debug("Dropping event for slow websocket client")
		}
	}
}

// History returns a copy of the recent events, oldest first
func (h *Hub) History() []contracts.CollectionEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]contracts.CollectionEvent, len(h.history))
	copy(out, h.history)
	return out
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams events until the client disconnects
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{
		conn: conn,
		out:  make(chan contracts.CollectionEvent, clientBuffer),
		done: make(chan struct{}),
	}

	h.register(c)

	go h.writeLoop(c)
	h.readLoop(c)

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	close(c.done)
	conn.Close()
}

// register queues the history and adds c in one critical section, so every
// event is either replayed or streamed live, never lost in between
func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range h.history {
		select {
		case c.out <- e:
		default:
		}
	}
	h.clients[c] = struct{}{}
}

// readLoop discards client messages and returns when the connection drops
func (h *Hub) readLoop(c *client) {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case e := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(e); err != nil {
				c.conn.Close()
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}
