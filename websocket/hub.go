// file: websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"athmageeth-portal/logger"
	"athmageeth-portal/models"
)

// Hub tracks dashboard connections and fans change events out to them.
type Hub struct {
	mu       sync.RWMutex
	conns    map[*Connection]struct{}
	closed   bool
	upgrader websocket.Upgrader
}

// NewHub accepts upgrades from the listed origins. Requests without an
// Origin header (non-browser clients) are always accepted.
func NewHub(allowedOrigins ...string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimRight(o, "/"); o != "" {
			allowed[o] = true
		}
	}
	h := &Hub{conns: make(map[*Connection]struct{})}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed[origin]
		},
	}
	return h
}

// ServeWs upgrades the request and starts the connection pumps.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		logger.Warn.Printf("[ServeWs] upgrade from %v failed: %v", r.RemoteAddr, err)
		return
	}

	c := newConnection(h, wsConn)
	if !h.register(c) {
		_ = wsConn.Close()
		return
	}
	logger.Info.Printf("[ServeWs] dashboard connected from %v (%d open)", r.RemoteAddr, h.Count())

	go c.readPump()
	go c.writePump()
}

// Notify sends ev to every open dashboard. Slow clients drop the event
// rather than block the caller.
func (h *Hub) Notify(_ context.Context, ev models.ChangeEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error.Printf("[Hub.Notify] marshal %s: %v", ev.Action, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		select {
		case c.send <- msg:
		default:
			logger.Warn.Printf("[Hub.Notify] dropping %s for %v", ev.Action, c.conn.RemoteAddr())
		}
	}
}

// Count is the number of open dashboards.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close disconnects every dashboard and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.conns {
		close(c.send)
		delete(h.conns, c)
	}
}

func (h *Hub) register(c *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; ok {
		delete(h.conns, c)
		close(c.send)
	}
}
