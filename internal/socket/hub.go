package socket

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Hub tracks the websocket connections of dispatch watchers. Location frames
// are fanned out to every registered watcher.
type Hub struct {
	// clients maps a connection id to its websocket connection.
	clients map[string]*websocket.Conn
	// mu guards clients against concurrent access from handler goroutines.
	mu sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// Register adds a new client to the Hub.
func (h *Hub) Register(connID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[connID] = conn
	logrus.Infof("WebSocket client registered: %s", connID)
}

// Unregister removes a client from the Hub.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[connID]; ok {
		delete(h.clients, connID)
		logrus.Infof("WebSocket client unregistered: %s", connID)
	}
}

// Broadcast sends a message to every registered watcher. A failed write is
// logged and skipped; a gone watcher must never block telemetry.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for connID, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logrus.Warnf("WebSocket write to %s failed: %v", connID, err)
		}
	}
}
