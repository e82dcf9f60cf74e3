package preview

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/vtree/pkg/surface/memdom"
)

// MessageType identifies a message sent to preview clients.
type MessageType string

const (
	MessageHello     MessageType = "hello"
	MessageMutations MessageType = "mutations"
	MessageError     MessageType = "error"
)

// Message is sent to clients via WebSocket.
type Message struct {
	Type      MessageType       `json:"type"`
	ClientID  string            `json:"client_id,omitempty"`
	Mutations []memdom.Mutation `json:"mutations,omitempty"`
	HTML      string            `json:"html,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Hub manages WebSocket connections of preview clients.
type Hub struct {
	clients  map[*websocket.Conn]string
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// snapshot returns the current surface HTML for new clients.
	snapshot func() string
}

func newHub(logger *slog.Logger, snapshot func() string) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]string),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:   logger,
		snapshot: snapshot,
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the
// client disconnects. The client first receives a hello carrying its id
// and the current surface.
func (h *Hub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	id := uuid.NewString()

	hello, _ := json.Marshal(Message{Type: MessageHello, ClientID: id, HTML: h.snapshot()})
	h.mu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, hello)
	if err == nil {
		h.clients[conn] = id
	}
	h.mu.Unlock()
	if err != nil {
		conn.Close()
		return
	}
	h.logger.Info("preview client connected", "client", id)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
	h.logger.Info("preview client disconnected", "client", id)
}

// Broadcast sends msg to all connected clients.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	// Writes happen under the lock: a gorilla connection supports one
	// concurrent writer.
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, id := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("dropping preview client", "client", id, "error", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
