package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/interfaces"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebSocketHandler pushes bus events (source changes, summary state,
// session lifecycle) to connected clients.
type WebSocketHandler struct {
	logger      arbor.ILogger
	events      interfaces.EventService
	clients     map[*websocket.Conn]*sync.Mutex
	mu          sync.RWMutex
	unsubscribe []func()
}

// NewWebSocketHandler creates a websocket handler subscribed to the
// broadcastable event types.
func NewWebSocketHandler(events interfaces.EventService, logger arbor.ILogger) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:  logger,
		events:  events,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}

	for _, eventType := range []interfaces.EventType{
		interfaces.EventSourceCreated,
		interfaces.EventSourceDeleted,
		interfaces.EventSourceToggled,
		interfaces.EventSummaryReady,
		interfaces.EventSummaryCleared,
		interfaces.EventSessionCreated,
		interfaces.EventSessionDisposed,
	} {
		h.unsubscribe = append(h.unsubscribe, events.Subscribe(eventType, h.broadcast))
	}

	return h
}

// ServeHTTP upgrades the connection and keeps it registered until the
// client disconnects.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("clients", count).Msg("WebSocket client connected")

	// Drain reads until the client goes away
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *WebSocketHandler) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// broadcast sends an event to every connected client. Writes are serialized
// per connection.
func (h *WebSocketHandler) broadcast(event interfaces.Event) {
	h.mu.RLock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, mu := range h.clients {
		conns[conn] = mu
	}
	h.mu.RUnlock()

	for conn, mu := range conns {
		mu.Lock()
		err := conn.WriteJSON(event)
		mu.Unlock()
		if err != nil {
			h.logger.Debug().Err(err).Msg("WebSocket write failed, dropping client")
			h.remove(conn)
		}
	}
}

// Close unsubscribes from the bus and disconnects all clients
func (h *WebSocketHandler) Close() {
	for _, unsub := range h.unsubscribe {
		unsub()
	}

	h.mu.Lock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]*sync.Mutex)
	h.mu.Unlock()
}
