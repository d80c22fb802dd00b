package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/vikasavnish/movein/internal/models"
	"github.com/vikasavnish/movein/internal/pkg/response"
	"github.com/vikasavnish/movein/internal/utils"
)

const writeWait = 10 * time.Second

type envelope struct {
	userID uint
	msg    models.Message
}

// Hub keeps the open favorites feeds and fans messages out to them.
type Hub struct {
	mu          sync.Mutex
	connections map[*websocket.Conn]uint

	// Messages waiting for the Run loop
	broadcast chan envelope

	upgrader websocket.Upgrader
}

// NewHub creates a new hub for managing WebSocket connections
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*websocket.Conn]uint),
		broadcast:   make(chan envelope, 64),
		upgrader: websocket.Upgrader{
			// Allow all origins for WebSocket connections; CORS is handled by the router
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run delivers queued messages until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

func (h *Hub) deliver(env envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, userID := range h.connections {
		if userID != env.userID {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(env.msg); err != nil {
			log.Warn().Err(err).Uint("user_id", userID).Msg("dropping websocket client")
			conn.Close()
			delete(h.connections, conn)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.connections {
		conn.Close()
		delete(h.connections, conn)
	}
}

// HandleWebSocket upgrades the request of an authenticated user to a feed.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	user, err := utils.GetUserFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.connections[ws] = user.ID
	h.mu.Unlock()

	// Read until the client goes away; the feed is one-way.
	go func() {
		defer h.remove(ws)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) remove(ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[ws]; ok {
		ws.Close()
		delete(h.connections, ws)
	}
}

// Broadcast queues msg for every feed opened by the given user. The message
// is dropped when the queue is full.
func (h *Hub) Broadcast(userID uint, msg models.Message) {
	select {
	case h.broadcast <- envelope{userID: userID, msg: msg}:
	default:
		log.Warn().Str("type", msg.Type).Msg("websocket queue full, message dropped")
	}
}

// Count returns the number of open feeds.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}
