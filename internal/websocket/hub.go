package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"salesledger/internal/middleware"
	"salesledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced on the REST API; the socket only carries the owner's own events
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client represents a single connected WebSocket client
type Client struct {
	Hub     *Hub
	OwnerID uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
}

type delivery struct {
	ownerID uuid.UUID
	payload []byte
}

// Hub keeps the active connections per owner and fans events out to them
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	deliver    chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        *zap.Logger
}

var _ service.Notifier = (*Hub)(nil)

// NewHub initializes a new WS Hub instance
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		deliver:    make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.Named("ws"),
	}
}

// Run dispatches registrations and events until ctx is done. Once it returns
// the hub refuses new connections.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.OwnerID] == nil {
				h.clients[client.OwnerID] = make(map[*Client]bool)
			}
			h.clients[client.OwnerID][client] = true
			h.mu.Unlock()
			h.log.Debug("client connected", zap.String("owner_id", client.OwnerID.String()))
		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			h.log.Debug("client disconnected", zap.String("owner_id", client.OwnerID.String()))
		case d := <-h.deliver:
			h.mu.Lock()
			for client := range h.clients[d.ownerID] {
				select {
				case client.Send <- d.payload:
				default:
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with h.mu held
func (h *Hub) remove(client *Client) {
	owned, ok := h.clients[client.OwnerID]
	if !ok || !owned[client] {
		return
	}
	delete(owned, client)
	close(client.Send)
	if len(owned) == 0 {
		delete(h.clients, client.OwnerID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, owned := range h.clients {
		for client := range owned {
			h.remove(client)
		}
	}
}

// Notify queues event for every connection of ownerID. Events are dropped
// when the queue is full.
func (h *Hub) Notify(ownerID uuid.UUID, event service.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to encode event", zap.String("event", event.Event), zap.Error(err))
		return
	}
	select {
	case h.deliver <- delivery{ownerID: ownerID, payload: payload}:
	default:
		h.log.Warn("event queue full, dropping event", zap.String("event", event.Event))
	}
}

// Connections returns how many sockets ownerID has open
func (h *Hub) Connections(ownerID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[ownerID])
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	defer func() {
		_ = c.Conn.Close()
	}()
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump drains the connection so close frames are noticed
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		_ = c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
	}
}

// ServeWs authenticates the ?token= access token and upgrades the request
func ServeWs(hub *Hub, c *gin.Context, secret []byte) {
	tokenString := c.Query("token")
	if tokenString == "" {
		hub.log.Debug("connection rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ownerID, err := middleware.ParseAccessToken(tokenString, secret)
	if err != nil {
		hub.log.Debug("connection rejected", zap.Error(err))
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{Hub: hub, OwnerID: ownerID, Conn: conn, Send: make(chan []byte, 256)}
	select {
	case hub.register <- client:
	case <-hub.done:
		hub.log.Debug("connection rejected: hub stopped")
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
