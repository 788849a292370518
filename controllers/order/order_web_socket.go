// order_websocket.go
package orderControllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ayushmanmishra18/storefront-api/models"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many orders a client may lag behind before it is dropped.
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// feedClient owns one connection. Only its writer goroutine writes to conn.
type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans new orders out to connected admin dashboards without waiting on
// any of them. A nil *Hub drops every broadcast.
type Hub struct {
	mu      sync.Mutex
	clients map[*feedClient]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{clients: make(map[*feedClient]struct{}), logger: logger}
}

func (h *Hub) add(conn *websocket.Conn) *feedClient {
	cl := &feedClient{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	go h.writeLoop(cl)
	return cl
}

func (h *Hub) remove(cl *feedClient) {
	h.mu.Lock()
	h.dropLocked(cl)
	h.mu.Unlock()
}

// dropLocked closes the send channel once; the writer then closes the socket.
func (h *Hub) dropLocked(cl *feedClient) {
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
}

func (h *Hub) writeLoop(cl *feedClient) {
	defer cl.conn.Close()
	for data := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Warn("dropping order feed client", "remote", cl.conn.RemoteAddr().String(), "error", err)
			h.remove(cl)
			for range cl.send {
			}
			return
		}
	}
	_ = cl.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(writeWait))
}

// Clients reports how many dashboards are connected.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues order for every client. Clients whose queue is full are dropped.
func (h *Hub) Broadcast(order models.Order) {
	if h == nil {
		return
	}
	data, err := json.Marshal(order)
	if err != nil {
		h.logger.Error("encode order for feed", "order_id", order.ID, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			h.logger.Warn("dropping slow order feed client", "order_id", order.ID)
			h.dropLocked(cl)
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		h.dropLocked(cl)
	}
}

// GET /admin/orders/ws
func OrderWebSocketHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		cl := hub.add(conn)
		defer hub.remove(cl)

		// Reads only detect the peer going away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
