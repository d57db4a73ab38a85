// Package realtime pushes published alerts to live consumers: websocket
// dashboards connected to this process and, optionally, other processes
// through a Redis channel.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/safetour/routeguard/internal/logger"
	"github.com/safetour/routeguard/internal/metrics"
	"github.com/safetour/routeguard/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Message is the frame written to websocket clients
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	subject string // empty receives every subject
}

// Hub fans alerts out to connected websocket clients. A client whose
// buffer is full misses the alert; the publisher is never blocked.
type Hub struct {
	upgrader websocket.Upgrader
	buffer   int

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates a hub with a per-connection send buffer
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		buffer:   buffer,
		clients:  make(map[*client]struct{}),
	}
}

// Notify implements alert.Subscriber
func (h *Hub) Notify(a models.Alert) {
	payload, err := json.Marshal(Message{Event: "alert", Data: a})
	if err != nil {
		logger.L().Error("ws_encode_error", "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.subject != "" && c.subject != a.SubjectID {
			continue
		}
		select {
		case c.send <- payload:
		default:
			metrics.AlertsDroppedTotal.WithLabelValues("websocket").Inc()
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS handles GET /api/v1/ws. ?subjectId= restricts the stream to one subject.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.L().Warn("ws_upgrade_error", "err", err)
		return
	}

	cl := &client{
		conn:    conn,
		send:    make(chan []byte, h.buffer),
		subject: c.Query("subjectId"),
	}
	h.register(cl)
	logger.L().Info("ws_connected", "remote", c.ClientIP(), "subject", cl.subject)

	go h.writePump(cl)
	h.readPump(cl)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.RealtimeClients.Set(float64(n))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.RealtimeClients.Set(float64(n))
}

// readPump discards client frames and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.L().Debug("ws_read_error", "err", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	metrics.RealtimeClients.Set(0)
}
