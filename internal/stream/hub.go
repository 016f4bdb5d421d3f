// Package stream fans service updates out to websocket subscribers such as the UI.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aevon-lab/servicestate/internal/core/update"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type client struct {
	id      string
	cluster string // empty subscribes to every cluster
	conn    *websocket.Conn
	send    chan []byte
}

// Hub implements publish.Publisher for connected websocket clients.
// A client whose buffer is full is disconnected rather than slowing publishers down.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client

	bufferSize   int
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

func NewHub(bufferSize int, writeTimeout time.Duration) *Hub {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Hub{
		clients:      make(map[string]*client),
		bufferSize:   bufferSize,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Publish queues the notification for every matching client. It never blocks on
// a slow client and never fails once the payload is encoded.
func (h *Hub) Publish(_ context.Context, n update.Notification) error {
	data, err := json.Marshal(n.Wire())
	if err != nil {
		return fmt.Errorf("failed to marshal service update: %w", err)
	}

	var slow []string
	h.mu.RLock()
	for id, c := range h.clients {
		if c.cluster != "" && c.cluster != n.Cluster() {
			continue
		}
		select {
		case c.send <- data:
		default:
			slow = append(slow, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range slow {
		slog.Warn("[Stream] Dropping slow subscriber", "client_id", id)
		h.unregister(id)
	}
	return nil
}

// RegisterRoutes mounts the websocket stream endpoint.
func (h *Hub) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/service-updates/stream", h.ServeWS)
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams updates until the client goes away.
// The optional ?cluster= query parameter restricts the stream to one cluster name.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("[Stream] Websocket upgrade failed", "error", err, "remote_addr", c.Request.RemoteAddr)
		return
	}

	cl := &client{
		id:      uuid.NewString(),
		cluster: c.Query("cluster"),
		conn:    conn,
		send:    make(chan []byte, h.bufferSize),
	}

	h.mu.Lock()
	h.clients[cl.id] = cl
	h.mu.Unlock()

	slog.Info("[Stream] Subscriber connected", "client_id", cl.id, "cluster", cl.cluster, "remote_addr", c.Request.RemoteAddr)

	go h.writePump(cl)
	h.readPump(cl)
}

// readPump discards inbound frames and unregisters the client on close.
func (h *Hub) readPump(cl *client) {
	defer h.unregister(cl.id)

	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.unregister(cl.id)
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(cl.id)
				return
			}
		}
	}
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	cl, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	h.mu.Unlock()

	if ok {
		close(cl.send)
		slog.Info("[Stream] Subscriber disconnected", "client_id", id)
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.unregister(id)
	}
}
