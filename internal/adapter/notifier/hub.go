package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ontoptea/orderhub/internal/core/domain"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 1024
	sendQueueSize  = 16
)

// joinMessage is the only message clients send: it announces which
// subscriber group the connection belongs to.
type joinMessage struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

// Hub fans events out to connected socket clients. Delivery is at-most-once:
// a full client queue drops the event for that client and a disconnected
// subscriber misses everything published while it was away. The order store
// remains the authoritative state for catching up.
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte

	mu   sync.RWMutex
	room string
}

func (c *client) joinRoom(room string) {
	c.mu.Lock()
	c.room = room
	c.mu.Unlock()
}

func (c *client) inRoom(room string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room == room
}

func NewHub(logger *zap.Logger) (*Hub, error) {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Displays and print clients connect from other origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}, nil
}

// HandleConnection upgrades the request and serves the client until it
// disconnects.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Websocket upgrade", zap.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendQueueSize),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("Client connected", zap.String("remote", conn.RemoteAddr().String()))

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer h.drop(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Client read", zap.Error(err))
			}
			return
		}

		var join joinMessage
		if err := json.Unmarshal(message, &join); err != nil {
			h.logger.Debug("Unparsable client message", zap.ByteString("message", message))
			continue
		}
		if join.Action == "join" {
			c.joinRoom(join.Room)
			h.logger.Info("Client joined room",
				zap.String("room", join.Room),
				zap.String("remote", c.conn.RemoteAddr().String()))
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// Publish delivers the event to every client that joined the room.
func (h *Hub) Publish(ctx context.Context, room string, event domain.NotificationEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.fanOut(message, func(c *client) bool { return c.inRoom(room) })
	return nil
}

// Broadcast delivers the event to every connected client.
func (h *Hub) Broadcast(ctx context.Context, event domain.NotificationEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.fanOut(message, func(c *client) bool { return true })
	return nil
}

func (h *Hub) fanOut(message []byte, match func(*client) bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !match(c) {
			continue
		}
		select {
		case c.send <- message:
		default:
			// Slow consumer: drop the event rather than block a publish.
			h.logger.Warn("Client queue full, event dropped",
				zap.String("remote", c.conn.RemoteAddr().String()))
		}
	}
}

// ClientCount reports connected clients, optionally narrowed to one room.
func (h *Hub) ClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for c := range h.clients {
		if room == "" || c.inRoom(room) {
			n++
		}
	}
	return n
}
