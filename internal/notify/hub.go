package notify

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"senseact/internal/dao"
	"senseact/internal/observability"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one connected websocket observer.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	// deviceId optionally restricts the client to one device's messages.
	deviceId string
}

// Hub broadcasts notification payloads to every registered observer.
// Delivery is best-effort: a client whose send buffer is full is dropped,
// never retried.
type Hub struct {
	mu         sync.Mutex
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *logrus.Entry
}

func NewHub(logger *logrus.Entry) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run drives the hub event loop; call it in its own goroutine. It returns
// once Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			observability.WSConnections.Inc()
			h.logger.Debugf("websocket observer connected, filter=%q", client.deviceId)

		case client := <-h.unregister:
			h.dropClient(client)

		case message := <-h.broadcast:
			h.mu.Lock()
			var full []*Client
			for client := range h.clients {
				if client.deviceId != "" && !matchesDevice(message, client.deviceId) {
					continue
				}
				select {
				case client.send <- message:
				default:
					full = append(full, client)
				}
			}
			h.mu.Unlock()
			for _, client := range full {
				h.logger.Warn("websocket observer too slow, dropping")
				h.dropClient(client)
			}
		}
	}
}

// Stop terminates the event loop and disconnects every observer.
func (h *Hub) Stop() {
	close(h.done)
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
		observability.WSConnections.Dec()
	}
}

func (h *Hub) dropClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		observability.WSConnections.Dec()
	}
}

func matchesDevice(message []byte, deviceId string) bool {
	var m dao.NotifyMessage
	if err := json.Unmarshal(message, &m); err != nil {
		return false
	}
	return m.DeviceId == deviceId
}

// Broadcast queues a message for every observer.
func (h *Hub) Broadcast(msg *dao.NotifyMessage) {
	data, err := msg.Encode()
	if err != nil {
		h.logger.WithError(err).Error("encode broadcast message")
		return
	}
	h.broadcast <- data
}

// ClientCount reports how many observers are connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// HandleWS upgrades the request and registers the observer. Observers only
// receive; incoming frames are read solely to detect disconnection.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("websocket upgrade failed")
		return
	}

	client := &Client{
		conn:     conn,
		send:     make(chan []byte, 64),
		deviceId: c.Query("device_id"),
	}
	h.register <- client

	go client.writePump()
	go client.readPump(h)
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
