package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gokulpos/restaurant-pos/utils"
	"github.com/gorilla/websocket"
)

// Event names carried on the live channel. Clients re-fetch full state
// on connect; there is no replay buffer.
const (
	EventMenuUpdated         = "menu_updated"
	EventStaffUpdated        = "staff_updated"
	EventOrderCreated        = "order_created"
	EventOrderUpdated        = "order_updated"
	EventKitchenOrderCreated = "kitchen_order_created"
	EventKitchenOrderUpdated = "kitchen_order_updated"
	EventBillCreated         = "bill_created"
	EventSettingUpdated      = "setting_updated"
	EventConnected           = "connected"
	EventDisconnected        = "disconnected"
)

type Message struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// Broadcaster is the sourcing interface shared by mutation handlers
// (direct) and the change monitor (derived from change capture).
type Broadcaster interface {
	Broadcast(event string, data interface{})
}

const (
	sendBuffer   = 32
	writeTimeout = 10 * time.Second
)

// Client is one live connection. Each client owns a buffered send
// channel drained by its writer goroutine, so a slow or dead client
// never delays delivery to the others.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

// Hub is the registry of live connections, owned by the server process
// and passed explicitly to everything that broadcasts.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register adds a connection, starts its writer, and greets it so the
// client knows to fetch a fresh snapshot.
func (h *Hub) Register(conn *websocket.Conn) *Client {
	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	go c.writePump()

	welcome, err := json.Marshal(Message{Event: EventConnected, Data: map[string]interface{}{"clients": total}, Timestamp: time.Now().UnixMilli()})
	if err == nil {
		c.enqueue(welcome)
	}
	utils.InfoLogger.Printf("live client connected, total=%d", total)
	return c
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast fans a message out to every connected client. Delivery is
// best-effort: clients that error or fall behind are pruned, and one
// client's failure never blocks the rest.
func (h *Hub) Broadcast(event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		utils.ErrorLogger.Printf("marshal broadcast %q: %v", event, err)
		return
	}

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.enqueue(payload)
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	total := len(h.clients)
	h.mu.Unlock()
	if ok {
		utils.InfoLogger.Printf("live client disconnected, total=%d", total)
	}
}

// enqueue hands the payload to the client's writer without blocking; a
// full buffer means the client stopped draining and gets dropped.
func (c *Client) enqueue(payload []byte) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	select {
	case c.send <- payload:
		c.mu.Unlock()
		return
	default:
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
	c.conn.Close()
	c.hub.remove(c)
}

func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	c.conn.Close()
	c.hub.remove(c)
}

func (c *Client) writePump() {
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			c.close()
			return
		}
	}
}

// ReadLoop blocks until the peer closes or errors, then unregisters.
// Inbound frames are drained and discarded; the channel is one-way.
func (c *Client) ReadLoop() {
	defer c.close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
