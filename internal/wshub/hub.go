package wshub

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"playerprogress/internal/events"
)

// ServerMessage is the JSON structure sent to clients.
type ServerMessage struct {
	Type string       `json:"t"`
	Data events.Event `json:"d"`
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	OwnerID string
	Conn    *websocket.Conn
	Send    chan []byte
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub pushes progress notifications to every connection an owner has open.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool
}

// NewHub creates a new Hub and subscribes it to bus when bus is non-nil.
func NewHub(bus *events.Bus) *Hub {
	h := &Hub{
		clients: make(map[string]map[*Client]bool),
	}
	if bus != nil {
		bus.Subscribe(h.Notify)
	}
	return h
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.OwnerID] == nil {
		h.clients[c.OwnerID] = make(map[*Client]bool)
	}
	h.clients[c.OwnerID][c] = true
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.OwnerID]
	if !ok || !set[c] {
		return
	}
	close(c.Send)
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.OwnerID)
	}
}

// Notify sends ev to the owner's clients. Non-blocking: drops if channel full.
func (h *Hub) Notify(ev events.Event) {
	h.SendTo(ev.OwnerID, ServerMessage{Type: string(ev.Kind), Data: ev})
}

func (h *Hub) SendTo(ownerID string, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WS] Marshal error: %v\n", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[ownerID] {
		select {
		case c.Send <- data:
		default:
			// Drop message if channel full
		}
	}
}

func (h *Hub) Count(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[ownerID])
}

// ServeHTTP upgrades the request and streams notifications for the owner
// named in the query string until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner")
	if ownerID == "" {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[WS] Accept error: %v\n", err)
		return
	}
	defer conn.CloseNow()

	// clients only listen; CloseRead handles control frames and cancels ctx on close
	ctx := conn.CloseRead(r.Context())

	c := &Client{OwnerID: ownerID, Conn: conn, Send: make(chan []byte, 16)}
	h.Register(c)
	defer h.Unregister(c)
	log.Printf("[WS] %s connected\n", ownerID)

	c.WritePump(ctx)
	conn.Close(websocket.StatusNormalClosure, "")
}
