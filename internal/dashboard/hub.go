// Package dashboard serves the live monitoring UI feed: a WebSocket hub
// broadcasting periodic state snapshots and immediate alarm events, plus
// a small REST surface over the state store.
package dashboard

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub manages WebSocket clients and fans broadcast frames out to them.
// A slow client loses frames rather than stalling the hub.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	// OnClientCount is called with the new client count after each
	// connect and disconnect.
	OnClientCount func(n int)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

// HandleConn registers an upgraded WebSocket connection and starts its
// read and write pumps.
func (h *Hub) HandleConn(conn *websocket.Conn) {
	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}

	conn.EnableWriteCompression(true)

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("[dashboard] ws client connected (%d total)", count)
	h.notifyCount(count)

	go client.writePump()
	go client.readPump()
}

// RemoveClient removes a client from the hub.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()
	close(c.send)
	h.notifyCount(count)
}

// Broadcast sends one frame to every client, dropping it for clients
// whose send buffer is full.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- frame:
		default:
		}
	}
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) notifyCount(n int) {
	if h.OnClientCount != nil {
		h.OnClientCount(n)
	}
}
