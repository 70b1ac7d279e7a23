// Package hub fans scan and playback events out to websocket clients using
// the channel-based broadcast pattern. Messages are pre-encoded JSON; the hub
// never blocks a publisher on a slow client.
package hub

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub tracks the connected event clients and broadcasts to all of them.
type Hub struct {
	// Name for logging
	name string

	// Connected clients
	clients map[*Client]bool

	// Pre-encoded JSON events to broadcast
	broadcast chan []byte

	// Register requests from new connections
	register chan *Client

	// Unregister requests from closing connections
	unregister chan *Client

	// Guards clients; Run mutates, ClientCount reads
	mu sync.RWMutex
}

// New creates a new Hub.
func New(name string) *Hub {
	return &Hub{
		name:       name,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop.
// This should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			slog.Debug("event client connected", "hub", h.name, "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			slog.Debug("event client disconnected", "hub", h.name, "clients", count)

		case event := <-h.broadcast:
			// Eviction mutates the map, so this holds the write lock.
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- event:
				default:
					// Client's buffer is full; drop it rather than
					// stall every other subscriber.
					close(client.send)
					delete(h.clients, client)
					slog.Warn("event hub dropped slow client", "hub", h.name)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a pre-encoded event for all connected clients.
// Never blocks; when the queue is full the event is dropped.
func (h *Hub) Broadcast(event []byte) {
	select {
	case h.broadcast <- event:
	default:
		slog.Warn("event hub queue full, dropping event", "hub", h.name)
	}
}

// BroadcastJSON encodes v and broadcasts it.
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
