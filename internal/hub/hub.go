package hub

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client represents a single subscriber connection. It's essentially a
// channel that the SSE handler will listen to.
type Client chan []byte

// Hub fans events out to subscribers of named channels. Chat uses one
// channel per group ("group:<id>") and one per user inbox ("user:<id>").
type Hub struct {
	channels map[string]map[Client]bool
	mu       sync.RWMutex
}

// GlobalHub is the singleton instance of our Hub.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[Client]bool),
	}
}

// GroupChannel names the broadcast channel for a group's chat.
func GroupChannel(groupID uint) string {
	return fmt.Sprintf("group:%d", groupID)
}

// UserChannel names the broadcast channel for a user's private inbox.
func UserChannel(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// Subscribe adds a new client to a channel.
func (h *Hub) Subscribe(channel string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[Client]bool)
	}
	h.channels[channel][client] = true
}

// Unsubscribe removes a client from a channel.
func (h *Hub) Unsubscribe(channel string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.channels[channel]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the SSE handler to stop.
			if len(clients) == 0 {
				delete(h.channels, channel)
			}
		}
	}
}

// Broadcast sends an event to all clients subscribed to a channel.
func (h *Hub) Broadcast(channel string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.channels[channel]; ok {
		messageBytes, err := json.Marshal(event)
		if err != nil {
			return
		}

		for client := range clients {
			// Use a non-blocking send to prevent a slow client from blocking the hub.
			select {
			case client <- messageBytes:
			default:
				// Client channel is full, maybe they are disconnected or slow.
				// The unsubscribe logic will handle cleaning this up eventually.
			}
		}
	}
}
