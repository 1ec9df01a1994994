package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType defines the SSE event name.
type EventType string

const (
	EventSessionStatusChanged EventType = "session.status_changed"
	EventOrderCompleted       EventType = "order.completed"
)

// SessionEvent is the payload pushed to clients watching a session.
// It never carries credentials.
type SessionEvent struct {
	Event     EventType         `json:"event"`
	SessionID string            `json:"sessionId"`
	Status    string            `json:"status"`
	Message   string            `json:"message,omitempty"`
	Reference string            `json:"reference,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Client represents a connected SSE client watching one session.
type Client struct {
	ID        string
	SessionID string
	Events    chan []byte
}

// Hub manages SSE client connections and fans session events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client for sessionID and returns it for streaming.
func (h *Hub) Register(clientID, sessionID string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &Client{
		ID:        clientID,
		SessionID: sessionID,
		Events:    make(chan []byte, 16),
	}
	h.clients[clientID] = c
	log.Info().Str("client_id", clientID).Str("session_id", sessionID).Int("total_clients", len(h.clients)).Msg("SSE client connected")
	return c
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		close(c.Events)
		delete(h.clients, clientID)
		log.Info().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client disconnected")
	}
}

// Publish sends an event to every client watching its session.
// Non-blocking: drops the message if a client buffer is full.
func (h *Hub) Publish(event *SessionEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal SSE event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if c.SessionID != event.SessionID {
			continue
		}
		select {
		case c.Events <- data:
		default:
			log.Warn().Str("client_id", c.ID).Msg("SSE client buffer full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
