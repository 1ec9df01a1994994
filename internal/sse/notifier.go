package sse

import (
	"time"

	"github.com/GTDGit/vtu_api/internal/models"
)

// SessionNotifier is the interface services use to emit session events.
type SessionNotifier interface {
	NotifySessionStatusChanged(s *models.Session)
	NotifyOrderCompleted(s *models.Session)
}

// HubNotifier implements SessionNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifySessionStatusChanged(s *models.Session) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Publish(sessionToEvent(EventSessionStatusChanged, s))
}

func (n *HubNotifier) NotifyOrderCompleted(s *models.Session) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Publish(sessionToEvent(EventOrderCompleted, s))
}

func sessionToEvent(eventType EventType, s *models.Session) *SessionEvent {
	return &SessionEvent{
		Event:     eventType,
		SessionID: s.ID,
		Status:    string(s.Status),
		Message:   s.Message,
		Reference: s.Reference,
		Errors:    s.Errors,
		Timestamp: time.Now(),
	}
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifySessionStatusChanged(s *models.Session) {}
func (n *NopNotifier) NotifyOrderCompleted(s *models.Session)       {}
