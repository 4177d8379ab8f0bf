package api

import (
	"github.com/gofiber/websocket/v2"

	"github.com/wirasm/pagepilot/internal/bus"
)

// EventStreamer streams bus events to websocket clients.
type EventStreamer struct {
	hub *bus.Hub
}

// NewEventStreamer creates a new event streamer
func NewEventStreamer(hub *bus.Hub) *EventStreamer {
	return &EventStreamer{hub: hub}
}

// HandleWebSocket sends every tool and session event to the client until it
// disconnects or the hub closes.
func (s *EventStreamer) HandleWebSocket(c *websocket.Conn) {
	events := s.hub.Subscribe()
	defer s.hub.Unsubscribe(events)

	for event := range events {
		if err := c.WriteJSON(event); err != nil {
			return
		}
	}
}
