package bus

import (
	"sync"
	"time"
)

// Event is one tool invocation or session lifecycle notification.
type Event struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"` // "tool" or "session"
	Tool      string    `json:"tool,omitempty"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
	ElapsedMS int64     `json:"elapsed_ms,omitempty"`
	Message   string    `json:"message,omitempty"`
	At        time.Time `json:"at"`
}

const (
	KindTool    = "tool"
	KindSession = "session"
)

// Hub fans events out to in-process subscribers (the websocket endpoint).
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewHub creates a new event hub
func NewHub() *Hub {
	return &Hub{
		subs: make(map[chan Event]struct{}),
	}
}

// Subscribe creates a subscription for all events
func (h *Hub) Subscribe() chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 16)
	h.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Emit sends an event to all subscribers
func (h *Hub) Emit(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			// Skip if channel is full
		}
	}
}

// Close closes all subscriptions
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		close(ch)
		delete(h.subs, ch)
	}
}
