package bus

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// NATS subjects events are mirrored to when a broker is configured.
const (
	SubjectTool    = "pagepilot.events.tool"
	SubjectSession = "pagepilot.events.session"
)

// Publisher stamps and distributes events: always to the in-process hub, and
// to NATS subjects when a broker URL was configured. Publishing is
// best-effort; a broker failure never fails the tool call that triggered it.
type Publisher struct {
	hub *Hub
	nc  *nats.Conn
}

// NewPublisher creates a publisher. natsURL may be empty, in which case
// events stay in-process.
func NewPublisher(hub *Hub, natsURL string) (*Publisher, error) {
	p := &Publisher{hub: hub}

	if natsURL != "" {
		nc, err := nats.Connect(natsURL, nats.Name("pagepilot"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS at %s: %w", natsURL, err)
		}
		p.nc = nc
		log.Printf("Mirroring events to NATS at %s", natsURL)
	}

	return p, nil
}

// ToolCall records one tool invocation.
func (p *Publisher) ToolCall(tool string, callErr error, elapsed time.Duration) {
	event := Event{
		ID:        uuid.NewString(),
		Kind:      KindTool,
		Tool:      tool,
		OK:        callErr == nil,
		ElapsedMS: elapsed.Milliseconds(),
		At:        time.Now().UTC(),
	}
	if callErr != nil {
		event.Error = callErr.Error()
	}
	p.emit(SubjectTool, event)
}

// Session records a session lifecycle change.
func (p *Publisher) Session(message string) {
	p.emit(SubjectSession, Event{
		ID:      uuid.NewString(),
		Kind:    KindSession,
		OK:      true,
		Message: message,
		At:      time.Now().UTC(),
	})
}

func (p *Publisher) emit(subject string, event Event) {
	p.hub.Emit(event)

	if p.nc == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := p.nc.Publish(subject, payload); err != nil {
		log.Printf("Warning: failed to publish event to NATS: %v", err)
	}
}

// Close closes the hub and the broker connection.
func (p *Publisher) Close() {
	p.hub.Close()
	if p.nc != nil {
		p.nc.Close()
	}
}
