package bus

import (
	"errors"
	"testing"
	"time"
)

func TestHubFanOut(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	a := hub.Subscribe()
	b := hub.Subscribe()

	hub.Emit(Event{Kind: KindTool, Tool: "navigate", OK: true})

	for name, ch := range map[string]chan Event{"a": a, "b": b} {
		select {
		case event := <-ch:
			if event.Tool != "navigate" {
				t.Errorf("Subscriber %s: expected tool navigate, got %q", name, event.Tool)
			}
		case <-time.After(time.Second):
			t.Fatalf("Subscriber %s: no event received", name)
		}
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ch := hub.Subscribe()
	hub.Unsubscribe(ch)

	if _, open := <-ch; open {
		t.Errorf("Expected the channel closed after unsubscribe")
	}

	// A second unsubscribe of the same channel is a no-op.
	hub.Unsubscribe(ch)
}

func TestHubSlowSubscriberDropped(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ch := hub.Subscribe()

	// Overfill the subscriber buffer; Emit must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Emit(Event{Kind: KindSession, Message: "tick"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Emit blocked on a slow subscriber")
	}

	if len(ch) == 0 {
		t.Errorf("Expected some buffered events")
	}
}

func TestPublisherWithoutBroker(t *testing.T) {
	hub := NewHub()
	pub, err := NewPublisher(hub, "")
	if err != nil {
		t.Fatalf("Failed to create publisher: %v", err)
	}
	defer pub.Close()

	ch := hub.Subscribe()

	pub.ToolCall("click", nil, 120*time.Millisecond)

	select {
	case event := <-ch:
		if event.Kind != KindTool {
			t.Errorf("Expected kind %q, got %q", KindTool, event.Kind)
		}
		if !event.OK {
			t.Errorf("Expected ok event")
		}
		if event.ElapsedMS != 120 {
			t.Errorf("Expected elapsed 120ms, got %d", event.ElapsedMS)
		}
		if event.ID == "" {
			t.Errorf("Expected a stamped event id")
		}
	case <-time.After(time.Second):
		t.Fatalf("No event received")
	}
}

func TestPublisherRecordsFailure(t *testing.T) {
	hub := NewHub()
	pub, err := NewPublisher(hub, "")
	if err != nil {
		t.Fatalf("Failed to create publisher: %v", err)
	}
	defer pub.Close()

	ch := hub.Subscribe()

	pub.ToolCall("fill", errors.New("element not found"), time.Millisecond)

	event := <-ch
	if event.OK {
		t.Errorf("Expected a failed event")
	}
	if event.Error != "element not found" {
		t.Errorf("Expected the error text carried, got %q", event.Error)
	}
}

func TestPublisherSessionEvent(t *testing.T) {
	hub := NewHub()
	pub, err := NewPublisher(hub, "")
	if err != nil {
		t.Fatalf("Failed to create publisher: %v", err)
	}
	defer pub.Close()

	ch := hub.Subscribe()

	pub.Session("server started")

	event := <-ch
	if event.Kind != KindSession {
		t.Errorf("Expected kind %q, got %q", KindSession, event.Kind)
	}
	if event.Message != "server started" {
		t.Errorf("Expected the message carried, got %q", event.Message)
	}
}
