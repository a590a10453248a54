// Package events provides the fan-out hub for live incident notifications.
// Subscribers receive pre-serialized messages over buffered channels; slow
// subscribers are dropped rather than allowed to stall ingestion.
package events

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Event names published by the ingestion path.
const (
	EventAlertIngested   = "alert_ingested"
	EventIncidentUpdated = "incident_updated"
)

// subscriberBuffer bounds each subscriber's queue. A full queue means the
// subscriber is too slow and gets dropped.
const subscriberBuffer = 100

// Message is one published notification.
type Message struct {
	Event string
	Data  []byte
}

// SSE renders the message as a server-sent-event frame.
func (m Message) SSE() string {
	return fmt.Sprintf("event: %s\ndata: %s\n\n", m.Event, m.Data)
}

// Bus is a thread-safe publish/subscribe hub.
type Bus struct {
	mu          sync.Mutex
	subscribers map[chan Message]struct{}
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[chan Message]struct{})}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function. The unsubscribe function is idempotent.
func (b *Bus) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, ch)
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish serializes data as JSON and delivers it to every subscriber.
// Subscribers whose queues are full are dropped.
func (b *Bus) Publish(event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("Failed to serialize %s event: %v", event, err)
		return
	}
	msg := Message{Event: event, Data: payload}

	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
			// slow subscriber: drop it
			delete(b.subscribers, ch)
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}
