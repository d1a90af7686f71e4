// Package bus carries board activity between the services that record it and
// the sinks and streams that consume it.
package bus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope published on a subject. Data must survive a JSON round trip.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func NewEvent(eventType, source string, data map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventHandler consumes one delivered event. Returned errors are logged by the bus.
type EventHandler func(ctx context.Context, event *Event) error

type Subscription interface {
	Unsubscribe() error
	IsValid() bool
}

// EventBus is implemented in process (MemoryEventBus) and over NATS (NATSEventBus).
// Subjects use NATS token syntax on both, including the * and > wildcards.
type EventBus interface {
	Publish(ctx context.Context, subject string, event *Event) error
	Subscribe(subject string, handler EventHandler) (Subscription, error)
	// QueueSubscribe delivers each event to one member of the queue group.
	QueueSubscribe(subject, queue string, handler EventHandler) (Subscription, error)
	Close()
	IsConnected() bool
}
