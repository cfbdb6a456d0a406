package events

import (
	"log/slog"
	"sync"
	"time"
)

// Event is a lifecycle notification pushed to connected admin dashboards.
type Event struct {
	Type       string    `json:"type"` // e.g. request.created, property.verified
	EntityID   string    `json:"entityId"`
	ActorID    string    `json:"actorId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Broker fans lifecycle events out to subscribers. Slow subscribers are
// dropped rather than blocking publishers: a missed dashboard update is
// cheaper than a stalled request handler.
type Broker struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	logger *slog.Logger
}

// NewBroker creates an event broker
func NewBroker(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		subs:   make(map[chan Event]struct{}),
		logger: logger,
	}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
}

// Publish delivers an event to all subscribers without blocking. A nil
// broker is a no-op, so services can be constructed without one in tests.
func (b *Broker) Publish(eventType, entityID, actorID string) {
	if b == nil {
		return
	}

	event := Event{
		Type:       eventType,
		EntityID:   entityID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				slog.String("type", event.Type),
				slog.String("entity_id", event.EntityID),
			)
		}
	}
}
