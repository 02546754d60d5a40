package events

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/catalogmirror/pkg/constants"
)

// Broker fans mirror events out to subscribers. A single Run goroutine owns
// delivery, so every subscriber sees events in publish order.
type Broker struct {
	mu          sync.RWMutex
	subscribers []Subscriber

	events     chan Event
	register   chan Subscriber
	unregister chan Subscriber

	logger *zerolog.Logger
	now    func() time.Time
}

// NewBroker creates a broker. A nil logger discards broker logs.
func NewBroker(logger *zerolog.Logger) *Broker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Broker{
		events:     make(chan Event, constants.ChannelBufferSize),
		register:   make(chan Subscriber, constants.ChannelBufferSize),
		unregister: make(chan Subscriber, constants.ChannelBufferSize),
		logger:     logger,
		now:        time.Now,
	}
}

// Run delivers events until ctx is canceled, then closes every subscriber.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.shutdown()
			return
		case sub := <-b.register:
			b.add(sub)
		case sub := <-b.unregister:
			b.remove(sub)
		case event := <-b.events:
			b.broadcast(event)
		}
	}
}

func (b *Broker) add(sub Subscriber) {
	b.mu.Lock()
	b.subscribers = append(b.subscribers, sub)
	n := len(b.subscribers)
	b.mu.Unlock()
	b.logger.Debug().Int("subscribers", n).Msg("Subscriber registered")
}

func (b *Broker) remove(sub Subscriber) {
	b.mu.Lock()
	i := slices.Index(b.subscribers, sub)
	if i >= 0 {
		b.subscribers = slices.Delete(b.subscribers, i, i+1)
	}
	n := len(b.subscribers)
	b.mu.Unlock()

	if i >= 0 {
		_ = sub.Close()
	}
	b.logger.Debug().Int("subscribers", n).Msg("Subscriber unregistered")
}

func (b *Broker) shutdown() {
	b.mu.Lock()
	subs := b.subscribers
	b.subscribers = nil
	b.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	b.logger.Debug().Int("closed", len(subs)).Msg("Event broker stopped")
}

func (b *Broker) broadcast(event Event) {
	b.mu.RLock()
	subs := slices.Clone(b.subscribers)
	b.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.Send(event); err != nil {
			b.logger.Warn().
				Err(err).
				Str("event_type", string(event.Type)).
				Str("cycle_id", event.CycleID).
				Msg("Event not delivered")
		}
	}
}

// Publish queues an event. It never blocks the worker: when the queue is
// full the event is dropped and logged.
func (b *Broker) Publish(eventType EventType, cycleID string, data any) {
	event := Event{
		Type:      eventType,
		Timestamp: b.now(),
		CycleID:   cycleID,
		Data:      data,
	}
	select {
	case b.events <- event:
	default:
		b.logger.Warn().
			Str("event_type", string(eventType)).
			Str("cycle_id", cycleID).
			Msg("Event queue full, event dropped")
	}
}

// Subscribe registers sub. Delivery starts once Run has processed the registration.
func (b *Broker) Subscribe(sub Subscriber) {
	b.register <- sub
}

// Unsubscribe removes and closes sub.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.unregister <- sub
}

// SubscriberCount returns the number of registered subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
