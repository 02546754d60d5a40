package events

import (
	"sync"

	"github.com/agentstation/catalogmirror/pkg/errors"
)

// Subscriber is an interface for event consumers.
type Subscriber interface {
	// Send delivers an event to the subscriber. It must not block.
	Send(Event) error

	// Close cleanly shuts down the subscriber.
	Close() error
}

// ErrSubscriberFull is returned by ChannelSubscriber.Send when its buffer is full.
var ErrSubscriberFull = errors.New("subscriber buffer full")

// ChannelSubscriber delivers events on a buffered channel.
type ChannelSubscriber struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

var _ Subscriber = (*ChannelSubscriber)(nil)

// NewChannelSubscriber creates a subscriber buffering up to size events.
func NewChannelSubscriber(size int) *ChannelSubscriber {
	if size < 0 {
		size = 0
	}
	return &ChannelSubscriber{ch: make(chan Event, size)}
}

// Events returns the receive side. It is closed by Close.
func (s *ChannelSubscriber) Events() <-chan Event {
	return s.ch
}

// Send enqueues e or drops it when the buffer is full.
func (s *ChannelSubscriber) Send(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	select {
	case s.ch <- e:
		return nil
	default:
		return ErrSubscriberFull
	}
}

// Close closes the channel. It is safe to call more than once.
func (s *ChannelSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(Event) error

// Send calls f(e).
func (f SubscriberFunc) Send(e Event) error { return f(e) }

// Close is a no-op.
func (f SubscriberFunc) Close() error { return nil }
