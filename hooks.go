package catalogmirror

import (
	"sync"

	"github.com/agentstation/catalogmirror/internal/events"
)

// Hook function types for mirror events. Hooks run on the worker goroutine
// and should hand off anything slow.
type (
	// ChangeHook is called once after every completed cycle.
	ChangeHook func()

	// StructuralChangeHook is called once after a cycle that added or
	// removed products, before the ChangeHooks.
	StructuralChangeHook func()
)

// Event aliases let callers outside this module consume Subscribe.
type (
	// Event is a published mirror event.
	Event = events.Event
	// EventType names an Event.
	EventType = events.EventType
	// Subscriber receives events.
	Subscriber = events.Subscriber
	// SubscriberFunc adapts a function to Subscriber.
	SubscriberFunc = events.SubscriberFunc
)

// Published event types.
const (
	EventStructureChanged = events.StructureChanged
	EventCatalogChanged   = events.CatalogChanged
	EventCycleCompleted   = events.CycleCompleted
	EventCycleFailed      = events.CycleFailed
)

// Hooks registers event callbacks.
type Hooks interface {
	// OnChange registers a callback fired after every completed cycle
	OnChange(ChangeHook)

	// OnStructuralChange registers a callback fired when products were added or removed
	OnStructuralChange(StructuralChangeHook)

	// Subscribe registers sub on the event broker and returns a function
	// that unregisters it.
	Subscribe(sub Subscriber) (unsubscribe func())
}

// hooks manages event callbacks.
type hooks struct {
	mu                 sync.RWMutex
	onChange           []ChangeHook
	onStructuralChange []StructuralChangeHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnChange registers a callback fired after every completed cycle.
func (h *hooks) OnChange(fn ChangeHook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// OnStructuralChange registers a callback fired when products were added or removed.
func (h *hooks) OnStructuralChange(fn StructuralChangeHook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStructuralChange = append(h.onStructuralChange, fn)
}

// trigger fires the structural hooks when structural is set, then the change hooks.
func (h *hooks) trigger(structural bool) {
	h.mu.RLock()
	structuralHooks := append([]StructuralChangeHook(nil), h.onStructuralChange...)
	changeHooks := append([]ChangeHook(nil), h.onChange...)
	h.mu.RUnlock()

	if structural {
		for _, fn := range structuralHooks {
			fn()
		}
	}
	for _, fn := range changeHooks {
		fn()
	}
}

func (c *client) OnChange(fn ChangeHook) {
	c.hooks.OnChange(fn)
}

func (c *client) OnStructuralChange(fn StructuralChangeHook) {
	c.hooks.OnStructuralChange(fn)
}

func (c *client) Subscribe(sub Subscriber) func() {
	c.broker.Subscribe(sub)
	var once sync.Once
	return func() {
		once.Do(func() { c.broker.Unsubscribe(sub) })
	}
}
