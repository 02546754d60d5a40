// Package events fans reconciliation events out to subscribers.
//
// The root client publishes one event per hook it fires, so consumers that
// prefer channels over callbacks observe the same sequence.
package events

import "time"

// EventType represents the type of mirror event.
type EventType string

// Event types published by the reconciliation loop.
const (
	// StructureChanged is published when a cycle added or removed products.
	StructureChanged EventType = "catalog.structure_changed"
	// CatalogChanged is published after every completed cycle.
	CatalogChanged EventType = "catalog.changed"

	// CycleCompleted carries the cycle summary.
	CycleCompleted EventType = "cycle.completed"
	// CycleFailed is published when a cycle stopped on a store error.
	CycleFailed EventType = "cycle.failed"
)

// Event represents a mirror event with type, timestamp, and data.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	CycleID   string    `json:"cycle_id,omitempty"`
	Data      any       `json:"data,omitempty"`
}
