// Package differ computes membership changes between the mirror and a fresh remote snapshot.
package differ

import (
	"fmt"
	"strings"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates an id is new in the snapshot.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates an id is in both and its fields get refreshed.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates an id disappeared from the snapshot.
	ChangeTypeRemove ChangeType = "remove"
)

// ChangeTypes lists the change types in the order the reconciler applies them.
var ChangeTypes = []ChangeType{ChangeTypeRemove, ChangeTypeUpdate, ChangeTypeAdd}

// Changeset holds three disjoint, sorted id sets.
type Changeset struct {
	Added   []string
	Updated []string
	Removed []string
	Summary ChangesetSummary
}

// ChangesetSummary provides summary statistics for a changeset.
type ChangesetSummary struct {
	Added   int
	Updated int
	Removed int
}

// Structural reports whether membership changed, i.e. ids were added or removed.
func (c *Changeset) Structural() bool {
	return len(c.Added) > 0 || len(c.Removed) > 0
}

// IsEmpty reports whether the snapshot and the mirror were both empty.
func (c *Changeset) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Updated) == 0 && len(c.Removed) == 0
}

// IDs returns the ids for one change type.
func (c *Changeset) IDs(t ChangeType) []string {
	switch t {
	case ChangeTypeAdd:
		return c.Added
	case ChangeTypeUpdate:
		return c.Updated
	case ChangeTypeRemove:
		return c.Removed
	}
	return nil
}

// String returns a one-line summary suitable for logs.
func (c *Changeset) String() string {
	var parts []string
	if c.Summary.Added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", c.Summary.Added))
	}
	if c.Summary.Updated > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", c.Summary.Updated))
	}
	if c.Summary.Removed > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", c.Summary.Removed))
	}
	if len(parts) == 0 {
		return "Changeset: empty"
	}
	return "Changeset: " + strings.Join(parts, ", ")
}
