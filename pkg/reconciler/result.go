package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/catalogmirror/pkg/batch"
	"github.com/agentstation/catalogmirror/pkg/catalog"
	"github.com/agentstation/catalogmirror/pkg/differ"
)

// CategoryResult is the outcome of one category sync.
type CategoryResult struct {
	Name      string
	Result    catalog.UpdateResult
	Changeset *differ.Changeset
	// Moved lists ids that arrived from another category.
	Moved []string
	Stats batch.Stats
	// Err is the fetch failure when Result is UpdateFailure.
	Err error
}

// ManufacturerResult is the outcome of one availability sync.
type ManufacturerResult struct {
	Name   string
	Result catalog.UpdateResult
	// Applied counts ids whose availability was written.
	Applied int
	// Dropped counts feed ids absent from the mirror.
	Dropped int
	Stats   batch.Stats
	Err     error
}

// PhaseResult summarizes the retry rounds of one phase.
type PhaseResult struct {
	Rounds  int
	Sleeps  int
	Results map[string]catalog.UpdateResult
	// Unresolved names still failing when the round bound was reached.
	Unresolved []string
}

// CycleResult represents the outcome of one reconciliation cycle.
type CycleResult struct {
	ID            string
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	Categories    PhaseResult
	Manufacturers PhaseResult
	Stats         batch.Stats

	// Structural is set when any category sync added or removed products.
	Structural bool
}

// Complete reports whether every category and manufacturer succeeded.
func (r *CycleResult) Complete() bool {
	return len(r.Categories.Unresolved) == 0 && len(r.Manufacturers.Unresolved) == 0
}

// String returns a one-line summary suitable for logs.
func (r *CycleResult) String() string {
	return fmt.Sprintf("cycle %s: %d categories in %d rounds, %d manufacturers in %d rounds, +%d ~%d -%d, structural=%t, took %s",
		r.ID,
		len(r.Categories.Results), r.Categories.Rounds,
		len(r.Manufacturers.Results), r.Manufacturers.Rounds,
		r.Stats.Inserted, r.Stats.Updated, r.Stats.Deleted,
		r.Structural, r.Duration.Round(time.Millisecond))
}
