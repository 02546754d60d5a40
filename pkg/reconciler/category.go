package reconciler

import (
	"context"

	"github.com/agentstation/catalogmirror/pkg/batch"
	"github.com/agentstation/catalogmirror/pkg/catalog"
	"github.com/agentstation/catalogmirror/pkg/differ"
	"github.com/agentstation/catalogmirror/pkg/errors"
	"github.com/agentstation/catalogmirror/pkg/logging"
)

// UpdateCategory fetches a category and applies deletions, field updates and
// insertions to the mirror, in that order.
func (r *reconciler) UpdateCategory(ctx context.Context, name string) (CategoryResult, error) {
	ctx = logging.WithCategory(ctx, name)
	logger := logging.FromContext(ctx)
	res := CategoryResult{Name: name, Result: catalog.UpdateFailure}

	items, err := r.source.Category(ctx, name)
	r.metrics.Fetch(string(errors.FetchCategory), err == nil)
	if err != nil {
		logger.Debug().Err(err).Msg("Category fetch failed")
		res.Err = err
		return res, nil
	}

	previous, err := r.store.IDsByCategory(ctx, name)
	if err != nil {
		return res, err
	}

	cs := differ.Diff(previous, items)
	res.Changeset = cs
	if cs.IsEmpty() {
		logger.Warn().Msg("Category is empty in both the feed and the mirror")
	}
	for _, op := range differ.ChangeTypes {
		if ids := cs.IDs(op); len(ids) > 0 {
			logger.Trace().Str("op", string(op)).Strs("ids", ids).Msg("Changeset")
		}
	}

	stats, err := r.mutator.ApplyDeletions(ctx, cs.Removed)
	res.Stats.Add(stats)
	if err != nil {
		return res, err
	}

	stats, err = r.mutator.ApplyFieldUpdates(ctx, cs.Updated, batch.ItemColumns(cs.Updated, items))
	res.Stats.Add(stats)
	if err != nil {
		return res, err
	}

	// ids are unique across the mirror, so an added id may already live in
	// another category; those rows are moved instead of inserted.
	moved, err := r.existing(ctx, cs.Added)
	if err != nil {
		return res, err
	}
	if len(moved) > 0 {
		cols := batch.ItemColumns(moved, items)
		category := make(map[string]any, len(moved))
		for _, id := range moved {
			category[id] = name
		}
		cols[catalog.ColumnCategory] = category

		stats, err = r.mutator.ApplyFieldUpdates(ctx, moved, cols)
		res.Stats.Add(stats)
		if err != nil {
			return res, err
		}
		res.Moved = moved
		logger.Info().Strs("ids", moved).Msg("Products moved from another category")
	}

	movedSet := make(map[string]struct{}, len(moved))
	for _, id := range moved {
		movedSet[id] = struct{}{}
	}
	inserts := make([]catalog.Item, 0, len(cs.Added)-len(moved))
	for _, id := range cs.Added {
		if _, ok := movedSet[id]; !ok {
			inserts = append(inserts, items[id])
		}
	}
	stats, err = r.mutator.ApplyInsertions(ctx, name, inserts)
	res.Stats.Add(stats)
	if err != nil {
		return res, err
	}

	res.Result = catalog.UpdateChanged
	if cs.Structural() {
		res.Result = catalog.UpdateAddedRemoved
	}
	logger.Debug().
		Str("changeset", cs.String()).
		Str("result", res.Result.String()).
		Msg("Category synced")
	return res, nil
}

// existing returns the ids already in the mirror, querying in batch-sized chunks.
func (r *reconciler) existing(ctx context.Context, ids []string) ([]string, error) {
	var found []string
	for _, chunk := range batch.Split(ids, r.mutator.Size()) {
		ids, err := r.store.ExistingIDs(ctx, chunk)
		if err != nil {
			return nil, err
		}
		found = append(found, ids...)
	}
	return found, nil
}
