package reconciler

import (
	"context"
	"sort"

	"github.com/agentstation/catalogmirror/pkg/batch"
	"github.com/agentstation/catalogmirror/pkg/catalog"
	"github.com/agentstation/catalogmirror/pkg/errors"
	"github.com/agentstation/catalogmirror/pkg/logging"
)

// UpdateAvailability syncs one manufacturer against the current mirror.
func (r *reconciler) UpdateAvailability(ctx context.Context, manufacturer string) (ManufacturerResult, error) {
	known, err := r.knownIDs(ctx)
	if err != nil {
		return ManufacturerResult{Name: manufacturer, Result: catalog.UpdateFailure}, err
	}
	return r.updateAvailability(ctx, manufacturer, known)
}

// updateAvailability writes the availability column for feed ids present in
// known. Ids the mirror does not hold are dropped, never inserted.
func (r *reconciler) updateAvailability(ctx context.Context, manufacturer string, known map[string]struct{}) (ManufacturerResult, error) {
	ctx = logging.WithManufacturer(ctx, manufacturer)
	logger := logging.FromContext(ctx)
	res := ManufacturerResult{Name: manufacturer, Result: catalog.UpdateFailure}

	status, err := r.source.Manufacturer(ctx, manufacturer)
	r.metrics.Fetch(string(errors.FetchManufacturer), err == nil)
	if err != nil {
		logger.Debug().Err(err).Msg("Availability fetch failed")
		res.Err = err
		return res, nil
	}

	contained := make([]string, 0, len(status))
	for id := range status {
		if _, ok := known[id]; ok {
			contained = append(contained, id)
		}
	}
	sort.Strings(contained)
	res.Dropped = len(status) - len(contained)

	stats, err := r.mutator.ApplyFieldUpdates(ctx, contained, batch.AvailabilityColumns(contained, status))
	res.Stats = stats
	if err != nil {
		return res, err
	}

	res.Applied = len(contained)
	res.Result = catalog.UpdateChanged
	logger.Debug().
		Int("applied", res.Applied).
		Int("dropped", res.Dropped).
		Msg("Availability synced")
	return res, nil
}

func (r *reconciler) knownIDs(ctx context.Context) (map[string]struct{}, error) {
	ids, err := r.store.AllIDs(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	return known, nil
}
