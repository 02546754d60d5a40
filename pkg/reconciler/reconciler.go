// Package reconciler keeps the product mirror consistent with the remote
// catalog. One cycle syncs every configured category, then the availability
// of every manufacturer present in the mirror, retrying only the names whose
// fetch failed.
package reconciler

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/agentstation/catalogmirror/internal/metrics"
	"github.com/agentstation/catalogmirror/pkg/batch"
	"github.com/agentstation/catalogmirror/pkg/catalog"
	"github.com/agentstation/catalogmirror/pkg/errors"
	"github.com/agentstation/catalogmirror/pkg/logging"
	"github.com/agentstation/catalogmirror/pkg/sources"
)

// Phase names used in logs and metrics.
const (
	PhaseCategories   = "categories"
	PhaseAvailability = "availability"
)

// Store is the mirror contract the reconciler needs.
type Store interface {
	batch.Writer

	IDsByCategory(ctx context.Context, category string) ([]string, error)
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
	AllIDs(ctx context.Context) ([]string, error)
	Manufacturers(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

// Reconciler syncs the mirror with a remote source.
type Reconciler interface {
	// UpdateCategory syncs one category. A fetch failure is reported in the
	// result; a returned error is a store failure.
	UpdateCategory(ctx context.Context, name string) (CategoryResult, error)

	// UpdateAvailability syncs one manufacturer's availability feed.
	UpdateAvailability(ctx context.Context, manufacturer string) (ManufacturerResult, error)

	// Cycle runs one full cycle. It returns an error only for store failures
	// or when ctx is canceled.
	Cycle(ctx context.Context) (*CycleResult, error)

	// Categories returns the configured category list.
	Categories() []string
}

var _ Reconciler = (*reconciler)(nil)

type reconciler struct {
	source  sources.Source
	store   Store
	mutator *batch.Mutator
	opts    *options
	metrics *metrics.Metrics
}

// New creates a Reconciler over source and store.
func New(source sources.Source, store Store, opts ...Option) (Reconciler, error) {
	if source == nil {
		return nil, &errors.ValidationError{Field: "source", Message: "cannot be nil"}
	}
	if store == nil {
		return nil, &errors.ValidationError{Field: "store", Message: "cannot be nil"}
	}
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		source:  source,
		store:   store,
		mutator: batch.NewMutator(store, o.batchSize),
		opts:    o,
		metrics: o.metrics,
	}, nil
}

func (r *reconciler) Categories() []string {
	return append([]string(nil), r.opts.categories...)
}

// Cycle runs the category phase, then the availability phase.
func (r *reconciler) Cycle(ctx context.Context) (*CycleResult, error) {
	res := &CycleResult{ID: uuid.NewString(), StartTime: r.opts.now()}
	ctx = logging.WithCycle(ctx, res.ID)
	logger := logging.FromContext(ctx)
	logger.Debug().Strs("categories", r.opts.categories).Msg("Cycle started")

	var err error
	res.Categories, err = r.categoryPhase(ctx, &res.Stats)
	if err != nil {
		r.metrics.CycleFailed()
		return res, err
	}
	for _, result := range res.Categories.Results {
		if result == catalog.UpdateAddedRemoved {
			res.Structural = true
		}
	}

	res.Manufacturers, err = r.availabilityPhase(ctx, &res.Stats)
	if err != nil {
		r.metrics.CycleFailed()
		return res, err
	}

	res.EndTime = r.opts.now()
	res.Duration = res.EndTime.Sub(res.StartTime)

	r.metrics.ObserveCycle(res.Duration, res.Structural, res.EndTime)
	r.metrics.Mutations("insert", res.Stats.Inserted)
	r.metrics.Mutations("update", res.Stats.Updated)
	r.metrics.Mutations("delete", res.Stats.Deleted)
	if n, err := r.store.Count(ctx); err == nil {
		r.metrics.MirrorSize(n)
	}

	logger.Info().
		Dur("duration", res.Duration).
		Bool("structural", res.Structural).
		Int64("inserted", res.Stats.Inserted).
		Int64("updated", res.Stats.Updated).
		Int64("deleted", res.Stats.Deleted).
		Int("category_rounds", res.Categories.Rounds).
		Int("manufacturer_rounds", res.Manufacturers.Rounds).
		Msg("Cycle completed")
	return res, nil
}

func (r *reconciler) categoryPhase(ctx context.Context, stats *batch.Stats) (PhaseResult, error) {
	ctx = logging.WithPhase(ctx, PhaseCategories)
	return r.retryRounds(ctx, PhaseCategories, r.opts.categories, func(ctx context.Context, name string) (catalog.UpdateResult, error) {
		res, err := r.UpdateCategory(ctx, name)
		stats.Add(res.Stats)
		return res.Result, err
	})
}

func (r *reconciler) availabilityPhase(ctx context.Context, stats *batch.Stats) (PhaseResult, error) {
	ctx = logging.WithPhase(ctx, PhaseAvailability)
	manufacturers, err := r.store.Manufacturers(ctx)
	if err != nil {
		return PhaseResult{Results: map[string]catalog.UpdateResult{}}, err
	}
	known, err := r.knownIDs(ctx)
	if err != nil {
		return PhaseResult{Results: map[string]catalog.UpdateResult{}}, err
	}
	return r.retryRounds(ctx, PhaseAvailability, manufacturers, func(ctx context.Context, name string) (catalog.UpdateResult, error) {
		res, err := r.updateAvailability(ctx, name, known)
		stats.Add(res.Stats)
		return res.Result, err
	})
}

type updateFunc func(ctx context.Context, name string) (catalog.UpdateResult, error)

// retryRounds runs update for every pending name, then again for the names that
// failed after the retry delay, until a round has no failures.
func (r *reconciler) retryRounds(ctx context.Context, phase string, names []string, update updateFunc) (PhaseResult, error) {
	res := PhaseResult{Results: make(map[string]catalog.UpdateResult, len(names))}
	logger := logging.FromContext(ctx)
	pending := names

	for len(pending) > 0 {
		res.Rounds++
		var failed []string
		for _, name := range pending {
			result, err := update(ctx, name)
			if err != nil {
				return res, err
			}
			res.Results[name] = result
			if result == catalog.UpdateFailure {
				failed = append(failed, name)
			}
		}
		if len(failed) == 0 {
			break
		}

		if r.opts.maxRetryRounds > 0 && res.Rounds >= r.opts.maxRetryRounds {
			res.Unresolved = failed
			logger.Error().
				Strs("names", failed).
				Int("rounds", res.Rounds).
				Msg("Giving up on failed fetches for this cycle")
			break
		}

		logger.Warn().
			Strs("names", failed).
			Int("round", res.Rounds).
			Dur("delay", r.opts.retryDelay).
			Msg("Retrieving data failed, retrying")
		r.metrics.RetryRound(phase)

		if err := r.opts.sleep(ctx, r.opts.retryDelay); err != nil {
			return res, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
		}
		res.Sleeps++
		pending = failed
	}
	return res, nil
}
