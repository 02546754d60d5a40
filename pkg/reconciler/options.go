package reconciler

import (
	"context"
	"time"

	"github.com/agentstation/catalogmirror/internal/metrics"
	"github.com/agentstation/catalogmirror/pkg/constants"
	"github.com/agentstation/catalogmirror/pkg/errors"
)

// Sleeper pauses between retry rounds. It returns early with ctx.Err() when ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// options configures a reconciler.
type options struct {
	categories     []string
	batchSize      int
	retryDelay     time.Duration
	maxRetryRounds int
	sleep          Sleeper
	metrics        *metrics.Metrics
	now            func() time.Time
}

func defaultOptions() *options {
	return &options{
		categories: append([]string(nil), constants.DefaultCategories...),
		batchSize:  constants.DefaultBatchSize,
		retryDelay: constants.DefaultRetryDelay,
		sleep:      Sleep,
		now:        time.Now,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithCategories sets the ordered category list synced each cycle.
func WithCategories(categories ...string) Option {
	return func(o *options) error {
		if len(categories) == 0 {
			return &errors.ValidationError{Field: "categories", Message: "at least one category is required"}
		}
		o.categories = append([]string(nil), categories...)
		return nil
	}
}

// WithBatchSize sets the maximum number of ids per store statement.
func WithBatchSize(size int) Option {
	return func(o *options) error {
		if size <= 0 {
			return &errors.ValidationError{Field: "batch_size", Value: size, Message: "must be positive"}
		}
		o.batchSize = size
		return nil
	}
}

// WithRetryDelay sets the pause between retry rounds.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return &errors.ValidationError{Field: "retry_delay", Value: d, Message: "cannot be negative"}
		}
		o.retryDelay = d
		return nil
	}
}

// WithMaxRetryRounds bounds the rounds per phase. Zero retries until every name succeeds.
func WithMaxRetryRounds(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return &errors.ValidationError{Field: "max_retry_rounds", Value: n, Message: "cannot be negative"}
		}
		o.maxRetryRounds = n
		return nil
	}
}

// WithSleeper replaces the retry Sleeper.
func WithSleeper(s Sleeper) Option {
	return func(o *options) error {
		if s == nil {
			return &errors.ValidationError{Field: "sleeper", Message: "cannot be nil"}
		}
		o.sleep = s
		return nil
	}
}

// WithMetrics records Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

// WithClock replaces time.Now for cycle timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.now = now
		return nil
	}
}
