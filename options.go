package catalogmirror

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/catalogmirror/internal/events"
	"github.com/agentstation/catalogmirror/internal/metrics"
	"github.com/agentstation/catalogmirror/pkg/constants"
	"github.com/agentstation/catalogmirror/pkg/errors"
	"github.com/agentstation/catalogmirror/pkg/reconciler"
)

// options holds the client configuration.
type options struct {
	updateInterval time.Duration
	initialUpdate  bool

	categories     []string
	batchSize      int
	retryDelay     time.Duration
	maxRetryRounds int
	sleep          reconciler.Sleeper
	now            func() time.Time

	logger  *zerolog.Logger
	metrics *metrics.Metrics
	broker  *events.Broker
	state   *State

	onChange           []ChangeHook
	onStructuralChange []StructuralChangeHook
}

func defaults() *options {
	return &options{
		updateInterval: constants.DefaultUpdateInterval,
		categories:     append([]string(nil), constants.DefaultCategories...),
		batchSize:      constants.DefaultBatchSize,
		retryDelay:     constants.DefaultRetryDelay,
		sleep:          reconciler.Sleep,
		now:            time.Now,
	}
}

// Option is a function that configures a Client.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.state == nil {
		o.state = NewState()
	}
	return o, nil
}

func (o *options) reconcilerOptions() []reconciler.Option {
	return []reconciler.Option{
		reconciler.WithCategories(o.categories...),
		reconciler.WithBatchSize(o.batchSize),
		reconciler.WithRetryDelay(o.retryDelay),
		reconciler.WithMaxRetryRounds(o.maxRetryRounds),
		reconciler.WithSleeper(o.sleep),
		reconciler.WithMetrics(o.metrics),
		reconciler.WithClock(o.now),
	}
}

// WithUpdateInterval sets the target period between cycle starts. A cycle
// that runs longer is followed immediately by the next one.
func WithUpdateInterval(interval time.Duration) Option {
	return func(o *options) error {
		if interval < 0 {
			return &errors.ValidationError{Field: "update_interval", Value: interval, Message: "cannot be negative"}
		}
		o.updateInterval = interval
		return nil
	}
}

// WithInitialUpdate runs one cycle synchronously inside Start.
func WithInitialUpdate(enabled bool) Option {
	return func(o *options) error {
		o.initialUpdate = enabled
		return nil
	}
}

// WithCategories sets the ordered category list.
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
			return &errors.ValidationError{Field: "max_items_db_call", Value: size, Message: "must be positive"}
		}
		o.batchSize = size
		return nil
	}
}

// WithRetryDelay sets the pause between retry rounds.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return &errors.ValidationError{Field: "api_call_delay_on_failure", Value: d, Message: "cannot be negative"}
		}
		o.retryDelay = d
		return nil
	}
}

// WithMaxRetryRounds bounds retry rounds per phase. Zero retries forever.
func WithMaxRetryRounds(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return &errors.ValidationError{Field: "max_retry_rounds", Value: n, Message: "cannot be negative"}
		}
		o.maxRetryRounds = n
		return nil
	}
}

// WithSleeper replaces the Sleeper used for retry delays and loop pacing.
func WithSleeper(s reconciler.Sleeper) Option {
	return func(o *options) error {
		if s == nil {
			return &errors.ValidationError{Field: "sleeper", Message: "cannot be nil"}
		}
		o.sleep = s
		return nil
	}
}

// WithClock replaces time.Now for cycle timing.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.now = now
		return nil
	}
}

// WithLogger sets the logger attached to every cycle context.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithMetrics records Prometheus metrics for cycles, fetches and mutations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

// WithEventBroker publishes events on b. The caller runs b.
func WithEventBroker(b *events.Broker) Option {
	return func(o *options) error {
		o.broker = b
		return nil
	}
}

// WithState shares an existing State with the client.
func WithState(s *State) Option {
	return func(o *options) error {
		o.state = s
		return nil
	}
}

// WithChangeHook registers a ChangeHook at construction.
func WithChangeHook(fn ChangeHook) Option {
	return func(o *options) error {
		o.onChange = append(o.onChange, fn)
		return nil
	}
}

// WithStructuralChangeHook registers a StructuralChangeHook at construction.
func WithStructuralChangeHook(fn StructuralChangeHook) Option {
	return func(o *options) error {
		o.onStructuralChange = append(o.onStructuralChange, fn)
		return nil
	}
}
