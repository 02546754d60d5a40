// Package catalogmirror keeps a local product mirror eventually consistent
// with a remote catalog API.
//
// A single worker goroutine runs reconciliation cycles: every configured
// category is fetched and diffed against the mirror, then every manufacturer
// present in the mirror reports availability. Failed fetches are retried after
// a delay; store failures stop the worker. Readers query the mirror directly
// and are told when no cycle has completed yet.
//
// Example usage:
//
//	db, err := store.Open(ctx, store.Config{Driver: store.DriverSQLite, DSN: "products.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	src, err := sources.New(sources.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mirror, err := catalogmirror.New(db, src,
//	    catalogmirror.WithUpdateInterval(5*time.Minute),
//	    catalogmirror.WithCategories("gloves", "facemasks", "beanies"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mirror.OnStructuralChange(func() { log.Print("products added or removed") })
//
//	if err := mirror.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer mirror.Close()
//
//	products, err := mirror.Products(ctx, "gloves")
//	if errors.Is(err, catalogmirror.ErrNoData) {
//	    // first cycle still running
//	}
package catalogmirror

import (
	"context"
	"sync"

	"github.com/agentstation/catalogmirror/internal/events"
	"github.com/agentstation/catalogmirror/pkg/catalog"
	"github.com/agentstation/catalogmirror/pkg/errors"
	"github.com/agentstation/catalogmirror/pkg/reconciler"
	"github.com/agentstation/catalogmirror/pkg/sources"
)

// ErrNoData is returned by Products until the first cycle has completed.
var ErrNoData = errors.ErrNoData

// Store is the mirror the client reconciles and reads.
type Store interface {
	reconciler.Store

	// ProductsByCategory lists one category ordered by name.
	ProductsByCategory(ctx context.Context, category string) ([]catalog.Product, error)
}

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Reader exposes the mirror to the presentation layer.
type Reader interface {
	// Products lists category ordered by name. It returns ErrNoData until the
	// first cycle has completed, distinct from an empty result.
	Products(ctx context.Context, category string) ([]catalog.Product, error)

	// Categories returns the configured category names in sync order.
	Categories() []string

	// HasCompletedFirstCycle reports whether any cycle has completed.
	HasCompletedFirstCycle() bool
}

// Client manages the mirror with a background reconciliation loop and event hooks.
type Client interface {
	// Reader provides read access to the mirror
	Reader

	// Updater runs single cycles
	Updater

	// Runner controls the background loop
	Runner

	// Hooks provides access to event callback registration
	Hooks

	// State returns the shared first-cycle state
	State() *State

	// Close stops the loop and the event broker owned by the client.
	Close() error
}

type client struct {
	options    *options
	store      Store
	source     sources.Source
	reconciler reconciler.Reconciler
	state      *State
	hooks      *hooks

	broker       *events.Broker
	brokerCancel context.CancelFunc

	// cycleMu serializes cycles between the loop and manual updates.
	cycleMu sync.Mutex

	// loop state
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// New creates a Client reconciling store against source.
func New(store Store, source sources.Source, opts ...Option) (Client, error) {
	if store == nil {
		return nil, errors.NewValidationError("store", nil, "cannot be nil")
	}
	if source == nil {
		return nil, errors.NewValidationError("source", nil, "cannot be nil")
	}

	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	rec, err := reconciler.New(source, store, o.reconcilerOptions()...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options:    o,
		store:      store,
		source:     source,
		reconciler: rec,
		state:      o.state,
		hooks:      newHooks(),
		broker:     o.broker,
	}
	for _, fn := range o.onChange {
		c.hooks.OnChange(fn)
	}
	for _, fn := range o.onStructuralChange {
		c.hooks.OnStructuralChange(fn)
	}

	if c.broker == nil {
		c.broker = events.NewBroker(o.logger)
		ctx, cancel := context.WithCancel(context.Background())
		c.brokerCancel = cancel
		go c.broker.Run(ctx)
	}

	return c, nil
}

// Products implements Reader.
func (c *client) Products(ctx context.Context, category string) ([]catalog.Product, error) {
	if !c.state.HasCompletedFirstCycle() {
		return nil, ErrNoData
	}
	return c.store.ProductsByCategory(ctx, category)
}

// Categories implements Reader.
func (c *client) Categories() []string {
	return c.reconciler.Categories()
}

// HasCompletedFirstCycle implements Reader.
func (c *client) HasCompletedFirstCycle() bool {
	return c.state.HasCompletedFirstCycle()
}

// State returns the shared state object.
func (c *client) State() *State {
	return c.state
}

// Close stops the loop and releases the owned broker.
func (c *client) Close() error {
	err := c.Stop()
	if c.brokerCancel != nil {
		c.brokerCancel()
		c.brokerCancel = nil
	}
	return err
}
