package catalogmirror

import (
	"context"

	"github.com/agentstation/catalogmirror/internal/events"
	"github.com/agentstation/catalogmirror/pkg/logging"
	"github.com/agentstation/catalogmirror/pkg/reconciler"
)

// Compile-time interface check to ensure proper implementation.
var _ Updater = (*client)(nil)

// Updater runs reconciliation cycles on demand.
type Updater interface {
	// Update runs exactly one cycle, then fires hooks and publishes events.
	// Only store failures and cancellation are returned as errors.
	Update(ctx context.Context) (*reconciler.CycleResult, error)
}

// Update runs one cycle. Cycles never overlap.
func (c *client) Update(ctx context.Context) (*reconciler.CycleResult, error) {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	if c.options.logger != nil {
		ctx = logging.WithLogger(ctx, c.options.logger)
	}

	res, err := c.reconciler.Cycle(ctx)
	if err != nil {
		var id string
		if res != nil {
			id = res.ID
		}
		c.broker.Publish(events.CycleFailed, id, err.Error())
		return res, err
	}

	c.state.complete(res)

	if res.Structural {
		c.broker.Publish(events.StructureChanged, res.ID, nil)
	}
	c.broker.Publish(events.CatalogChanged, res.ID, nil)
	c.hooks.trigger(res.Structural)
	c.broker.Publish(events.CycleCompleted, res.ID, res.String())

	return res, nil
}
