package catalogmirror

import (
	"context"
	"time"

	"github.com/agentstation/catalogmirror/pkg/errors"
	"github.com/agentstation/catalogmirror/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ Runner = (*client)(nil)

// Runner controls the background reconciliation loop.
type Runner interface {
	// Start launches the worker. It is a no-op while the worker runs.
	Start(ctx context.Context) error

	// Stop cancels the worker and waits for it to exit.
	Stop() error

	// Wait blocks until the worker exits and returns the store error that
	// stopped it, if any.
	Wait() error
}

// Start launches the single worker goroutine. With WithInitialUpdate the
// first cycle runs before Start returns; Stop cancels it.
func (c *client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.err = nil
	c.running = true
	c.mu.Unlock()

	var wait time.Duration
	if c.options.initialUpdate {
		res, err := c.Update(ctx)
		if err != nil {
			cancel()
			c.mu.Lock()
			c.running = false
			c.cancel = nil
			c.mu.Unlock()
			close(done)
			return err
		}
		wait = c.pace(res.Duration)
	}

	go c.run(ctx, done, wait)
	return nil
}

// run cycles until ctx is canceled or a cycle fails on the store.
func (c *client) run(ctx context.Context, done chan struct{}, wait time.Duration) {
	defer close(done)
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()
	if c.options.logger != nil {
		ctx = logging.WithLogger(ctx, c.options.logger)
	}
	logger := logging.FromContext(ctx)
	logger.Info().
		Dur("interval", c.options.updateInterval).
		Strs("categories", c.options.categories).
		Msg("Reconciliation loop started")

	for {
		if err := c.options.sleep(ctx, wait); err != nil {
			logger.Info().Msg("Reconciliation loop stopped")
			return
		}

		res, err := c.Update(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.IsCanceled(err) {
				logger.Info().Msg("Reconciliation loop stopped")
				return
			}
			logger.Error().Err(err).Msg("Reconciliation loop terminated by store failure")
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
			return
		}
		wait = c.pace(res.Duration)
		logger.Debug().Dur("next_in", wait).Msg("Cycle paced")
	}
}

// pace returns max(0, interval - took).
func (c *client) pace(took time.Duration) time.Duration {
	wait := c.options.updateInterval - took
	if wait < 0 {
		return 0
	}
	return wait
}

// Stop cancels the worker and waits for it.
func (c *client) Stop() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Wait blocks until the worker exits.
func (c *client) Wait() error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
