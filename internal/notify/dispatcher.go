package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher runs side effects in the background so they never block or
// fail the request that triggered them.
type Dispatcher struct {
	timeout time.Duration
	wg      sync.WaitGroup
	logger  zerolog.Logger
}

// NewDispatcher creates a dispatcher whose tasks each get timeout to finish.
func NewDispatcher(timeout time.Duration, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		timeout: timeout,
		logger:  logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch runs fn on its own goroutine with a context detached from the
// caller. Errors and panics are logged.
func (d *Dispatcher) Dispatch(name string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error().Str("task", name).Interface("panic", r).Msg("notification task panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			d.logger.Error().
				Err(err).
				Str("task", name).
				Dur("duration", time.Since(start)).
				Msg("notification failed")
			return
		}
		d.logger.Debug().Str("task", name).Dur("duration", time.Since(start)).Msg("notification task finished")
	}()
}

// Wait blocks until every dispatched task has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown waits for outstanding tasks until ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
