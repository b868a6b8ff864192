package sched

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Pool runs long I/O jobs (region capture/paste, file and profile
// writes) off the simulation thread with a concurrency cap.
type Pool struct {
	ctx context.Context
	g   *errgroup.Group
}

// NewPool creates a worker pool bound to ctx with at most limit
// concurrent jobs.
func NewPool(ctx context.Context, limit int) *Pool {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	return &Pool{ctx: ctx, g: g}
}

// Context returns the pool's context, passed into submitted jobs' I/O.
func (p *Pool) Context() context.Context { return p.ctx }

// Submit runs fn on a worker. Errors are logged, not propagated: a
// failed background job must never take the host process down.
func (p *Pool) Submit(name string, fn func(ctx context.Context) error) {
	p.g.Go(func() error {
		if err := fn(p.ctx); err != nil {
			slog.Error("background job failed", "job", name, "error", err)
		}
		return nil
	})
}

// Async runs fn on a worker and resolves the returned future with its
// outcome. Panics and errors resolve false instead of escaping.
func (p *Pool) Async(name string, fn func(ctx context.Context) (bool, error)) *Future {
	fut := NewFuture()
	p.g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in background job", "job", name, "panic", r)
				fut.Complete(false, nil)
			}
		}()
		ok, err := fn(p.ctx)
		if err != nil {
			slog.Error("background job failed", "job", name, "error", err)
		}
		fut.Complete(ok, err)
		return nil
	})
	return fut
}

// Wait blocks until all submitted jobs have finished.
func (p *Pool) Wait() error {
	return p.g.Wait()
}
