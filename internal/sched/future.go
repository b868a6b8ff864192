// Package sched provides the cooperative scheduling primitives the rest
// of the server is built on: a single-threaded simulation tick that owns
// all world and entity mutation, a bounded worker pool for heavy I/O
// (region paste, profile writes), and a promise-style Future for
// delivering async outcomes back across that boundary.
package sched

import (
	"context"
	"sync"
)

// Future is a one-shot async result: an ok flag plus an optional error.
// Complete may be called from any goroutine and wins exactly once.
type Future struct {
	once sync.Once
	done chan struct{}

	ok  bool
	err error
}

// NewFuture creates an unresolved future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Completed returns an already-resolved future.
func Completed(ok bool, err error) *Future {
	f := NewFuture()
	f.Complete(ok, err)
	return f
}

// Complete resolves the future. Later calls are no-ops.
func (f *Future) Complete(ok bool, err error) {
	f.once.Do(func() {
		f.ok = ok
		f.err = err
		close(f.done)
	})
}

// Done returns a channel closed on resolution.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result returns the outcome without blocking. Only valid after Done.
func (f *Future) Result() (bool, error) { return f.ok, f.err }

// Await blocks until the future resolves or the context is cancelled.
func (f *Future) Await(ctx context.Context) (bool, error) {
	select {
	case <-f.done:
		return f.ok, f.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
