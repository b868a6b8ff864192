package sched

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Loop is the single simulation thread. Everything that touches shared
// world/entity/match state runs through Invoke; the host forbids
// concurrent entity mutation, so workers never mutate directly.
type Loop struct {
	tasks   chan func()
	running atomic.Bool
}

// NewLoop creates a loop with a buffered task queue.
func NewLoop() *Loop {
	return &Loop{tasks: make(chan func(), 1024)}
}

// Run drains and executes queued tasks until the context is cancelled.
// It is the loop's goroutine; exactly one Run must be active.
func (l *Loop) Run(ctx context.Context) error {
	l.running.Store(true)
	defer l.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			l.safeRun(fn)
		}
	}
}

// Invoke schedules fn onto the simulation thread. Never blocks the
// caller unless the queue is saturated.
func (l *Loop) Invoke(fn func()) {
	l.tasks <- fn
}

// InvokeLater schedules fn onto the simulation thread after the delay.
func (l *Loop) InvokeLater(delay time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(delay, func() {
		l.Invoke(fn)
	})
}

// Repeat schedules fn onto the simulation thread every interval until
// the returned task is cancelled.
func (l *Loop) Repeat(interval time.Duration, fn func()) *Task {
	task := &Task{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-task.stop:
				return
			case <-ticker.C:
				l.Invoke(fn)
			}
		}
	}()
	return task
}

func (l *Loop) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in tick task", "panic", r)
		}
	}()
	fn()
}

// Task is a handle for a repeating tick task.
type Task struct {
	stop      chan struct{}
	cancelled atomic.Bool
}

// Cancel stops the task. Safe to call more than once; the second and
// later calls are no-ops.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	if t.cancelled.CompareAndSwap(false, true) {
		close(t.stop)
	}
}

// Cancelled reports whether the task has been stopped.
func (t *Task) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}
