// Package task runs cancellable background work for the acquisition stages.
package task

import (
	"context"
	"sync"
)

// Request is an in-flight unit of work that can be cancelled.
type Request interface {
	Cancel()
}

// Task is a Request backed by a goroutine and a derived context.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start runs fn on its own goroutine with a context derived from parent.
// Cancel cancels that context; fn is expected to observe it.
func Start(parent context.Context, fn func(ctx context.Context)) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer cancel()
		fn(ctx)
	}()
	return t
}

// Cancel requests cancellation. It is safe to call more than once and after
// the task has ended.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.once.Do(t.cancel)
}

// Done is closed when fn has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until fn has returned.
func (t *Task) Wait() {
	<-t.done
}

var _ Request = (*Task)(nil)
