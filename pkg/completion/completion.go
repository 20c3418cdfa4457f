// Package completion provides a single-resolution result container that
// bridges callback-style completion into blocking or channel-based waits.
package completion

import (
	"context"
	"sync"
)

// Completion holds the outcome of one operation: a value or an error,
// set exactly once. Later Resolve/Reject calls are ignored.
type Completion[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// New creates a pending completion.
func New[T any]() *Completion[T] {
	return &Completion[T]{done: make(chan struct{})}
}

// Resolve completes with a value. Returns false if already completed.
func (c *Completion[T]) Resolve(value T) bool {
	return c.complete(value, nil)
}

// Reject completes with an error. Returns false if already completed.
func (c *Completion[T]) Reject(err error) bool {
	var zero T
	return c.complete(zero, err)
}

// Complete resolves or rejects depending on err.
func (c *Completion[T]) Complete(value T, err error) bool {
	return c.complete(value, err)
}

func (c *Completion[T]) complete(value T, err error) bool {
	won := false
	c.once.Do(func() {
		c.value = value
		c.err = err
		won = true
		close(c.done)
	})
	return won
}

// Done returns a channel closed when the completion is resolved.
func (c *Completion[T]) Done() <-chan struct{} {
	return c.done
}

// Result returns the outcome. It must only be called after Done is closed.
func (c *Completion[T]) Result() (T, error) {
	<-c.done
	return c.value, c.err
}

// Wait blocks until the completion resolves or ctx is done.
func (c *Completion[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.value, c.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
