// Package single runs one request against the awareness service: connect,
// issue the request, unwrap the result, disconnect. Teardown happens on
// every path before the result is returned.
package single

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mauin/ReactiveAwareness/pkg/awareness"
	"github.com/Mauin/ReactiveAwareness/pkg/completion"
	"github.com/Mauin/ReactiveAwareness/pkg/connection"
	"github.com/Mauin/ReactiveAwareness/pkg/log"
	"github.com/Mauin/ReactiveAwareness/pkg/wire"
)

// Request errors. Connection errors are reported as connection.Error and
// match connection.ErrConnectionFailed or connection.ErrConnectionSuspended.
var (
	ErrRequestFailed      = errors.New("request failed")
	ErrNoQualifyingResult = errors.New("no qualifying result")
)

// RequestError is a request that completed with a non-success status.
type RequestError struct {
	Status wire.Status
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: %s", e.Status.Description())
}

func (e *RequestError) Unwrap() error {
	return ErrRequestFailed
}

// RequestFunc issues a request on a connected client.
type RequestFunc[R awareness.Result] func(client awareness.Client) awareness.PendingResult[R]

// UnwrapFunc maps a successful result to the caller-visible value. It may
// return ErrNoQualifyingResult when nothing meets the caller's constraints.
type UnwrapFunc[R awareness.Result, T any] func(result R) (T, error)

// Map builds an UnwrapFunc from a function that cannot fail.
func Map[R awareness.Result, T any](fn func(R) T) UnwrapFunc[R, T] {
	return func(r R) (T, error) {
		return fn(r), nil
	}
}

type options struct {
	logger    log.Logger
	operation string
	name      string
}

// Option configures Execute.
type Option func(*options)

// WithLogger sets the diagnostic sink.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithOperation names the operation in diagnostic events.
func WithOperation(name string) Option {
	return func(o *options) { o.operation = name }
}

// WithName sets the registration name reported in diagnostic events.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// Execute connects a fresh client for apis, issues request once connected,
// waits for its result and returns unwrap's value.
//
// Exactly one connect call is made. The connection is torn down before
// Execute returns, whatever the outcome. Once ctx is done no value is
// returned; the result is ctx.Err().
func Execute[T any, R awareness.Result](
	ctx context.Context,
	factory awareness.ClientFactory,
	apis []awareness.API,
	request RequestFunc[R],
	unwrap UnwrapFunc[R, T],
	opts ...Option,
) (T, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	h := connection.New(factory, apis,
		connection.WithLogger(o.logger),
		connection.WithOperation(o.operation, o.name))
	defer h.Teardown()

	emit := log.Emitter{
		Logger:    o.logger,
		Layer:     log.LayerRequest,
		HandleID:  h.ID(),
		Operation: o.operation,
		Name:      o.name,
	}

	var zero T
	if err := h.Connect(ctx); err != nil {
		emit.Error(err, "connect")
		return zero, err
	}

	emit.State("", "PENDING", "")
	result, err := Await(ctx, h, request(h.Client()))
	if err != nil {
		var reqErr *RequestError
		switch {
		case errors.As(err, &reqErr):
			emit.StatusError(err, "await result", uint8(reqErr.Status.Code))
		case ctx.Err() != nil:
			emit.State("PENDING", "CANCELED", err.Error())
		default:
			emit.Error(err, "await result")
		}
		return zero, err
	}

	value, err := unwrap(result)
	if err != nil {
		emit.Error(err, "unwrap")
		return zero, err
	}
	if ctx.Err() != nil {
		return zero, ctx.Err()
	}

	emit.State("PENDING", "RESOLVED", "")
	return value, nil
}

// Await waits for a pending result on a connected handle. It fails with
// the handle's connection error if the connection is lost first, with
// ctx.Err() if ctx is done first, and with a *RequestError if the result
// status is not success.
func Await[R awareness.Result](ctx context.Context, h *connection.Handle, pending awareness.PendingResult[R]) (R, error) {
	c := completion.New[R]()
	pending.SetResultCallback(func(r R) {
		c.Resolve(r)
	})

	var zero R
	select {
	case <-c.Done():
	case <-h.Lost():
		return zero, h.Failure()
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	result, _ := c.Result()
	if status := result.Status(); !status.IsSuccess() {
		return result, &RequestError{Status: status}
	}
	return result, nil
}

// Go runs Execute in a goroutine and resolves the returned completion
// once with its outcome.
func Go[T any, R awareness.Result](
	ctx context.Context,
	factory awareness.ClientFactory,
	apis []awareness.API,
	request RequestFunc[R],
	unwrap UnwrapFunc[R, T],
	opts ...Option,
) *completion.Completion[T] {
	c := completion.New[T]()
	go func() {
		c.Complete(Execute(ctx, factory, apis, request, unwrap, opts...))
	}()
	return c
}
