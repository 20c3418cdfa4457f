package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Mauin/ReactiveAwareness/pkg/awareness"
	"github.com/Mauin/ReactiveAwareness/pkg/log"
	"github.com/google/uuid"
)

// Handle errors.
var (
	ErrConnectionFailed    = errors.New("connection failed")
	ErrConnectionSuspended = errors.New("connection suspended")
	ErrAlreadyUsed         = errors.New("handle already used")
	ErrTornDown            = errors.New("handle torn down")
)

// Error is a connection-level failure with the reason reported by the
// service. It unwraps to ErrConnectionFailed or ErrConnectionSuspended.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// State represents the handle lifecycle state.
type State uint8

const (
	// StateIdle indicates the handle was created but not used.
	StateIdle State = iota

	// StateConnecting indicates the connect call was issued.
	StateConnecting

	// StateConnected indicates the client is ready for requests.
	StateConnected

	// StateDisconnecting indicates teardown is in progress.
	StateDisconnecting

	// StateDisconnected indicates teardown finished.
	StateDisconnected

	// StateFailed indicates the connection failed or was suspended.
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateDisconnecting:
		return "DISCONNECTING"
	case StateDisconnected:
		return "DISCONNECTED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Option configures a Handle.
type Option func(*Handle)

// WithLogger sets the diagnostic sink.
func WithLogger(l log.Logger) Option {
	return func(h *Handle) {
		h.emit.Logger = l
	}
}

// WithOperation labels diagnostic events with the operation and
// registration name the handle serves.
func WithOperation(operation, name string) Option {
	return func(h *Handle) {
		h.emit.Operation = operation
		h.emit.Name = name
	}
}

// Handle owns one connection attempt to the service.
type Handle struct {
	mu sync.Mutex

	id      string
	apis    []awareness.API
	factory awareness.ClientFactory
	client  awareness.Client
	state   State
	failure error

	// settled is closed once Connect has an outcome.
	settled    chan struct{}
	settleOnce sync.Once

	// lost is closed when an established connection is suspended.
	lost     chan struct{}
	lostOnce sync.Once

	disconnectOnce sync.Once

	emit          log.Emitter
	onStateChange func(oldState, newState State)
}

// New creates an idle handle for the given APIs.
func New(factory awareness.ClientFactory, apis []awareness.API, opts ...Option) *Handle {
	h := &Handle{
		id:      uuid.NewString(),
		apis:    apis,
		factory: factory,
		state:   StateIdle,
		settled: make(chan struct{}),
		lost:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.emit.Layer = log.LayerConnection
	h.emit.HandleID = h.id
	return h
}

// ID returns the handle's unique identifier.
func (h *Handle) ID() string {
	return h.id
}

// State returns the current state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Client returns the owned client, or nil before Connect.
func (h *Handle) Client() awareness.Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.client
}

// Failure returns the connection error that moved the handle to Failed.
func (h *Handle) Failure() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failure
}

// Lost returns a channel closed when an established connection is
// suspended. Failure then reports the reason.
func (h *Handle) Lost() <-chan struct{} {
	return h.lost
}

// OnStateChange sets a callback for state changes. It must be set before
// Connect.
func (h *Handle) OnStateChange(fn func(oldState, newState State)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStateChange = fn
}

// Connect creates the client, issues its connect call and waits until the
// connection is established, fails, or ctx is done. The caller must call
// Teardown on every path, including ctx expiry.
func (h *Handle) Connect(ctx context.Context) error {
	h.mu.Lock()
	if h.state != StateIdle {
		h.mu.Unlock()
		return ErrAlreadyUsed
	}
	h.state = StateConnecting
	h.client = h.factory.NewClient(h.apis, callbacks{h})
	client := h.client
	h.mu.Unlock()

	h.notify(StateIdle, StateConnecting, "")

	// Callbacks may fire before Connect returns.
	client.Connect()

	select {
	case <-h.settled:
	case <-ctx.Done():
		return ctx.Err()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateConnected {
		return nil
	}
	if h.failure != nil {
		return h.failure
	}
	return ErrTornDown
}

// Teardown releases the connection. It is safe to call any number of
// times from any goroutine; at most one disconnect call is issued.
func (h *Handle) Teardown() {
	h.mu.Lock()
	switch h.state {
	case StateConnecting, StateConnected:
		old := h.state
		h.state = StateDisconnecting
		client := h.client
		h.mu.Unlock()

		h.settle()
		h.notify(old, StateDisconnecting, "")
		h.disconnect(client)

		h.mu.Lock()
		h.state = StateDisconnected
		h.mu.Unlock()
		h.notify(StateDisconnecting, StateDisconnected, "")

	case StateFailed:
		client := h.client
		h.mu.Unlock()

		if client != nil && (client.IsConnected() || client.IsConnecting()) {
			h.disconnect(client)
		}

	default:
		h.mu.Unlock()
	}
}

func (h *Handle) disconnect(client awareness.Client) {
	h.disconnectOnce.Do(func() {
		client.Disconnect()
	})
}

func (h *Handle) settle() {
	h.settleOnce.Do(func() { close(h.settled) })
}

// fail moves a connecting or connected handle to Failed.
func (h *Handle) fail(kind error, reason string) {
	h.mu.Lock()
	old := h.state
	if old != StateConnecting && old != StateConnected {
		h.mu.Unlock()
		return
	}
	h.state = StateFailed
	h.failure = &Error{Kind: kind, Reason: reason}
	h.mu.Unlock()

	h.notify(old, StateFailed, reason)
	if old == StateConnected {
		h.lostOnce.Do(func() { close(h.lost) })
	}
	h.settle()
}

func (h *Handle) connected() {
	h.mu.Lock()
	if h.state != StateConnecting {
		h.mu.Unlock()
		return
	}
	h.state = StateConnected
	h.mu.Unlock()

	h.notify(StateConnecting, StateConnected, "")
	h.settle()
}

func (h *Handle) notify(oldState, newState State, reason string) {
	h.emit.State(oldState.String(), newState.String(), reason)

	h.mu.Lock()
	fn := h.onStateChange
	h.mu.Unlock()
	if fn != nil {
		fn(oldState, newState)
	}
}

// callbacks routes service connection callbacks into the handle.
type callbacks struct {
	h *Handle
}

func (c callbacks) OnConnected() {
	c.h.connected()
}

func (c callbacks) OnConnectionSuspended(reason string) {
	c.h.fail(ErrConnectionSuspended, reason)
}

func (c callbacks) OnConnectionFailed(reason string) {
	c.h.fail(ErrConnectionFailed, reason)
}

var _ awareness.ConnectionCallbacks = callbacks{}
