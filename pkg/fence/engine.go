package fence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mauin/ReactiveAwareness/pkg/awareness"
	"github.com/Mauin/ReactiveAwareness/pkg/connection"
	"github.com/Mauin/ReactiveAwareness/pkg/log"
	"github.com/Mauin/ReactiveAwareness/pkg/persistence"
	"github.com/Mauin/ReactiveAwareness/pkg/single"
	"github.com/Mauin/ReactiveAwareness/pkg/wire"
)

// DefaultUnregisterTimeout bounds the unregister issued while a stream is
// cleaned up.
const DefaultUnregisterTimeout = 10 * time.Second

// Engine errors.
var (
	ErrNoDispatchAddress = errors.New("no dispatch address configured")
)

// Store records persistent registrations made through the engine.
// Implemented by persistence.RegistrationStore.
type Store interface {
	Put(reg persistence.Registration) (replaced bool, err error)
	Remove(name string) (bool, error)
}

// Config configures an Engine.
type Config struct {
	// DispatchAddress receives persistent deliveries.
	DispatchAddress string

	// APIs requested for every connection (default: awareness).
	APIs []awareness.API

	// Logger receives diagnostic events (optional).
	Logger log.Logger

	// Store records persistent registrations (optional).
	Store Store

	// UnregisterTimeout bounds the unregister on stream cleanup
	// (default: DefaultUnregisterTimeout).
	UnregisterTimeout time.Duration
}

// Engine registers fences. It holds no per-operation state; every call
// acquires its own connection.
type Engine struct {
	factory awareness.ClientFactory
	config  Config
}

// NewEngine creates an engine.
func NewEngine(factory awareness.ClientFactory, config Config) *Engine {
	if len(config.APIs) == 0 {
		config.APIs = []awareness.API{awareness.APIAwareness}
	}
	if config.UnregisterTimeout == 0 {
		config.UnregisterTimeout = DefaultUnregisterTimeout
	}
	return &Engine{factory: factory, config: config}
}

// DispatchAddress returns the configured dispatch address.
func (e *Engine) DispatchAddress() string {
	return e.config.DispatchAddress
}

func validate(name string, condition wire.Condition) error {
	if name == "" {
		return wire.ErrEmptyName
	}
	return condition.Validate()
}

// Observe registers condition under name for the lifetime of the returned
// stream. It returns once the service acknowledged the registration; on
// error nothing was delivered and the connection is already torn down.
//
// The stream ends when ctx is done, when Close is called, or when the
// connection is suspended (Err then reports connection.ErrConnectionSuspended).
func (e *Engine) Observe(ctx context.Context, name string, condition wire.Condition) (*Stream, error) {
	if err := validate(name, condition); err != nil {
		return nil, err
	}

	h := connection.New(e.factory, e.config.APIs,
		connection.WithLogger(e.config.Logger),
		connection.WithOperation("observe", name))
	emit := log.Emitter{
		Logger:    e.config.Logger,
		Layer:     log.LayerFence,
		HandleID:  h.ID(),
		Operation: "observe",
		Name:      name,
	}

	if err := h.Connect(ctx); err != nil {
		emit.Error(err, "connect")
		h.Teardown()
		return nil, err
	}

	s := newStream(name, h, emit, e.config.UnregisterTimeout)
	emit.State("", "REGISTERING", "")

	req := awareness.FenceUpdateRequest{}.AddFence(name, condition, awareness.LocalTarget{Deliver: s.deliver})
	if _, err := single.Await(ctx, h, h.Client().Fences().UpdateFences(req)); err != nil {
		emit.Error(err, "register")
		s.abort()
		h.Teardown()
		return nil, err
	}

	emit.State("REGISTERING", "ACTIVE", "")
	go s.run(ctx)
	return s, nil
}

// RegisterPersistent registers condition under name with delivery to the
// dispatch address. payload is echoed in every delivery. Registering a
// name again replaces the earlier registration.
func (e *Engine) RegisterPersistent(ctx context.Context, name string, condition wire.Condition, payload []byte) error {
	if err := validate(name, condition); err != nil {
		return err
	}
	if len(payload) > wire.MaxPayloadSize {
		return fmt.Errorf("%w: %d > %d", wire.ErrPayloadTooLarge, len(payload), wire.MaxPayloadSize)
	}
	if e.config.DispatchAddress == "" {
		return ErrNoDispatchAddress
	}

	target := awareness.PersistentTarget{Address: e.config.DispatchAddress, Payload: payload}
	req := awareness.FenceUpdateRequest{}.AddFence(name, condition, target)
	if err := e.update(ctx, "register", name, req); err != nil {
		return err
	}

	if e.config.Store == nil {
		return nil
	}
	emit := e.emitter("register", name)
	replaced, err := e.config.Store.Put(persistence.Registration{
		Name:      name,
		Condition: condition,
		Payload:   payload,
	})
	if err != nil {
		emit.CleanupError(err, "record registration")
	}
	if replaced {
		emit.Info(log.InfoDuplicateNameReplaced, name)
	}
	return nil
}

// UnregisterPersistent removes the persistent registration for name.
func (e *Engine) UnregisterPersistent(ctx context.Context, name string) error {
	if name == "" {
		return wire.ErrEmptyName
	}

	req := awareness.FenceUpdateRequest{}.RemoveFence(name)
	if err := e.update(ctx, "unregister", name, req); err != nil {
		return err
	}

	if e.config.Store != nil {
		if _, err := e.config.Store.Remove(name); err != nil {
			e.emitter("unregister", name).CleanupError(err, "remove registration record")
		}
	}
	return nil
}

// QueryPersistent returns the current state of every persistent
// registration known to the service under the same credentials, including
// those made by other processes. Fences backing live streams are excluded.
func (e *Engine) QueryPersistent(ctx context.Context) (map[string]bool, error) {
	return single.Execute(ctx, e.factory, e.config.APIs,
		func(c awareness.Client) awareness.PendingResult[awareness.FenceQueryResult] {
			return c.Fences().QueryFences(awareness.FenceQueryRequest{PersistentOnly: true})
		},
		single.Map(func(r awareness.FenceQueryResult) map[string]bool {
			return r.PersistentStates()
		}),
		single.WithLogger(e.config.Logger),
		single.WithOperation("query"))
}

func (e *Engine) update(ctx context.Context, operation, name string, req awareness.FenceUpdateRequest) error {
	_, err := single.Execute(ctx, e.factory, e.config.APIs,
		func(c awareness.Client) awareness.PendingResult[awareness.StatusResult] {
			return c.Fences().UpdateFences(req)
		},
		single.Map(func(awareness.StatusResult) struct{} { return struct{}{} }),
		single.WithLogger(e.config.Logger),
		single.WithOperation(operation),
		single.WithName(name))
	return err
}

func (e *Engine) emitter(operation, name string) log.Emitter {
	return log.Emitter{
		Logger:    e.config.Logger,
		Layer:     log.LayerFence,
		Operation: operation,
		Name:      name,
	}
}
