package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mauin/ReactiveAwareness/pkg/wire"
)

// ErrNoHandler is returned when an update has no handler and no fallback.
var ErrNoHandler = errors.New("no handler for update")

// Update is one decoded condition update.
type Update struct {
	Name       string
	State      bool
	Payload    []byte
	RemoteAddr string
	ReceivedAt time.Time
}

// Handler handles decoded updates.
type Handler interface {
	HandleUpdate(ctx context.Context, u Update) error
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(ctx context.Context, u Update) error

// HandleUpdate calls f.
func (f HandlerFunc) HandleUpdate(ctx context.Context, u Update) error {
	return f(ctx, u)
}

// Router decodes envelopes and hands them to a single Handler.
type Router struct {
	handler Handler
	now     func() time.Time
}

// NewRouter creates a router delivering to h.
func NewRouter(h Handler) *Router {
	return &Router{handler: h, now: time.Now}
}

// Dispatch decodes data as a CBOR envelope and invokes the handler once.
func (r *Router) Dispatch(ctx context.Context, data []byte, remoteAddr string) (Update, error) {
	env, err := wire.DecodeEnvelope(data)
	if err != nil {
		return Update{}, err
	}
	if err := env.Validate(); err != nil {
		return Update{}, fmt.Errorf("invalid envelope: %w", err)
	}

	u := Update{
		Name:       env.Name,
		State:      env.State,
		Payload:    env.Payload,
		RemoteAddr: remoteAddr,
		ReceivedAt: r.now(),
	}
	return u, r.handler.HandleUpdate(ctx, u)
}
