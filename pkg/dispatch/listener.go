package dispatch

import (
	"context"
	"net"
	"time"

	"github.com/Mauin/ReactiveAwareness/pkg/log"
	"github.com/Mauin/ReactiveAwareness/pkg/transport"
)

// StateRecorder keeps the last delivered state per name.
type StateRecorder interface {
	RecordState(name string, state bool, at time.Time) error
}

// ListenerConfig configures a Listener.
type ListenerConfig struct {
	// Address is the dispatch address. Port 0 picks a free port.
	Address string

	// Handler receives every decoded update.
	Handler Handler

	// Recorder, if set, is told about every decoded update before the
	// handler runs.
	Recorder StateRecorder

	// Logger for diagnostic events (optional).
	Logger log.Logger
}

// Listener accepts persistent deliveries at the dispatch address.
type Listener struct {
	config ListenerConfig
	router *Router
	server transport.TransportServer
	ctx    context.Context
}

// NewListener creates a listener. Call Start to begin accepting.
func NewListener(config ListenerConfig) (*Listener, error) {
	l := &Listener{config: config, ctx: context.Background()}
	l.router = NewRouter(HandlerFunc(l.handle))

	server, err := transport.NewServer(transport.ServerConfig{
		Address: config.Address,
		Logger:  config.Logger,
		Handler: transport.FrameHandlerFunc(l.onFrame),
	})
	if err != nil {
		return nil, err
	}
	l.server = server
	return l, nil
}

// Start begins accepting deliveries. Handlers see ctx.
func (l *Listener) Start(ctx context.Context) error {
	l.ctx = ctx
	return l.server.Start(ctx)
}

// Stop closes the listener and every open delivery connection.
func (l *Listener) Stop() error {
	return l.server.Stop()
}

// Addr returns the bound address, or nil before Start.
func (l *Listener) Addr() net.Addr {
	return l.server.Addr()
}

// Connections returns the number of open delivery connections.
func (l *Listener) Connections() int {
	return l.server.Stats().Open
}

// Stats returns the delivery counters of the underlying server.
func (l *Listener) Stats() transport.Stats {
	return l.server.Stats()
}

func (l *Listener) onFrame(peer transport.Peer, data []byte) {
	emit := log.Emitter{
		Logger:     l.config.Logger,
		Layer:      log.LayerDispatch,
		HandleID:   peer.ID,
		Operation:  "dispatch",
		RemoteAddr: peer.RemoteAddr,
	}

	u, err := l.router.Dispatch(l.ctx, data, peer.RemoteAddr)
	emit.Name = u.Name
	if err != nil {
		emit.Error(err, "route update")
		return
	}
	emit.Delivery(log.DeliveryPersistent, u.State, len(u.Payload))
}

// handle records the state, then forwards to the configured handler.
func (l *Listener) handle(ctx context.Context, u Update) error {
	if l.config.Recorder != nil {
		if err := l.config.Recorder.RecordState(u.Name, u.State, u.ReceivedAt); err != nil {
			log.Emitter{Logger: l.config.Logger, Layer: log.LayerDispatch, Operation: "dispatch", Name: u.Name}.
				CleanupError(err, "record state")
		}
	}
	if l.config.Handler == nil {
		return nil
	}
	return l.config.Handler.HandleUpdate(ctx, u)
}
