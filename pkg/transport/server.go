package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Mauin/ReactiveAwareness/pkg/log"
	"github.com/google/uuid"
)

// DefaultIdleTimeout closes a delivery connection that sends nothing for
// this long.
const DefaultIdleTimeout = 30 * time.Second

// ErrTooManyConnections is reported when an accepted connection is refused
// because MaxConnections are already open.
var ErrTooManyConnections = errors.New("too many open connections")

// Peer identifies one inbound delivery connection.
type Peer struct {
	// ID is unique per accepted connection.
	ID string

	// RemoteAddr is the address of the delivering side.
	RemoteAddr string
}

// FrameHandler receives every frame a Server reads. Frames of one peer are
// handed over in order, from that peer's goroutine.
type FrameHandler interface {
	HandleFrame(peer Peer, frame []byte)
}

// FrameHandlerFunc adapts a function to FrameHandler.
type FrameHandlerFunc func(peer Peer, frame []byte)

// HandleFrame calls f.
func (f FrameHandlerFunc) HandleFrame(peer Peer, frame []byte) { f(peer, frame) }

// Stats are server counters since Start.
type Stats struct {
	Accepted uint64
	Refused  uint64
	Frames   uint64
	Errors   uint64
	Open     int
}

// ServerConfig configures a dispatch server.
type ServerConfig struct {
	// Address to listen on (e.g., "127.0.0.1:7420"). Port 0 picks a free port.
	Address string

	// MaxMessageSize is the maximum frame size (default: DefaultMaxMessageSize).
	MaxMessageSize uint32

	// IdleTimeout bounds the wait for the next frame (default:
	// DefaultIdleTimeout). Negative disables it.
	IdleTimeout time.Duration

	// MaxConnections caps concurrently open connections. Zero is unlimited.
	MaxConnections int

	// Handler receives frames.
	Handler FrameHandler

	// OnError is told about bad frames and failed reads. Peer is zero for
	// accept errors.
	OnError func(peer Peer, err error)

	// Logger for diagnostic events (optional).
	Logger log.Logger
}

// Server reads length-prefixed frames from inbound TCP connections.
type Server struct {
	config   ServerConfig
	listener net.Listener

	mu    sync.Mutex
	peers map[string]net.Conn

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	accepted atomic.Uint64
	refused  atomic.Uint64
	frames   atomic.Uint64
	errs     atomic.Uint64
}

// NewServer creates a server. Call Start to begin accepting.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}
	return &Server{
		config: config,
		peers:  make(map[string]net.Conn),
	}, nil
}

// Start binds the address and accepts connections until Stop is called or
// ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return fmt.Errorf("server already running")
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener
	s.done = make(chan struct{})
	s.running.Store(true)

	s.emitter(Peer{}).State("", "LISTENING", listener.Addr().String())

	s.wg.Add(1)
	go s.acceptLoop()

	go func(done <-chan struct{}) {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-done:
		}
	}(s.done)

	return nil
}

// Stop closes the listener and every open connection, then waits for the
// connection goroutines to finish. Safe to call more than once.
func (s *Server) Stop() error {
	if !s.running.Swap(false) {
		return nil
	}
	close(s.done)
	s.listener.Close()

	s.mu.Lock()
	for _, conn := range s.peers {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()

	s.emitter(Peer{}).State("LISTENING", "STOPPED", "")
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// Stats returns a snapshot of the server counters.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	open := len(s.peers)
	s.mu.Unlock()

	return Stats{
		Accepted: s.accepted.Load(),
		Refused:  s.refused.Load(),
		Frames:   s.frames.Load(),
		Errors:   s.errs.Load(),
		Open:     open,
	}
}

func (s *Server) emitter(peer Peer) log.Emitter {
	return log.Emitter{
		Logger:     s.config.Logger,
		Layer:      log.LayerTransport,
		HandleID:   peer.ID,
		RemoteAddr: peer.RemoteAddr,
	}
}

func (s *Server) fail(peer Peer, err error, op string) {
	s.errs.Add(1)
	s.emitter(peer).Error(err, op)
	if s.config.OnError != nil {
		s.config.OnError(peer, err)
	}
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.fail(Peer{}, err, "accept")
			continue
		}

		peer := Peer{ID: uuid.New().String(), RemoteAddr: conn.RemoteAddr().String()}
		if err := s.track(peer, conn); err != nil {
			if errors.Is(err, ErrTooManyConnections) {
				s.refused.Add(1)
				s.emitter(peer).Error(err, "accept")
			}
			conn.Close()
			continue
		}
		s.accepted.Add(1)

		s.wg.Add(1)
		go s.serve(peer, conn)
	}
}

// track registers conn unless the server stopped or is full.
func (s *Server) track(peer Peer, conn net.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return net.ErrClosed
	}
	if limit := s.config.MaxConnections; limit > 0 && len(s.peers) >= limit {
		return ErrTooManyConnections
	}
	s.peers[peer.ID] = conn
	return nil
}

func (s *Server) untrack(peer Peer) {
	s.mu.Lock()
	conn := s.peers[peer.ID]
	delete(s.peers, peer.ID)
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (s *Server) serve(peer Peer, conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(peer)

	emit := s.emitter(peer)
	emit.State("", "OPEN", "")
	reason := s.readFrames(peer, conn)
	emit.State("OPEN", "CLOSED", reason)
}

// readFrames hands frames to the handler until the connection ends and
// returns why it ended.
func (s *Server) readFrames(peer Peer, conn net.Conn) string {
	fr := NewFrameReaderWithMaxSize(conn, s.config.MaxMessageSize)
	for {
		if s.config.IdleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout))
		}

		frame, err := fr.ReadFrame()
		if err != nil {
			var netErr net.Error
			switch {
			case errors.Is(err, io.EOF):
				return "peer closed"
			case !s.running.Load() || errors.Is(err, net.ErrClosed):
				return "server stopped"
			case errors.As(err, &netErr) && netErr.Timeout():
				return "idle"
			}
			s.fail(peer, err, "read frame")
			return "bad frame"
		}

		s.frames.Add(1)
		if s.config.Handler != nil {
			s.config.Handler.HandleFrame(peer, frame)
		}
	}
}
