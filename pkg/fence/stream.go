package fence

import (
	"context"
	"sync"
	"time"

	"github.com/Mauin/ReactiveAwareness/pkg/awareness"
	"github.com/Mauin/ReactiveAwareness/pkg/connection"
	"github.com/Mauin/ReactiveAwareness/pkg/log"
	"github.com/Mauin/ReactiveAwareness/pkg/single"
)

// Stream relays the states of one observed fence.
type Stream struct {
	name              string
	h                 *connection.Handle
	emit              log.Emitter
	unregisterTimeout time.Duration

	out chan bool

	// stop is closed when delivery must cease.
	stop     chan struct{}
	stopOnce sync.Once

	// closeReq is closed by Close.
	closeReq  chan struct{}
	closeOnce sync.Once

	// done is closed after cleanup finished.
	done chan struct{}

	// mu guards closed and err. deliver holds the read lock while sending
	// so cleanup can wait for an in-flight delivery.
	mu     sync.RWMutex
	closed bool
	err    error
}

func newStream(name string, h *connection.Handle, emit log.Emitter, unregisterTimeout time.Duration) *Stream {
	return &Stream{
		name:              name,
		h:                 h,
		emit:              emit,
		unregisterTimeout: unregisterTimeout,
		out:               make(chan bool),
		stop:              make(chan struct{}),
		closeReq:          make(chan struct{}),
		done:              make(chan struct{}),
	}
}

// Name returns the registration name.
func (s *Stream) Name() string {
	return s.name
}

// C returns the channel of states. It is closed when the stream ends.
func (s *Stream) C() <-chan bool {
	return s.out
}

// Done returns a channel closed once cleanup (unregister and disconnect)
// has finished.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that ended the stream, or nil when the stream was
// ended by its consumer. Only meaningful after Done is closed.
func (s *Stream) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Close ends the stream and waits for cleanup to finish.
func (s *Stream) Close() {
	s.closeOnce.Do(func() { close(s.closeReq) })
	<-s.done
}

// deliver is the LocalTarget callback. The service calls it sequentially.
func (s *Stream) deliver(fs awareness.FenceState) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}
	select {
	case <-s.stop:
		return
	default:
	}

	select {
	case s.out <- fs.State:
		s.emit.Delivery(log.DeliveryInProcess, fs.State, 0)
	case <-s.stop:
	}
}

func (s *Stream) run(ctx context.Context) {
	var err error
	select {
	case <-ctx.Done():
	case <-s.closeReq:
	case <-s.h.Lost():
		err = s.h.Failure()
	}
	s.cleanup(err)
}

// abort releases a stream whose registration never completed.
func (s *Stream) abort() {
	s.halt(nil)
	close(s.done)
}

// halt stops delivery and closes the output channel. After it returns no
// state is delivered.
func (s *Stream) halt(err error) {
	s.stopOnce.Do(func() { close(s.stop) })

	s.mu.Lock()
	s.closed = true
	s.err = err
	close(s.out)
	s.mu.Unlock()
}

// cleanup runs once per stream: stop delivery, unregister, disconnect.
func (s *Stream) cleanup(err error) {
	s.halt(err)
	s.emit.State("ACTIVE", "CLOSING", reason(err))

	if err != nil {
		// The connection is gone; the service dropped the fence with it.
		s.emit.Info(log.InfoUnregisterSkipped, err.Error())
	} else {
		s.unregister()
	}

	s.h.Teardown()
	s.emit.State("CLOSING", "CLOSED", "")
	close(s.done)
}

func (s *Stream) unregister() {
	ctx, cancel := context.WithTimeout(context.Background(), s.unregisterTimeout)
	defer cancel()

	client := s.h.Client()
	req := awareness.FenceUpdateRequest{}.RemoveFence(s.name)
	if _, err := single.Await(ctx, s.h, client.Fences().UpdateFences(req)); err != nil {
		s.emit.CleanupError(err, "unregister on cancel")
	}
}

func reason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
