package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/Mauin/ReactiveAwareness/pkg/wire"
)

// DefaultDialTimeout bounds connection setup for Send.
const DefaultDialTimeout = 5 * time.Second

// Sender delivers single frames to a dispatch address.
// The zero value is ready to use.
type Sender struct {
	// DialTimeout bounds connection setup (default: DefaultDialTimeout).
	DialTimeout time.Duration
}

// Send dials address, writes data as one frame and closes the connection.
func (s *Sender) Send(ctx context.Context, address string, data []byte) error {
	timeout := s.DialTimeout
	if timeout == 0 {
		timeout = DefaultDialTimeout
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("dial %s: %w", address, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(deadline)
	}
	return NewFrameWriter(conn).WriteFrame(data)
}

// SendEnvelope encodes env and sends it to address.
func (s *Sender) SendEnvelope(ctx context.Context, address string, env *wire.Envelope) error {
	data, err := wire.EncodeEnvelope(env)
	if err != nil {
		return err
	}
	return s.Send(ctx, address, data)
}
