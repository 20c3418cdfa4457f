package transport

import (
	"context"
	"net"
)

// TransportServer is a framed TCP server. Implemented by Server.
type TransportServer interface {
	Start(ctx context.Context) error
	Stop() error
	Addr() net.Addr
	Stats() Stats
}

var _ TransportServer = (*Server)(nil)
