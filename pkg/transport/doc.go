// Package transport carries condition update envelopes to the fixed
// dispatch address.
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   CBOR wire.Envelope           │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// The service side opens one connection per delivery (Send) and writes a
// single frame. The dispatch side runs a Server that reads frames until the
// peer closes the connection, goes idle, or sends a bad frame, and hands each
// frame to its FrameHandler.
package transport
