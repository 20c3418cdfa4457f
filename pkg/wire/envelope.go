package wire

import "errors"

// ErrEmptyName is returned for envelopes and registrations without a name.
var ErrEmptyName = errors.New("registration name is empty")

// MaxPayloadSize bounds the opaque payload attached to a registration.
const MaxPayloadSize = 16 * 1024

// ErrPayloadTooLarge is returned when a payload exceeds MaxPayloadSize.
var ErrPayloadTooLarge = errors.New("payload too large")

// Envelope is a single out-of-process condition update.
//
// CBOR encoding:
//
//	{
//	  1: name,     // string
//	  2: state,    // bool
//	  3: payload   // bytes, omitted when absent
//	}
type Envelope struct {
	Name    string `cbor:"1,keyasint"`
	State   bool   `cbor:"2,keyasint"`
	Payload []byte `cbor:"3,keyasint,omitempty"`
}

// Validate checks the envelope carries a name and a bounded payload.
func (e *Envelope) Validate() error {
	if e.Name == "" {
		return ErrEmptyName
	}
	if len(e.Payload) > MaxPayloadSize {
		return ErrPayloadTooLarge
	}
	return nil
}

// HasPayload reports whether a payload was attached at registration.
func (e *Envelope) HasPayload() bool {
	return len(e.Payload) > 0
}
