// Package wire defines the CBOR wire format shared by the awareness bridge
// and the external dispatch mechanism.
//
// All maps use integer keys for compactness, the same way every message of
// the bridge is encoded.
//
// # Envelopes
//
// A persistent condition registration is delivered out of process as an
// Envelope:
//
//	{
//	  1: name,     // registration name
//	  2: state,    // bool: current condition state
//	  3: payload   // opaque bytes echoed from registration (optional)
//	}
//
// The dispatch address receives one Envelope per length-prefixed frame.
//
// # Conditions
//
// A Condition is the predicate a fence monitors. The bridge treats it as an
// opaque value; only the service evaluates it. Conditions compose with And,
// Or and Not and can be parsed from the short text form used by the CLI.
//
// # Status
//
// Every pending result resolves with a Status. Anything but StatusSuccess is
// a request-level failure carrying a human-readable message.
package wire
