// Package connection turns the connect/disconnect protocol of an
// awareness.Client into a single-use Handle with deterministic teardown.
//
// # Lifecycle
//
//	Idle -> Connecting -> Connected -> Disconnecting -> Disconnected
//	           |              |
//	           +----> Failed <+
//
// Connect issues exactly one client connect call and waits for the outcome.
// A failed or suspended connect attempt ends in Failed and carries the
// reason reported by the service. A suspension after Connected also moves
// the handle to Failed and closes the Lost channel.
//
// Teardown is idempotent and may race from several completion paths: at
// most one disconnect call is issued per handle. Handles are never reused;
// a second Connect returns ErrAlreadyUsed.
//
// Every transition is reported to the diagnostic log.Logger as a state
// change event carrying the handle ID.
package connection
