// Package sim is an in-memory awareness service. It implements
// awareness.ClientFactory so the bridge, the CLI and tests can run without
// a real backend.
//
// All clients created by one Service share its fence table, as clients
// using the same credentials do against the real service. Fence conditions
// are evaluated against a mutable World; state changes are pushed in order
// through a per-fence delivery queue. Persistent fences are delivered by
// dialing their dispatch address and writing a framed wire.Envelope.
//
// The Service records every connect, disconnect and fence operation so
// tests can assert on call counts and ordering, and can be told to fail
// connects or requests.
package sim
