// Package fence keeps named boolean conditions ("fences") registered with
// the awareness service and relays their state changes.
//
// Observe registers a condition for the lifetime of a Stream. States are
// relayed in the order the service reports them, one at a time: a consumer
// that does not read holds back the service's delivery goroutine. Nothing
// is dropped, coalesced or deduplicated.
//
// When the stream ends (context cancellation, Close, or connection loss)
// the engine stops delivering, unregisters the fence, then disconnects, in
// that order and exactly once. A failed unregister is reported to the
// diagnostic sink only.
//
// RegisterPersistent binds a condition to the dispatch address instead.
// Such registrations outlive the caller and are removed only through
// UnregisterPersistent. Each call owns its own connection, which is torn
// down before the call returns.
package fence
