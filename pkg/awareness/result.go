package awareness

import "github.com/Mauin/ReactiveAwareness/pkg/wire"

// Result is the outcome of a service request.
type Result interface {
	Status() wire.Status
}

// PendingResult is a request in flight. The callback is invoked once, on a
// service goroutine, when the result is available.
type PendingResult[R Result] interface {
	SetResultCallback(callback func(R))
}

// StatusResult is a Result carrying only a status. Richer results embed it.
type StatusResult struct {
	status wire.Status
}

// NewStatusResult wraps a status.
func NewStatusResult(status wire.Status) StatusResult {
	return StatusResult{status: status}
}

// Status returns the request status.
func (r StatusResult) Status() wire.Status {
	return r.status
}

// PendingFunc adapts a function to PendingResult. The function receives the
// callback and is responsible for calling it once.
type PendingFunc[R Result] func(callback func(R))

// SetResultCallback calls f.
func (f PendingFunc[R]) SetResultCallback(callback func(R)) {
	f(callback)
}

// Resolved returns a PendingResult that delivers r as soon as a callback is
// set.
func Resolved[R Result](r R) PendingResult[R] {
	return PendingFunc[R](func(cb func(R)) { cb(r) })
}
