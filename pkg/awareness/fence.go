package awareness

import "github.com/Mauin/ReactiveAwareness/pkg/wire"

// FenceState is a condition update reported by the service.
type FenceState struct {
	// Name of the registration.
	Name string

	// State is the current truth value of the condition.
	State bool

	// Payload echoes the opaque payload of a persistent registration.
	Payload []byte
}

// Envelope converts the update into its out-of-process wire form.
func (s FenceState) Envelope() *wire.Envelope {
	return &wire.Envelope{Name: s.Name, State: s.State, Payload: s.Payload}
}

// DeliveryTarget is where the service sends condition updates.
type DeliveryTarget interface {
	deliveryTarget()
}

// LocalTarget delivers updates to a function in the registering process.
// The service calls Deliver sequentially in reporting order; a blocking
// Deliver holds back later updates for the same fence.
type LocalTarget struct {
	Deliver func(FenceState)
}

// PersistentTarget delivers updates as a wire.Envelope to Address. The
// registration outlives the registering process.
type PersistentTarget struct {
	Address string
	Payload []byte
}

func (LocalTarget) deliveryTarget()      {}
func (PersistentTarget) deliveryTarget() {}

// FenceOp is the kind of a fence update.
type FenceOp uint8

const (
	// FenceAdd registers or replaces a fence.
	FenceAdd FenceOp = iota
	// FenceRemove unregisters a fence.
	FenceRemove
)

// String returns the operation name.
func (o FenceOp) String() string {
	switch o {
	case FenceAdd:
		return "ADD"
	case FenceRemove:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// FenceUpdate is one add or remove operation.
type FenceUpdate struct {
	Op        FenceOp
	Name      string
	Condition wire.Condition
	Target    DeliveryTarget
}

// FenceUpdateRequest batches fence updates. Updates apply in order.
type FenceUpdateRequest struct {
	Updates []FenceUpdate
}

// AddFence appends an add operation. Adding a name that is already
// registered replaces the earlier registration.
func (r FenceUpdateRequest) AddFence(name string, condition wire.Condition, target DeliveryTarget) FenceUpdateRequest {
	r.Updates = append(r.Updates, FenceUpdate{Op: FenceAdd, Name: name, Condition: condition, Target: target})
	return r
}

// RemoveFence appends a remove operation.
func (r FenceUpdateRequest) RemoveFence(name string) FenceUpdateRequest {
	r.Updates = append(r.Updates, FenceUpdate{Op: FenceRemove, Name: name})
	return r
}

// FenceQueryRequest selects fences to query. No names selects all fences
// registered under the client's credentials.
type FenceQueryRequest struct {
	Names []string

	// PersistentOnly restricts the result to fences with a PersistentTarget.
	PersistentOnly bool
}

// FenceQueryResult maps fence names to their current state.
type FenceQueryResult struct {
	StatusResult
	states     map[string]bool
	persistent map[string]bool
}

// NewFenceQueryResult creates a query result.
func NewFenceQueryResult(status wire.Status, states map[string]bool) FenceQueryResult {
	return FenceQueryResult{StatusResult: NewStatusResult(status), states: states}
}

// WithPersistent returns a copy of r that marks names as persistent
// registrations.
func (r FenceQueryResult) WithPersistent(names ...string) FenceQueryResult {
	persistent := make(map[string]bool, len(r.persistent)+len(names))
	for k := range r.persistent {
		persistent[k] = true
	}
	for _, name := range names {
		persistent[name] = true
	}
	r.persistent = persistent
	return r
}

// IsPersistent reports whether name is delivered to a dispatch address.
func (r FenceQueryResult) IsPersistent(name string) bool {
	return r.persistent[name]
}

// States returns a copy of the name to state mapping.
func (r FenceQueryResult) States() map[string]bool {
	out := make(map[string]bool, len(r.states))
	for k, v := range r.states {
		out[k] = v
	}
	return out
}

// PersistentStates is States restricted to persistent registrations.
func (r FenceQueryResult) PersistentStates() map[string]bool {
	out := make(map[string]bool, len(r.persistent))
	for k, v := range r.states {
		if r.persistent[k] {
			out[k] = v
		}
	}
	return out
}

// FenceAPI registers and queries fences.
type FenceAPI interface {
	UpdateFences(req FenceUpdateRequest) PendingResult[StatusResult]
	QueryFences(req FenceQueryRequest) PendingResult[FenceQueryResult]
}
