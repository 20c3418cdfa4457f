package sim

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Mauin/ReactiveAwareness/pkg/awareness"
	"github.com/Mauin/ReactiveAwareness/pkg/log"
	"github.com/Mauin/ReactiveAwareness/pkg/transport"
	"github.com/Mauin/ReactiveAwareness/pkg/wire"
)

// DefaultMaxFences is the per-service fence limit.
const DefaultMaxFences = 100

// Call kinds recorded by the service.
const (
	CallConnect    = "connect"
	CallDisconnect = "disconnect"
	CallAdd        = "add"
	CallRemove     = "remove"
	CallQuery      = "query"
	CallSnapshot   = "snapshot"
)

// Call is one recorded client call.
type Call struct {
	Kind     string
	Name     string
	ClientID int
}

func (c Call) String() string {
	if c.Name == "" {
		return c.Kind
	}
	return c.Kind + ":" + c.Name
}

// Option configures a Service.
type Option func(*Service)

// WithWorld sets the initial world.
func WithWorld(w World) Option {
	return func(s *Service) { s.world = w.clone() }
}

// WithLogger sets the diagnostic sink for persistent deliveries.
func WithLogger(l log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithConnectDelay delays connection callbacks.
func WithConnectDelay(d time.Duration) Option {
	return func(s *Service) { s.connectDelay = d }
}

// WithMaxFences sets the fence limit.
func WithMaxFences(n int) Option {
	return func(s *Service) { s.maxFences = n }
}

// WithoutInitialState disables the state push that follows a fence
// registration. Only Trigger and world changes then produce updates.
func WithoutInitialState() Option {
	return func(s *Service) { s.initialState = false }
}

// Service is a simulated awareness service for one set of credentials.
type Service struct {
	mu sync.Mutex

	world        World
	fences       map[string]*fenceEntry
	clients      map[int]*client
	nextClientID int
	calls        []Call

	connectFailure string
	requestFailure wire.Status
	fenceFailure   map[awareness.FenceOp]wire.Status
	hold           chan struct{}

	connectDelay time.Duration
	maxFences    int
	initialState bool

	logger log.Logger
	sender transport.Sender
}

type fenceEntry struct {
	name      string
	condition wire.Condition
	target    awareness.DeliveryTarget
	owner     int
	state     bool
	queue     *deliveryQueue
}

// New creates a service.
func New(opts ...Option) *Service {
	s := &Service{
		world:          DefaultWorld(),
		fences:         make(map[string]*fenceEntry),
		clients:        make(map[int]*client),
		fenceFailure:   make(map[awareness.FenceOp]wire.Status),
		maxFences:      DefaultMaxFences,
		initialState:   true,
		requestFailure: wire.OK,
		sender:         transport.Sender{DialTimeout: 2 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClient implements awareness.ClientFactory.
func (s *Service) NewClient(apis []awareness.API, callbacks awareness.ConnectionCallbacks) awareness.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextClientID++
	c := &client{
		id:        s.nextClientID,
		svc:       s,
		apis:      append([]awareness.API(nil), apis...),
		callbacks: callbacks,
	}
	s.clients[c.id] = c
	return c
}

// FailConnect makes subsequent connect attempts fail with reason.
// An empty reason restores successful connects.
func (s *Service) FailConnect(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectFailure = reason
}

// FailRequests makes snapshot and query requests complete with status.
// wire.OK restores success.
func (s *Service) FailRequests(status wire.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestFailure = status
}

// FailFenceOp makes fence updates of kind op complete with status without
// being applied. wire.OK restores success.
func (s *Service) FailFenceOp(op awareness.FenceOp, status wire.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status.IsSuccess() {
		delete(s.fenceFailure, op)
		return
	}
	s.fenceFailure[op] = status
}

// Hold delays every result callback until the returned release function is
// called.
func (s *Service) Hold() (release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{})
	s.hold = ch
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.hold == ch {
				s.hold = nil
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Suspend reports a connection suspension to every connected client.
func (s *Service) Suspend(reason string) {
	s.mu.Lock()
	var affected []*client
	for _, c := range s.clients {
		if c.state == clientConnected {
			c.state = clientIdle
			s.dropLocalFencesLocked(c.id)
			affected = append(affected, c)
		}
	}
	s.mu.Unlock()

	for _, c := range affected {
		c.callbacks.OnConnectionSuspended(reason)
	}
}

// World returns a copy of the current world.
func (s *Service) World() World {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.clone()
}

// Update changes the world and pushes every fence whose state changed.
func (s *Service) Update(fn func(w *World)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.world)
	for _, f := range s.fences {
		state := s.world.Evaluate(f.condition)
		if state != f.state {
			f.state = state
			s.pushLocked(f)
		}
	}
}

// SetHeadphones plugs or unplugs the headphones.
func (s *Service) SetHeadphones(plugged bool) {
	s.Update(func(w *World) { w.Headphones = plugged })
}

// SetActivity replaces the detected activity with a single classification.
func (s *Service) SetActivity(t wire.ActivityType, confidence int) {
	s.Update(func(w *World) {
		w.Activity = awareness.ActivityRecognition{
			Probable: []awareness.DetectedActivity{{Type: t, Confidence: confidence}},
			Time:     time.Now(),
		}
	})
}

// SetFlag sets a service-side flag.
func (s *Service) SetFlag(key string, value bool) {
	s.Update(func(w *World) {
		if w.Flags == nil {
			w.Flags = make(map[string]bool)
		}
		w.Flags[key] = value
	})
}

// Trigger pushes state for the fence name regardless of the world, as a
// service reporting a transition would. Repeated states are pushed again.
func (s *Service) Trigger(name string, state bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.fences[name]
	if !ok {
		return fmt.Errorf("unknown fence %q", name)
	}
	f.state = state
	s.pushLocked(f)
	return nil
}

// Fences returns the registered fence names and conditions.
func (s *Service) Fences() map[string]wire.Condition {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]wire.Condition, len(s.fences))
	for name, f := range s.fences {
		out[name] = f.condition
	}
	return out
}

// Calls returns the recorded calls in order.
func (s *Service) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Count returns how many calls of kind were recorded, optionally limited
// to name.
func (s *Service) Count(kind, name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.calls {
		if c.Kind == kind && (name == "" || c.Name == name) {
			n++
		}
	}
	return n
}

// ResetCalls clears the call record.
func (s *Service) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Service) recordLocked(kind, name string, clientID int) {
	s.calls = append(s.calls, Call{Kind: kind, Name: name, ClientID: clientID})
}

// pushLocked queues the current state of f for delivery.
func (s *Service) pushLocked(f *fenceEntry) {
	fs := awareness.FenceState{Name: f.name, State: f.state}
	if t, ok := f.target.(awareness.PersistentTarget); ok {
		fs.Payload = t.Payload
	}
	f.queue.push(fs)
}

// addFenceLocked registers or replaces a fence.
func (s *Service) addFenceLocked(u awareness.FenceUpdate, owner int) wire.Status {
	if err := u.Condition.Validate(); err != nil {
		return wire.NewStatus(wire.StatusInvalidRequest, "%v", err)
	}
	if u.Name == "" {
		return wire.NewStatus(wire.StatusInvalidRequest, "empty fence name")
	}

	switch t := u.Target.(type) {
	case awareness.LocalTarget:
		if t.Deliver == nil {
			return wire.NewStatus(wire.StatusInvalidRequest, "local target without callback")
		}
	case awareness.PersistentTarget:
		if t.Address == "" {
			return wire.NewStatus(wire.StatusInvalidRequest, "persistent target without address")
		}
	default:
		return wire.NewStatus(wire.StatusInvalidRequest, "missing delivery target")
	}

	prev, replacing := s.fences[u.Name]
	if !replacing && len(s.fences) >= s.maxFences {
		return wire.NewStatus(wire.StatusTooManyFences, "limit of %d fences reached", s.maxFences)
	}

	f := &fenceEntry{
		name:      u.Name,
		condition: u.Condition,
		target:    u.Target,
		owner:     owner,
		state:     s.world.Evaluate(u.Condition),
	}
	switch t := u.Target.(type) {
	case awareness.LocalTarget:
		f.queue = newDeliveryQueue(t.Deliver)
	case awareness.PersistentTarget:
		f.queue = newDeliveryQueue(func(fs awareness.FenceState) {
			s.dispatch(t.Address, fs)
		})
	}

	if replacing {
		prev.queue.close()
	}
	s.fences[u.Name] = f
	if s.initialState {
		s.pushLocked(f)
	}
	return wire.OK
}

func (s *Service) removeFenceLocked(name string) {
	if f, ok := s.fences[name]; ok {
		f.queue.close()
		delete(s.fences, name)
	}
}

// dropLocalFencesLocked removes in-process fences owned by a client that
// went away.
func (s *Service) dropLocalFencesLocked(clientID int) {
	for name, f := range s.fences {
		if _, local := f.target.(awareness.LocalTarget); local && f.owner == clientID {
			f.queue.close()
			delete(s.fences, name)
		}
	}
}

// dispatch delivers a persistent fence state to its dispatch address.
func (s *Service) dispatch(address string, fs awareness.FenceState) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	emit := log.Emitter{Logger: s.logger, Layer: log.LayerDispatch, Operation: "deliver", Name: fs.Name, RemoteAddr: address}
	if err := s.sender.SendEnvelope(ctx, address, fs.Envelope()); err != nil {
		emit.Error(err, "send envelope")
		return
	}
	emit.Delivery(log.DeliveryPersistent, fs.State, len(fs.Payload))
}

// queryLocked returns the state of the fences selected by req. Fences
// are marked persistent by their delivery target.
func (s *Service) queryLocked(req awareness.FenceQueryRequest) awareness.FenceQueryResult {
	selected := make([]*fenceEntry, 0, len(s.fences))
	if len(req.Names) == 0 {
		for _, f := range s.fences {
			selected = append(selected, f)
		}
	} else {
		for _, name := range req.Names {
			if f, ok := s.fences[name]; ok {
				selected = append(selected, f)
			}
		}
	}

	states := make(map[string]bool, len(selected))
	var persistent []string
	for _, f := range selected {
		_, isPersistent := f.target.(awareness.PersistentTarget)
		if req.PersistentOnly && !isPersistent {
			continue
		}
		states[f.name] = f.state
		if isPersistent {
			persistent = append(persistent, f.name)
		}
	}
	return awareness.NewFenceQueryResult(wire.OK, states).WithPersistent(persistent...)
}

// FenceNames returns the registered names, sorted.
func (s *Service) FenceNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.fences))
	for name := range s.fences {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolve delivers r to the callback on a service goroutine, after any hold
// is released.
func resolve[R awareness.Result](s *Service, r R) awareness.PendingResult[R] {
	s.mu.Lock()
	hold := s.hold
	s.mu.Unlock()

	return awareness.PendingFunc[R](func(cb func(R)) {
		go func() {
			if hold != nil {
				<-hold
			}
			cb(r)
		}()
	})
}

var _ awareness.ClientFactory = (*Service)(nil)
