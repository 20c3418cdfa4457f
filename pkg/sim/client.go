package sim

import (
	"time"

	"github.com/Mauin/ReactiveAwareness/pkg/awareness"
	"github.com/Mauin/ReactiveAwareness/pkg/wire"
)

type clientState uint8

const (
	clientIdle clientState = iota
	clientConnecting
	clientConnected
)

// client is one connection to the simulated service.
type client struct {
	id        int
	svc       *Service
	apis      []awareness.API
	callbacks awareness.ConnectionCallbacks

	// state is guarded by svc.mu.
	state clientState
}

func (c *client) Connect() {
	s := c.svc
	s.mu.Lock()
	s.recordLocked(CallConnect, "", c.id)
	c.state = clientConnecting
	failure := s.connectFailure
	delay := s.connectDelay
	s.mu.Unlock()

	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}

		s.mu.Lock()
		if c.state != clientConnecting {
			s.mu.Unlock()
			return
		}
		if failure != "" {
			c.state = clientIdle
		} else {
			c.state = clientConnected
		}
		s.mu.Unlock()

		if failure != "" {
			c.callbacks.OnConnectionFailed(failure)
			return
		}
		c.callbacks.OnConnected()
	}()
}

func (c *client) Disconnect() {
	s := c.svc
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recordLocked(CallDisconnect, "", c.id)
	c.state = clientIdle
	s.dropLocalFencesLocked(c.id)
}

func (c *client) IsConnected() bool {
	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()
	return c.state == clientConnected
}

func (c *client) IsConnecting() bool {
	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()
	return c.state == clientConnecting
}

func (c *client) Snapshot() awareness.SnapshotAPI {
	return snapshotAPI{c}
}

func (c *client) Fences() awareness.FenceAPI {
	return fenceAPI{c}
}

func (c *client) hasAPI(api awareness.API) bool {
	for _, a := range c.apis {
		if a == api {
			return true
		}
	}
	return false
}

// checkLocked returns the status for a request issued by c.
func (c *client) checkLocked(required ...awareness.API) wire.Status {
	if c.state != clientConnected {
		return wire.NewStatus(wire.StatusAPINotConnected, "client not connected")
	}
	for _, api := range required {
		if !c.hasAPI(api) {
			return wire.NewStatus(wire.StatusAccessDenied, "api %s not requested", api)
		}
	}
	return wire.OK
}

type fenceAPI struct {
	c *client
}

func (f fenceAPI) UpdateFences(req awareness.FenceUpdateRequest) awareness.PendingResult[awareness.StatusResult] {
	s := f.c.svc
	s.mu.Lock()

	status := f.c.checkLocked(awareness.APIAwareness)
	for _, u := range req.Updates {
		kind := CallAdd
		if u.Op == awareness.FenceRemove {
			kind = CallRemove
		}
		s.recordLocked(kind, u.Name, f.c.id)

		if !status.IsSuccess() {
			continue
		}
		if failure, ok := s.fenceFailure[u.Op]; ok {
			status = failure
			continue
		}
		switch u.Op {
		case awareness.FenceAdd:
			status = s.addFenceLocked(u, f.c.id)
		case awareness.FenceRemove:
			s.removeFenceLocked(u.Name)
		}
	}
	s.mu.Unlock()

	return resolve(s, awareness.NewStatusResult(status))
}

func (f fenceAPI) QueryFences(req awareness.FenceQueryRequest) awareness.PendingResult[awareness.FenceQueryResult] {
	s := f.c.svc
	s.mu.Lock()
	s.recordLocked(CallQuery, "", f.c.id)

	status := f.c.checkLocked(awareness.APIAwareness)
	if status.IsSuccess() {
		status = s.requestFailure
	}
	var result awareness.FenceQueryResult
	if status.IsSuccess() {
		result = s.queryLocked(req)
	}
	result.StatusResult = awareness.NewStatusResult(status)
	s.mu.Unlock()

	return resolve(s, result)
}

type snapshotAPI struct {
	c *client
}

// begin records a snapshot request and returns its status and the world.
func (a snapshotAPI) begin(kind string, required ...awareness.API) (wire.Status, World) {
	s := a.c.svc
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recordLocked(CallSnapshot, kind, a.c.id)
	status := a.c.checkLocked(append([]awareness.API{awareness.APIAwareness}, required...)...)
	if status.IsSuccess() {
		status = s.requestFailure
	}
	return status, s.world.clone()
}

func (a snapshotAPI) Weather() awareness.PendingResult[awareness.WeatherResult] {
	status, w := a.begin("weather")
	return resolve(a.c.svc, awareness.WeatherResult{StatusResult: awareness.NewStatusResult(status), Weather: w.Weather})
}

func (a snapshotAPI) Location() awareness.PendingResult[awareness.LocationResult] {
	status, w := a.begin("location")
	loc := w.Location
	if loc.Time.IsZero() {
		loc.Time = time.Now()
	}
	return resolve(a.c.svc, awareness.LocationResult{StatusResult: awareness.NewStatusResult(status), Location: loc})
}

func (a snapshotAPI) DetectedActivity() awareness.PendingResult[awareness.ActivityResult] {
	status, w := a.begin("activity")
	return resolve(a.c.svc, awareness.ActivityResult{StatusResult: awareness.NewStatusResult(status), Activity: w.Activity})
}

func (a snapshotAPI) HeadphoneState() awareness.PendingResult[awareness.HeadphoneResult] {
	status, w := a.begin("headphones")
	return resolve(a.c.svc, awareness.HeadphoneResult{StatusResult: awareness.NewStatusResult(status), PluggedIn: w.Headphones})
}

func (a snapshotAPI) Places() awareness.PendingResult[awareness.PlacesResult] {
	status, w := a.begin("places", awareness.APIPlaces)
	return resolve(a.c.svc, awareness.PlacesResult{StatusResult: awareness.NewStatusResult(status), Places: w.Places})
}

func (a snapshotAPI) Beacons(types []awareness.BeaconType) awareness.PendingResult[awareness.BeaconResult] {
	status, w := a.begin("beacons", awareness.APIBeacons)
	return resolve(a.c.svc, awareness.BeaconResult{StatusResult: awareness.NewStatusResult(status), Beacons: w.beacons(types)})
}

var (
	_ awareness.Client      = (*client)(nil)
	_ awareness.FenceAPI    = fenceAPI{}
	_ awareness.SnapshotAPI = snapshotAPI{}
)
