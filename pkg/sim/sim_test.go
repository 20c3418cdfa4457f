package sim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Mauin/ReactiveAwareness/pkg/awareness"
	"github.com/Mauin/ReactiveAwareness/pkg/transport"
	"github.com/Mauin/ReactiveAwareness/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingCallbacks captures connection callbacks.
type recordingCallbacks struct {
	connected chan struct{}
	failed    chan string
	suspended chan string
}

func newRecordingCallbacks() *recordingCallbacks {
	return &recordingCallbacks{
		connected: make(chan struct{}, 1),
		failed:    make(chan string, 1),
		suspended: make(chan string, 1),
	}
}

func (r *recordingCallbacks) OnConnected()                     { r.connected <- struct{}{} }
func (r *recordingCallbacks) OnConnectionFailed(reason string) { r.failed <- reason }
func (r *recordingCallbacks) OnConnectionSuspended(reason string) {
	r.suspended <- reason
}

func connect(t *testing.T, s *Service, apis ...awareness.API) awareness.Client {
	t.Helper()
	if len(apis) == 0 {
		apis = []awareness.API{awareness.APIAwareness}
	}
	cb := newRecordingCallbacks()
	c := s.NewClient(apis, cb)
	c.Connect()
	select {
	case <-cb.connected:
	case reason := <-cb.failed:
		t.Fatalf("connect failed: %s", reason)
	case <-time.After(time.Second):
		t.Fatal("connect timeout")
	}
	return c
}

func await[R awareness.Result](t *testing.T, p awareness.PendingResult[R]) R {
	t.Helper()
	ch := make(chan R, 1)
	p.SetResultCallback(func(r R) { ch <- r })
	select {
	case r := <-ch:
		return r
	case <-time.After(time.Second):
		t.Fatal("result timeout")
		panic("unreachable")
	}
}

func TestWorldEvaluate(t *testing.T) {
	w := DefaultWorld()
	w.Headphones = true
	w.Flags["timer"] = true

	tests := []struct {
		cond string
		want bool
	}{
		{"headphones:plugged", true},
		{"headphones:unplugged", false},
		{"activity:still", true},
		{"activity:walking", false},
		{"flag:timer", true},
		{"flag:other", false},
		{"!flag:other", true},
		{"headphones:plugged & activity:walking", false},
		{"headphones:plugged & activity:walking | flag:timer", true},
	}

	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			c, err := wire.ParseCondition(tt.cond)
			require.NoError(t, err)
			if got := w.Evaluate(c); got != tt.want {
				t.Errorf("Evaluate(%s) = %v, want %v", tt.cond, got, tt.want)
			}
		})
	}
}

func TestConnectFailure(t *testing.T) {
	s := New()
	s.FailConnect("timeout")

	cb := newRecordingCallbacks()
	c := s.NewClient([]awareness.API{awareness.APIAwareness}, cb)
	c.Connect()

	select {
	case reason := <-cb.failed:
		assert.Equal(t, "timeout", reason)
	case <-time.After(time.Second):
		t.Fatal("no failure callback")
	}
	assert.False(t, c.IsConnected())
	assert.False(t, c.IsConnecting())
	assert.Equal(t, 1, s.Count(CallConnect, ""))
}

func TestLocalFenceDeliveriesInOrder(t *testing.T) {
	s := New(WithoutInitialState())
	c := connect(t, s)

	var mu sync.Mutex
	var got []bool
	target := awareness.LocalTarget{Deliver: func(fs awareness.FenceState) {
		mu.Lock()
		got = append(got, fs.State)
		mu.Unlock()
	}}

	r := await(t, c.Fences().UpdateFences(awareness.FenceUpdateRequest{}.AddFence("headphones", wire.Headphones(true), target)))
	require.True(t, r.Status().IsSuccess())

	for _, st := range []bool{true, false, true, true} {
		require.NoError(t, s.Trigger("headphones", st))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 4
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false, true, true}, got)
}

func TestWorldChangesPushOnlyTransitions(t *testing.T) {
	s := New()
	c := connect(t, s)

	states := make(chan bool, 10)
	target := awareness.LocalTarget{Deliver: func(fs awareness.FenceState) { states <- fs.State }}
	await(t, c.Fences().UpdateFences(awareness.FenceUpdateRequest{}.AddFence("hp", wire.Headphones(true), target)))

	s.SetHeadphones(true)
	s.SetHeadphones(true)
	s.SetHeadphones(false)

	var got []bool
	for i := 0; i < 3; i++ {
		select {
		case st := <-states:
			got = append(got, st)
		case <-time.After(time.Second):
			t.Fatalf("received %v, want 3 states", got)
		}
	}
	// Initial state, then the two transitions.
	assert.Equal(t, []bool{false, true, false}, got)
}

func TestSameNameReplaces(t *testing.T) {
	s := New()
	c := connect(t, s)
	target := awareness.PersistentTarget{Address: "127.0.0.1:1"}

	await(t, c.Fences().UpdateFences(awareness.FenceUpdateRequest{}.AddFence("A", wire.Headphones(true), target)))
	await(t, c.Fences().UpdateFences(awareness.FenceUpdateRequest{}.AddFence("A", wire.Flag("x"), target)))

	fences := s.Fences()
	require.Len(t, fences, 1)
	assert.Equal(t, wire.ConditionFlag, fences["A"].Kind)
}

func TestRejectedReplacementKeepsFence(t *testing.T) {
	s := New(WithMaxFences(1))
	c := connect(t, s)
	target := awareness.PersistentTarget{Address: "127.0.0.1:1"}

	r := await(t, c.Fences().UpdateFences(awareness.FenceUpdateRequest{}.AddFence("A", wire.Headphones(true), target)))
	require.True(t, r.Status().IsSuccess())

	tests := []struct {
		name   string
		target awareness.DeliveryTarget
	}{
		{"nil target", nil},
		{"local without callback", awareness.LocalTarget{}},
		{"persistent without address", awareness.PersistentTarget{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := await(t, c.Fences().UpdateFences(awareness.FenceUpdateRequest{}.AddFence("A", wire.Flag("x"), tt.target)))
			if got := r.Status().Code; got != wire.StatusInvalidRequest {
				t.Errorf("status = %v, want %v", got, wire.StatusInvalidRequest)
			}
			fences := s.Fences()
			require.Len(t, fences, 1)
			assert.Equal(t, wire.ConditionHeadphones, fences["A"].Kind)
		})
	}

	t.Run("replacement at the fence limit", func(t *testing.T) {
		r := await(t, c.Fences().UpdateFences(awareness.FenceUpdateRequest{}.AddFence("A", wire.Flag("x"), target)))
		require.True(t, r.Status().IsSuccess(), "status = %v", r.Status())
		assert.Equal(t, wire.ConditionFlag, s.Fences()["A"].Kind)
	})
}

func TestDisconnectDropsLocalFencesOnly(t *testing.T) {
	s := New(WithoutInitialState())
	c := connect(t, s)

	req := awareness.FenceUpdateRequest{}.
		AddFence("local", wire.Flag("a"), awareness.LocalTarget{Deliver: func(awareness.FenceState) {}}).
		AddFence("persistent", wire.Flag("b"), awareness.PersistentTarget{Address: "127.0.0.1:1"})
	await(t, c.Fences().UpdateFences(req))

	c.Disconnect()
	assert.Equal(t, []string{"persistent"}, s.FenceNames())

	calls := s.Calls()
	var kinds []string
	for _, call := range calls {
		kinds = append(kinds, call.String())
	}
	assert.Equal(t, []string{"connect", "add:local", "add:persistent", "disconnect"}, kinds)
}

func TestQueryFencesSharedAcrossClients(t *testing.T) {
	s := New()
	s.SetFlag("timer", true)

	a := connect(t, s)
	b := connect(t, s)

	await(t, a.Fences().UpdateFences(awareness.FenceUpdateRequest{}.AddFence("timer", wire.Flag("timer"), awareness.PersistentTarget{Address: "127.0.0.1:1"})))

	r := await(t, b.Fences().QueryFences(awareness.FenceQueryRequest{}))
	require.True(t, r.Status().IsSuccess())
	assert.Equal(t, map[string]bool{"timer": true}, r.States())
}

func TestQueryFencesPersistentOnly(t *testing.T) {
	s := New(WithoutInitialState())
	c := connect(t, s)

	req := awareness.FenceUpdateRequest{}.
		AddFence("local", wire.Flag("a"), awareness.LocalTarget{Deliver: func(awareness.FenceState) {}}).
		AddFence("timer", wire.Flag("b"), awareness.PersistentTarget{Address: "127.0.0.1:1"})
	await(t, c.Fences().UpdateFences(req))

	all := await(t, c.Fences().QueryFences(awareness.FenceQueryRequest{}))
	assert.Equal(t, map[string]bool{"local": false, "timer": false}, all.States())
	assert.True(t, all.IsPersistent("timer"))
	assert.False(t, all.IsPersistent("local"))
	assert.Equal(t, map[string]bool{"timer": false}, all.PersistentStates())

	only := await(t, c.Fences().QueryFences(awareness.FenceQueryRequest{PersistentOnly: true}))
	require.True(t, only.Status().IsSuccess())
	assert.Equal(t, map[string]bool{"timer": false}, only.States())
}

func TestRequestFailures(t *testing.T) {
	s := New()
	c := connect(t, s, awareness.APIAwareness)

	t.Run("MissingAPI", func(t *testing.T) {
		r := await(t, c.Snapshot().Places())
		assert.Equal(t, wire.StatusAccessDenied, r.Status().Code)
	})

	t.Run("Injected", func(t *testing.T) {
		s.FailRequests(wire.NewStatus(wire.StatusNetworkError, "offline"))
		defer s.FailRequests(wire.OK)

		r := await(t, c.Snapshot().Weather())
		assert.Equal(t, wire.StatusNetworkError, r.Status().Code)
	})

	t.Run("FenceOp", func(t *testing.T) {
		s.FailFenceOp(awareness.FenceRemove, wire.NewStatus(wire.StatusError, "nope"))
		defer s.FailFenceOp(awareness.FenceRemove, wire.OK)

		r := await(t, c.Fences().UpdateFences(awareness.FenceUpdateRequest{}.RemoveFence("x")))
		assert.Equal(t, wire.StatusError, r.Status().Code)
	})

	t.Run("NotConnected", func(t *testing.T) {
		c.Disconnect()
		r := await(t, c.Snapshot().HeadphoneState())
		assert.Equal(t, wire.StatusAPINotConnected, r.Status().Code)
	})
}

func TestSuspend(t *testing.T) {
	s := New()
	cb := newRecordingCallbacks()
	c := s.NewClient([]awareness.API{awareness.APIAwareness}, cb)
	c.Connect()
	<-cb.connected

	s.Suspend("service restarted")
	select {
	case reason := <-cb.suspended:
		assert.Equal(t, "service restarted", reason)
	case <-time.After(time.Second):
		t.Fatal("no suspension callback")
	}
	assert.False(t, c.IsConnected())
}

func TestPersistentDeliveryOverTransport(t *testing.T) {
	envs := make(chan *wire.Envelope, 4)
	srv, err := transport.NewServer(transport.ServerConfig{
		Address: "127.0.0.1:0",
		Handler: transport.FrameHandlerFunc(func(_ transport.Peer, msg []byte) {
			env, err := wire.DecodeEnvelope(msg)
			if err == nil {
				envs <- env
			}
		}),
	})
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	defer srv.Stop()

	s := New()
	c := connect(t, s)
	target := awareness.PersistentTarget{Address: srv.Addr().String(), Payload: []byte("alarm")}
	await(t, c.Fences().UpdateFences(awareness.FenceUpdateRequest{}.AddFence("timer", wire.Flag("timer"), target)))

	s.SetFlag("timer", true)

	var got []bool
	for i := 0; i < 2; i++ {
		select {
		case env := <-envs:
			assert.Equal(t, "timer", env.Name)
			assert.Equal(t, []byte("alarm"), env.Payload)
			got = append(got, env.State)
		case <-time.After(2 * time.Second):
			t.Fatalf("received %v, want 2 envelopes", got)
		}
	}
	// One connection per delivery: arrival order is not guaranteed.
	assert.ElementsMatch(t, []bool{false, true}, got)
}

func TestHold(t *testing.T) {
	s := New()
	c := connect(t, s)
	release := s.Hold()

	ch := make(chan awareness.HeadphoneResult, 1)
	c.Snapshot().HeadphoneState().SetResultCallback(func(r awareness.HeadphoneResult) { ch <- r })

	select {
	case <-ch:
		t.Fatal("result delivered while held")
	case <-time.After(30 * time.Millisecond):
	}

	release()
	select {
	case r := <-ch:
		assert.True(t, r.Status().IsSuccess())
	case <-time.After(time.Second):
		t.Fatal("result not delivered after release")
	}
}

func TestBeaconTypeFilter(t *testing.T) {
	w := World{Beacons: []awareness.Beacon{
		{Namespace: "shop", Type: "offer"},
		{Namespace: "shop", Type: "info"},
		{Namespace: "museum", Type: "exhibit"},
	}}

	assert.Len(t, w.beacons(nil), 3)
	assert.Len(t, w.beacons([]awareness.BeaconType{{Namespace: "shop"}}), 2)
	assert.Len(t, w.beacons([]awareness.BeaconType{{Namespace: "shop", Type: "info"}, {Namespace: "museum", Type: "exhibit"}}), 2)
}
