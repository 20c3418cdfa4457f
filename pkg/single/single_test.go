package single_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Mauin/ReactiveAwareness/pkg/awareness"
	"github.com/Mauin/ReactiveAwareness/pkg/connection"
	"github.com/Mauin/ReactiveAwareness/pkg/log"
	"github.com/Mauin/ReactiveAwareness/pkg/sim"
	"github.com/Mauin/ReactiveAwareness/pkg/single"
	"github.com/Mauin/ReactiveAwareness/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var apis = []awareness.API{awareness.APIAwareness}

func weather(c awareness.Client) awareness.PendingResult[awareness.WeatherResult] {
	return c.Snapshot().Weather()
}

func temperature(r awareness.WeatherResult) float64 {
	return r.Weather.Temperature
}

func TestExecuteSuccess(t *testing.T) {
	svc := sim.New()

	got, err := single.Execute(context.Background(), svc, apis, weather, single.Map(temperature))
	require.NoError(t, err)

	if got != 22.5 {
		t.Errorf("Execute() = %v, want 22.5", got)
	}
	if n := svc.Count(sim.CallConnect, ""); n != 1 {
		t.Errorf("connect calls = %d, want 1", n)
	}
	if n := svc.Count(sim.CallDisconnect, ""); n != 1 {
		t.Errorf("disconnect calls = %d, want 1", n)
	}
}

func TestExecuteConnectionFailed(t *testing.T) {
	svc := sim.New()
	svc.FailConnect("timeout")
	mem := log.NewMemoryLogger(0)

	_, err := single.Execute(context.Background(), svc, apis, weather, single.Map(temperature),
		single.WithLogger(mem), single.WithOperation("weather"))

	require.Error(t, err)
	assert.ErrorIs(t, err, connection.ErrConnectionFailed)

	var connErr *connection.Error
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "timeout", connErr.Reason)

	assert.Equal(t, 1, svc.Count(sim.CallConnect, ""))
	assert.Equal(t, 0, svc.Count(sim.CallDisconnect, ""))

	// The handle ends in FAILED.
	layer := log.LayerConnection
	states := mem.Events(log.Filter{Layer: &layer})
	require.NotEmpty(t, states)
	last := states[len(states)-1]
	assert.Equal(t, "FAILED", last.StateChange.NewState)
	assert.Equal(t, "timeout", last.StateChange.Reason)
}

func TestExecuteRequestFailed(t *testing.T) {
	svc := sim.New()
	svc.FailRequests(wire.NewStatus(wire.StatusNetworkError, "offline"))
	mem := log.NewMemoryLogger(0)

	_, err := single.Execute(context.Background(), svc, apis, weather, single.Map(temperature), single.WithLogger(mem))

	assert.ErrorIs(t, err, single.ErrRequestFailed)
	assert.NotErrorIs(t, err, connection.ErrConnectionFailed)

	var reqErr *single.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, wire.StatusNetworkError, reqErr.Status.Code)
	assert.Equal(t, "request failed: offline", err.Error())

	assert.Equal(t, 1, svc.Count(sim.CallConnect, ""))
	assert.Equal(t, 1, svc.Count(sim.CallDisconnect, ""))

	errs := mem.Errors()
	require.Len(t, errs, 1)
	require.NotNil(t, errs[0].Error.Status)
	assert.Equal(t, uint8(wire.StatusNetworkError), *errs[0].Error.Status)
}

func TestExecuteNoQualifyingResult(t *testing.T) {
	svc := sim.New()

	unwrap := func(r awareness.WeatherResult) (float64, error) {
		if r.Weather.Temperature < 30 {
			return 0, single.ErrNoQualifyingResult
		}
		return r.Weather.Temperature, nil
	}

	_, err := single.Execute(context.Background(), svc, apis, weather, unwrap)
	assert.ErrorIs(t, err, single.ErrNoQualifyingResult)
	assert.NotErrorIs(t, err, single.ErrRequestFailed)
	assert.Equal(t, 1, svc.Count(sim.CallDisconnect, ""))
}

func TestExecuteCanceled(t *testing.T) {
	svc := sim.New()
	release := svc.Hold()
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	got, err := single.Execute(ctx, svc, apis, weather, single.Map(temperature))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, got)

	assert.Equal(t, 1, svc.Count(sim.CallConnect, ""))
	assert.Equal(t, 1, svc.Count(sim.CallDisconnect, ""))
}

func TestExecuteSuspendedWhilePending(t *testing.T) {
	svc := sim.New()
	release := svc.Hold()
	defer release()

	done := single.Go(context.Background(), svc, apis, weather, single.Map(temperature))

	require.Eventually(t, func() bool {
		return svc.Count(sim.CallSnapshot, "weather") == 1
	}, time.Second, time.Millisecond)
	svc.Suspend("service died")

	_, err := done.Wait(context.Background())
	assert.ErrorIs(t, err, connection.ErrConnectionSuspended)

	// The client is gone: no disconnect is needed.
	assert.Equal(t, 1, svc.Count(sim.CallConnect, ""))
	assert.LessOrEqual(t, svc.Count(sim.CallDisconnect, ""), 1)
}

func TestGo(t *testing.T) {
	svc := sim.New()

	c := single.Go(context.Background(), svc, apis,
		func(c awareness.Client) awareness.PendingResult[awareness.HeadphoneResult] {
			return c.Snapshot().HeadphoneState()
		},
		single.Map(func(r awareness.HeadphoneResult) bool { return r.PluggedIn }))

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("completion not resolved")
	}
	got, err := c.Result()
	assert.NoError(t, err)
	assert.False(t, got)
}

func TestExecuteParallel(t *testing.T) {
	svc := sim.New()
	const n = 20

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := single.Execute(context.Background(), svc, apis, weather, single.Map(temperature)); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Execute() error = %v", err)
	}
	assert.Equal(t, n, svc.Count(sim.CallConnect, ""))
	assert.Equal(t, n, svc.Count(sim.CallDisconnect, ""))
}

func TestRequestErrorUnwrap(t *testing.T) {
	err := error(&single.RequestError{Status: wire.NewStatus(wire.StatusTimeout, "")})
	if !errors.Is(err, single.ErrRequestFailed) {
		t.Error("RequestError does not match ErrRequestFailed")
	}
	if got := err.Error(); got != "request failed: TIMEOUT" {
		t.Errorf("Error() = %q", got)
	}
}
