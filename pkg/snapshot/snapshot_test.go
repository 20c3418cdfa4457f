package snapshot_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Mauin/ReactiveAwareness/pkg/awareness"
	"github.com/Mauin/ReactiveAwareness/pkg/sim"
	"github.com/Mauin/ReactiveAwareness/pkg/single"
	"github.com/Mauin/ReactiveAwareness/pkg/snapshot"
	"github.com/Mauin/ReactiveAwareness/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = snapshot.Credentials{Awareness: "a-key", Places: "p-key", Beacons: "b-key"}

func newSnapshot(svc *sim.Service) *snapshot.Snapshot {
	return snapshot.New(svc, allKeys, nil)
}

func TestWeather(t *testing.T) {
	svc := sim.New()
	s := newSnapshot(svc)
	ctx := context.Background()

	tests := []struct {
		name string
		get  func() (float64, error)
		want float64
	}{
		{"temperature C", func() (float64, error) { return s.Temperature(ctx, snapshot.Celsius) }, 22.5},
		{"temperature F", func() (float64, error) { return s.Temperature(ctx, snapshot.Fahrenheit) }, 72.5},
		{"feels like C", func() (float64, error) { return s.FeelsLike(ctx, snapshot.Celsius) }, 21.0},
		{"dew point F", func() (float64, error) { return s.DewPoint(ctx, snapshot.Fahrenheit) }, 53.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.get()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	humidity, err := s.Humidity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 55, humidity)

	conditions, err := s.WeatherConditions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []awareness.WeatherCondition{awareness.WeatherClear}, conditions)

	// Every call is a fresh connection.
	assert.Equal(t, 6, svc.Count(sim.CallConnect, ""))
	assert.Equal(t, 6, svc.Count(sim.CallSnapshot, "weather"))
	assert.Equal(t, 6, svc.Count(sim.CallDisconnect, ""))
}

func TestNotCached(t *testing.T) {
	svc := sim.New()
	s := newSnapshot(svc)
	ctx := context.Background()

	first, err := s.HeadphonesPluggedIn(ctx)
	require.NoError(t, err)
	assert.False(t, first)

	svc.SetHeadphones(true)
	second, err := s.HeadphonesPluggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, second)
}

func TestLocation(t *testing.T) {
	svc := sim.New()
	svc.Update(func(w *sim.World) { w.Location.Speed = 1.5 })
	s := newSnapshot(svc)
	ctx := context.Background()

	ll, err := s.LatLng(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot.LatLng{Latitude: 52.52, Longitude: 13.405}, ll)
	assert.Equal(t, "52.520000,13.405000", ll.String())

	speed, err := s.Speed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.5, speed)
}

func TestActivity(t *testing.T) {
	svc := sim.New()
	s := newSnapshot(svc)
	ctx := context.Background()

	t.Run("MostProbable", func(t *testing.T) {
		got, err := s.MostProbableActivity(ctx)
		require.NoError(t, err)
		assert.Equal(t, awareness.DetectedActivity{Type: wire.ActivityStill, Confidence: 80}, got)
	})

	t.Run("MostProbableAboveThreshold", func(t *testing.T) {
		got, err := s.MostProbableActivityAbove(ctx, 80)
		require.NoError(t, err)
		assert.Equal(t, wire.ActivityStill, got.Type)
	})

	t.Run("MostProbableBelowThreshold", func(t *testing.T) {
		_, err := s.MostProbableActivityAbove(ctx, 90)
		if !errors.Is(err, single.ErrNoQualifyingResult) {
			t.Errorf("error = %v, want %v", err, single.ErrNoQualifyingResult)
		}
	})

	t.Run("ProbableAbove", func(t *testing.T) {
		got, err := s.ProbableActivitiesAbove(ctx, 15)
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = s.ProbableActivitiesAbove(ctx, 16)
		require.NoError(t, err)
		assert.Equal(t, []awareness.DetectedActivity{{Type: wire.ActivityStill, Confidence: 80}}, got)

		got, err = s.ProbableActivitiesAbove(ctx, 100)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("NothingDetected", func(t *testing.T) {
		svc.Update(func(w *sim.World) { w.Activity = awareness.ActivityRecognition{} })
		_, err := s.MostProbableActivity(ctx)
		assert.ErrorIs(t, err, single.ErrNoQualifyingResult)

		all, err := s.ProbableActivities(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestPlacesAndBeacons(t *testing.T) {
	svc := sim.New()
	svc.Update(func(w *sim.World) {
		w.Places = []awareness.PlaceLikelihood{{ID: "p1", Name: "Cafe", Likelihood: 0.7}}
		w.Beacons = []awareness.Beacon{
			{Namespace: "shop", Type: "door", Content: []byte("front")},
			{Namespace: "shop", Type: "till", Content: []byte("1")},
			{Namespace: "museum", Type: "door"},
		}
	})
	s := newSnapshot(svc)
	ctx := context.Background()

	places, err := s.NearbyPlaces(ctx)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Cafe", places[0].Name)

	doors, err := s.Beacons(ctx, awareness.BeaconType{Namespace: "shop", Type: "door"})
	require.NoError(t, err)
	require.Len(t, doors, 1)
	assert.Equal(t, []byte("front"), doors[0].Content)

	all, err := s.Beacons(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMissingCredential(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		creds snapshot.Credentials
		query func(s *snapshot.Snapshot) error
	}{
		{
			name:  "awareness key",
			creds: snapshot.Credentials{Places: "p", Beacons: "b"},
			query: func(s *snapshot.Snapshot) error { _, err := s.Weather(ctx); return err },
		},
		{
			name:  "places key",
			creds: snapshot.Credentials{Awareness: "a"},
			query: func(s *snapshot.Snapshot) error { _, err := s.NearbyPlaces(ctx); return err },
		},
		{
			name:  "beacons key",
			creds: snapshot.Credentials{Awareness: "a", Places: "p"},
			query: func(s *snapshot.Snapshot) error { _, err := s.Beacons(ctx); return err },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := sim.New()
			err := tt.query(snapshot.New(svc, tt.creds, nil))
			if !errors.Is(err, snapshot.ErrMissingCredential) {
				t.Fatalf("error = %v, want %v", err, snapshot.ErrMissingCredential)
			}
			if n := svc.Count(sim.CallConnect, ""); n != 0 {
				t.Errorf("connect calls = %d, want 0", n)
			}
		})
	}
}

func TestRequestFailure(t *testing.T) {
	svc := sim.New()
	svc.FailRequests(wire.NewStatus(wire.StatusNetworkError, "offline"))
	s := newSnapshot(svc)

	_, err := s.Temperature(context.Background(), snapshot.Fahrenheit)
	var reqErr *single.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, wire.StatusNetworkError, reqErr.Status.Code)
	assert.Equal(t, 1, svc.Count(sim.CallDisconnect, ""))
}

func TestParseTemperatureUnit(t *testing.T) {
	tests := []struct {
		in      string
		want    snapshot.TemperatureUnit
		wantErr bool
	}{
		{"C", snapshot.Celsius, false},
		{"f", snapshot.Fahrenheit, false},
		{"", snapshot.Celsius, false},
		{"K", snapshot.Celsius, true},
	}
	for _, tt := range tests {
		got, err := snapshot.ParseTemperatureUnit(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTemperatureUnit(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseTemperatureUnit(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
