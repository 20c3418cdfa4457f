// Package snapshot answers one-off questions about the device context:
// weather, location, detected activity, headphones, nearby places and
// beacons. Every call connects, queries and disconnects; nothing is cached.
package snapshot

import (
	"context"
	"fmt"

	"github.com/Mauin/ReactiveAwareness/pkg/awareness"
	"github.com/Mauin/ReactiveAwareness/pkg/log"
	"github.com/Mauin/ReactiveAwareness/pkg/single"
)

// TemperatureUnit selects the unit of temperature values.
type TemperatureUnit uint8

const (
	Celsius TemperatureUnit = iota
	Fahrenheit
)

func (u TemperatureUnit) String() string {
	if u == Fahrenheit {
		return "F"
	}
	return "C"
}

// Convert converts a Celsius value to u.
func (u TemperatureUnit) Convert(celsius float64) float64 {
	if u == Fahrenheit {
		return celsius*9/5 + 32
	}
	return celsius
}

// ParseTemperatureUnit parses "C" or "F" (case-insensitive).
func ParseTemperatureUnit(s string) (TemperatureUnit, error) {
	switch s {
	case "C", "c", "":
		return Celsius, nil
	case "F", "f":
		return Fahrenheit, nil
	}
	return Celsius, fmt.Errorf("unknown temperature unit %q", s)
}

// LatLng is a coordinate pair.
type LatLng struct {
	Latitude  float64
	Longitude float64
}

func (l LatLng) String() string {
	return fmt.Sprintf("%.6f,%.6f", l.Latitude, l.Longitude)
}

// Snapshot issues context queries against the awareness service.
type Snapshot struct {
	factory awareness.ClientFactory
	guard   Guard
	logger  log.Logger
}

// New creates a Snapshot. Queries fail with ErrMissingCredential unless
// creds holds the keys they need.
func New(factory awareness.ClientFactory, creds Credentials, logger log.Logger) *Snapshot {
	return &Snapshot{
		factory: factory,
		guard:   Guard{Credentials: creds},
		logger:  log.OrNoop(logger),
	}
}

func query[T any, R awareness.Result](ctx context.Context, s *Snapshot, operation string, apis []awareness.API,
	request single.RequestFunc[R], unwrap single.UnwrapFunc[R, T]) (T, error) {
	if err := s.guard.Check(apis...); err != nil {
		var zero T
		return zero, err
	}
	return single.Execute(ctx, s.factory, apis, request, unwrap,
		single.WithLogger(s.logger),
		single.WithOperation(operation))
}

var awarenessOnly = []awareness.API{awareness.APIAwareness}

// Weather returns the current weather.
func (s *Snapshot) Weather(ctx context.Context) (awareness.Weather, error) {
	return query(ctx, s, "weather", awarenessOnly,
		func(c awareness.Client) awareness.PendingResult[awareness.WeatherResult] {
			return c.Snapshot().Weather()
		},
		single.Map(func(r awareness.WeatherResult) awareness.Weather { return r.Weather }))
}

// Temperature returns the current temperature in unit.
func (s *Snapshot) Temperature(ctx context.Context, unit TemperatureUnit) (float64, error) {
	w, err := s.Weather(ctx)
	if err != nil {
		return 0, err
	}
	return unit.Convert(w.Temperature), nil
}

// FeelsLike returns the perceived temperature in unit.
func (s *Snapshot) FeelsLike(ctx context.Context, unit TemperatureUnit) (float64, error) {
	w, err := s.Weather(ctx)
	if err != nil {
		return 0, err
	}
	return unit.Convert(w.FeelsLike), nil
}

// DewPoint returns the dew point in unit.
func (s *Snapshot) DewPoint(ctx context.Context, unit TemperatureUnit) (float64, error) {
	w, err := s.Weather(ctx)
	if err != nil {
		return 0, err
	}
	return unit.Convert(w.DewPoint), nil
}

// Humidity returns the relative humidity in percent.
func (s *Snapshot) Humidity(ctx context.Context) (int, error) {
	w, err := s.Weather(ctx)
	return w.Humidity, err
}

// WeatherConditions returns the current weather conditions.
func (s *Snapshot) WeatherConditions(ctx context.Context) ([]awareness.WeatherCondition, error) {
	w, err := s.Weather(ctx)
	return w.Conditions, err
}

// Location returns the current position fix.
func (s *Snapshot) Location(ctx context.Context) (awareness.Location, error) {
	return query(ctx, s, "location", awarenessOnly,
		func(c awareness.Client) awareness.PendingResult[awareness.LocationResult] {
			return c.Snapshot().Location()
		},
		single.Map(func(r awareness.LocationResult) awareness.Location { return r.Location }))
}

// LatLng returns the coordinates of the current position.
func (s *Snapshot) LatLng(ctx context.Context) (LatLng, error) {
	l, err := s.Location(ctx)
	return LatLng{Latitude: l.Latitude, Longitude: l.Longitude}, err
}

// Speed returns the current speed in meters per second.
func (s *Snapshot) Speed(ctx context.Context) (float64, error) {
	l, err := s.Location(ctx)
	return l.Speed, err
}

// Activity returns the detected activities.
func (s *Snapshot) Activity(ctx context.Context) (awareness.ActivityRecognition, error) {
	return query(ctx, s, "activity", awarenessOnly,
		func(c awareness.Client) awareness.PendingResult[awareness.ActivityResult] {
			return c.Snapshot().DetectedActivity()
		},
		single.Map(func(r awareness.ActivityResult) awareness.ActivityRecognition { return r.Activity }))
}

// MostProbableActivity returns the activity with the highest confidence.
// It fails with single.ErrNoQualifyingResult when nothing was detected.
func (s *Snapshot) MostProbableActivity(ctx context.Context) (awareness.DetectedActivity, error) {
	return s.MostProbableActivityAbove(ctx, 0)
}

// MostProbableActivityAbove is MostProbableActivity, failing with
// single.ErrNoQualifyingResult when the best confidence is below
// minConfidence.
func (s *Snapshot) MostProbableActivityAbove(ctx context.Context, minConfidence int) (awareness.DetectedActivity, error) {
	return query(ctx, s, "activity", awarenessOnly,
		func(c awareness.Client) awareness.PendingResult[awareness.ActivityResult] {
			return c.Snapshot().DetectedActivity()
		},
		func(r awareness.ActivityResult) (awareness.DetectedActivity, error) {
			best, ok := r.Activity.MostProbable()
			if !ok {
				return best, fmt.Errorf("%w: no activity detected", single.ErrNoQualifyingResult)
			}
			if best.Confidence < minConfidence {
				return awareness.DetectedActivity{}, fmt.Errorf("%w: %s at %d%% below %d%%",
					single.ErrNoQualifyingResult, best.Type, best.Confidence, minConfidence)
			}
			return best, nil
		})
}

// ProbableActivities returns every detected activity.
func (s *Snapshot) ProbableActivities(ctx context.Context) ([]awareness.DetectedActivity, error) {
	return s.ProbableActivitiesAbove(ctx, 0)
}

// ProbableActivitiesAbove returns the detected activities with at least
// minConfidence. The result may be empty.
func (s *Snapshot) ProbableActivitiesAbove(ctx context.Context, minConfidence int) ([]awareness.DetectedActivity, error) {
	a, err := s.Activity(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]awareness.DetectedActivity, 0, len(a.Probable))
	for _, d := range a.Probable {
		if d.Confidence >= minConfidence {
			out = append(out, d)
		}
	}
	return out, nil
}

// HeadphonesPluggedIn reports whether headphones are plugged in.
func (s *Snapshot) HeadphonesPluggedIn(ctx context.Context) (bool, error) {
	return query(ctx, s, "headphones", awarenessOnly,
		func(c awareness.Client) awareness.PendingResult[awareness.HeadphoneResult] {
			return c.Snapshot().HeadphoneState()
		},
		single.Map(func(r awareness.HeadphoneResult) bool { return r.PluggedIn }))
}

// NearbyPlaces returns the places the device is likely at.
func (s *Snapshot) NearbyPlaces(ctx context.Context) ([]awareness.PlaceLikelihood, error) {
	return query(ctx, s, "places", []awareness.API{awareness.APIAwareness, awareness.APIPlaces},
		func(c awareness.Client) awareness.PendingResult[awareness.PlacesResult] {
			return c.Snapshot().Places()
		},
		single.Map(func(r awareness.PlacesResult) []awareness.PlaceLikelihood { return r.Places }))
}

// Beacons returns the nearby beacons matching any of types. With no types
// every beacon is returned.
func (s *Snapshot) Beacons(ctx context.Context, types ...awareness.BeaconType) ([]awareness.Beacon, error) {
	return query(ctx, s, "beacons", []awareness.API{awareness.APIAwareness, awareness.APIBeacons},
		func(c awareness.Client) awareness.PendingResult[awareness.BeaconResult] {
			return c.Snapshot().Beacons(types)
		},
		single.Map(func(r awareness.BeaconResult) []awareness.Beacon { return r.Beacons }))
}
