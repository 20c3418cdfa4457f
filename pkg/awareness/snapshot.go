package awareness

import (
	"time"

	"github.com/Mauin/ReactiveAwareness/pkg/wire"
)

// WeatherCondition is a coarse weather classification.
type WeatherCondition uint8

const (
	WeatherUnknown WeatherCondition = iota
	WeatherClear
	WeatherCloudy
	WeatherFoggy
	WeatherHazy
	WeatherIcy
	WeatherRainy
	WeatherSnowy
	WeatherStormy
	WeatherWindy
)

var weatherConditionNames = map[WeatherCondition]string{
	WeatherUnknown: "unknown",
	WeatherClear:   "clear",
	WeatherCloudy:  "cloudy",
	WeatherFoggy:   "foggy",
	WeatherHazy:    "hazy",
	WeatherIcy:     "icy",
	WeatherRainy:   "rainy",
	WeatherSnowy:   "snowy",
	WeatherStormy:  "stormy",
	WeatherWindy:   "windy",
}

// String returns the condition name.
func (c WeatherCondition) String() string {
	if name, ok := weatherConditionNames[c]; ok {
		return name
	}
	return "unknown"
}

// Weather is the weather at the device location. Temperatures are in
// degrees Celsius.
type Weather struct {
	Temperature float64
	FeelsLike   float64
	DewPoint    float64
	Humidity    int
	Conditions  []WeatherCondition
}

// Location is a device position fix.
type Location struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	// Speed in meters per second.
	Speed float64
	Time  time.Time
}

// DetectedActivity is one activity classification with its confidence in
// percent (0-100).
type DetectedActivity struct {
	Type       wire.ActivityType
	Confidence int
}

// ActivityRecognition is the outcome of activity detection. Probable is
// ordered by descending confidence.
type ActivityRecognition struct {
	Probable []DetectedActivity
	Time     time.Time
}

// MostProbable returns the activity with the highest confidence.
// ok is false when nothing was detected.
func (a ActivityRecognition) MostProbable() (DetectedActivity, bool) {
	if len(a.Probable) == 0 {
		return DetectedActivity{}, false
	}
	best := a.Probable[0]
	for _, d := range a.Probable[1:] {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	return best, true
}

// Confidence returns the confidence reported for the activity type, or 0.
func (a ActivityRecognition) Confidence(t wire.ActivityType) int {
	for _, d := range a.Probable {
		if d.Type == t {
			return d.Confidence
		}
	}
	return 0
}

// PlaceLikelihood is a nearby place with the likelihood (0-1) that the
// device is there.
type PlaceLikelihood struct {
	ID         string
	Name       string
	Likelihood float64
}

// BeaconType selects beacons by attachment namespace and type.
type BeaconType struct {
	Namespace string
	Type      string
}

// Beacon is a nearby beacon attachment.
type Beacon struct {
	Namespace string
	Type      string
	Content   []byte
}

// WeatherResult is the result of a weather query.
type WeatherResult struct {
	StatusResult
	Weather Weather
}

// LocationResult is the result of a location query.
type LocationResult struct {
	StatusResult
	Location Location
}

// ActivityResult is the result of an activity query.
type ActivityResult struct {
	StatusResult
	Activity ActivityRecognition
}

// HeadphoneResult is the result of a headphone state query.
type HeadphoneResult struct {
	StatusResult
	PluggedIn bool
}

// PlacesResult is the result of a nearby places query.
type PlacesResult struct {
	StatusResult
	Places []PlaceLikelihood
}

// BeaconResult is the result of a beacon query.
type BeaconResult struct {
	StatusResult
	Beacons []Beacon
}

// SnapshotAPI queries the current context of the device. Every call is a
// fresh request; results are never cached.
type SnapshotAPI interface {
	Weather() PendingResult[WeatherResult]
	Location() PendingResult[LocationResult]
	DetectedActivity() PendingResult[ActivityResult]
	HeadphoneState() PendingResult[HeadphoneResult]
	Places() PendingResult[PlacesResult]
	Beacons(types []BeaconType) PendingResult[BeaconResult]
}
