package sim

import (
	"github.com/Mauin/ReactiveAwareness/pkg/awareness"
	"github.com/Mauin/ReactiveAwareness/pkg/wire"
)

// World is the simulated device context.
type World struct {
	Headphones bool
	Activity   awareness.ActivityRecognition
	Weather    awareness.Weather
	Location   awareness.Location
	Places     []awareness.PlaceLikelihood
	Beacons    []awareness.Beacon
	Flags      map[string]bool
}

// DefaultWorld returns a plausible starting context.
func DefaultWorld() World {
	return World{
		Activity: awareness.ActivityRecognition{
			Probable: []awareness.DetectedActivity{
				{Type: wire.ActivityStill, Confidence: 80},
				{Type: wire.ActivityTilting, Confidence: 15},
			},
		},
		Weather: awareness.Weather{
			Temperature: 22.5,
			FeelsLike:   21.0,
			DewPoint:    12.0,
			Humidity:    55,
			Conditions:  []awareness.WeatherCondition{awareness.WeatherClear},
		},
		Location: awareness.Location{
			Latitude:  52.52,
			Longitude: 13.405,
			Accuracy:  10,
		},
		Flags: map[string]bool{},
	}
}

func (w World) clone() World {
	c := w
	c.Activity.Probable = append([]awareness.DetectedActivity(nil), w.Activity.Probable...)
	c.Weather.Conditions = append([]awareness.WeatherCondition(nil), w.Weather.Conditions...)
	c.Places = append([]awareness.PlaceLikelihood(nil), w.Places...)
	c.Beacons = append([]awareness.Beacon(nil), w.Beacons...)
	c.Flags = make(map[string]bool, len(w.Flags))
	for k, v := range w.Flags {
		c.Flags[k] = v
	}
	return c
}

// Evaluate reports whether condition holds in w.
func (w World) Evaluate(c wire.Condition) bool {
	switch c.Kind {
	case wire.ConditionHeadphones:
		return w.Headphones == (c.Value == 1)
	case wire.ConditionActivity:
		best, ok := w.Activity.MostProbable()
		return ok && int64(best.Type) == c.Value
	case wire.ConditionFlag:
		return w.Flags[c.Key]
	case wire.ConditionAnd:
		for _, child := range c.Children {
			if !w.Evaluate(child) {
				return false
			}
		}
		return len(c.Children) > 0
	case wire.ConditionOr:
		for _, child := range c.Children {
			if w.Evaluate(child) {
				return true
			}
		}
		return false
	case wire.ConditionNot:
		return len(c.Children) == 1 && !w.Evaluate(c.Children[0])
	default:
		return false
	}
}

// beacons returns the beacons matching any of types; all when types is empty.
func (w World) beacons(types []awareness.BeaconType) []awareness.Beacon {
	if len(types) == 0 {
		return append([]awareness.Beacon(nil), w.Beacons...)
	}
	var out []awareness.Beacon
	for _, b := range w.Beacons {
		for _, t := range types {
			if b.Namespace == t.Namespace && (t.Type == "" || b.Type == t.Type) {
				out = append(out, b)
				break
			}
		}
	}
	return out
}
