package snapshot

import (
	"errors"
	"fmt"

	"github.com/Mauin/ReactiveAwareness/pkg/awareness"
)

// ErrMissingCredential is returned when a query needs an API key that is
// not configured. No connection is made in that case.
var ErrMissingCredential = errors.New("missing credential")

// Credentials holds the API keys per capability.
type Credentials struct {
	Awareness string
	Places    string
	Beacons   string
}

// Key returns the key configured for api.
func (c Credentials) Key(api awareness.API) string {
	switch api {
	case awareness.APIAwareness:
		return c.Awareness
	case awareness.APIPlaces:
		return c.Places
	case awareness.APIBeacons:
		return c.Beacons
	}
	return ""
}

// Guard rejects queries whose API keys are missing.
type Guard struct {
	Credentials Credentials
}

// Check returns ErrMissingCredential naming the first API without a key.
func (g Guard) Check(apis ...awareness.API) error {
	for _, api := range apis {
		if g.Credentials.Key(api) == "" {
			return fmt.Errorf("%w: %s API key not configured", ErrMissingCredential, api)
		}
	}
	return nil
}
