// Package geocode resolves free-text place names to coordinates.
package geocode

import (
	"context"
	"errors"

	"github.com/starmatch/starmatch/internal/astro"
)

var (
	// ErrNoResults is returned when the provider knows no such place.
	ErrNoResults = errors.New("no geocoding results")
	// ErrEmptyPlace is returned for a blank place name.
	ErrEmptyPlace = errors.New("place is empty")
)

// DefaultCoordinate is used whenever a place cannot be resolved.
var DefaultCoordinate = astro.Coordinate{Lat: 26.3184, Lon: -80.0998}

// Geocoder resolves a place name to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (astro.Coordinate, error)
}

// Func adapts a function to the Geocoder interface.
type Func func(ctx context.Context, place string) (astro.Coordinate, error)

// Geocode calls f.
func (f Func) Geocode(ctx context.Context, place string) (astro.Coordinate, error) {
	return f(ctx, place)
}
