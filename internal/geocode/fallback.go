package geocode

import (
	"context"
	"log/slog"

	"github.com/starmatch/starmatch/internal/astro"
	"github.com/starmatch/starmatch/internal/metrics"
)

// Fallback wraps a Geocoder and substitutes a fixed coordinate on any failure.
// Its Geocode never returns an error.
type Fallback struct {
	next     Geocoder
	def      astro.Coordinate
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewFallback wraps next. A nil next always yields def.
func NewFallback(next Geocoder, def astro.Coordinate, logger *slog.Logger, recorder metrics.Recorder) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Fallback{next: next, def: def, logger: logger, recorder: recorder}
}

// Geocode resolves place or returns the default coordinate.
func (f *Fallback) Geocode(ctx context.Context, place string) (astro.Coordinate, error) {
	if f.next == nil {
		return f.def, nil
	}

	coord, err := f.next.Geocode(ctx, place)
	if err != nil {
		f.recorder.IncGeocodeFallback()
		f.logger.WarnContext(ctx, "geocode_fallback",
			slog.String("place", place),
			slog.String("error", err.Error()),
			slog.Float64("lat", f.def.Lat),
			slog.Float64("lon", f.def.Lon),
		)
		return f.def, nil
	}
	return coord, nil
}
