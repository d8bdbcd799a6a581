package geocode

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/starmatch/starmatch/internal/astro"
	"github.com/starmatch/starmatch/internal/cache"
	"github.com/starmatch/starmatch/internal/metrics"
)

// CoordinateCache is the subset of the Redis cache used for lookups.
type CoordinateCache interface {
	GetCoordinate(ctx context.Context, place string) (astro.Coordinate, error)
	SetCoordinate(ctx context.Context, place string, coord astro.Coordinate, ttl time.Duration) error
}

// Cached serves repeated places from a CoordinateCache.
// Cache failures are logged and fall through to the wrapped Geocoder.
type Cached struct {
	next     Geocoder
	cache    CoordinateCache
	ttl      time.Duration
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewCached wraps next with c.
func NewCached(next Geocoder, c CoordinateCache, ttl time.Duration, logger *slog.Logger, recorder metrics.Recorder) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Cached{next: next, cache: c, ttl: ttl, logger: logger, recorder: recorder}
}

// Geocode checks the cache before calling the wrapped Geocoder.
// Only successful lookups are stored.
func (g *Cached) Geocode(ctx context.Context, place string) (astro.Coordinate, error) {
	coord, err := g.cache.GetCoordinate(ctx, place)
	if err == nil {
		g.recorder.IncGeocodeCacheHit()
		return coord, nil
	}
	g.recorder.IncGeocodeCacheMiss()
	if !errors.Is(err, cache.ErrCacheMiss) {
		g.logger.WarnContext(ctx, "geocode cache read failed", slog.String("error", err.Error()))
	}

	coord, err = g.next.Geocode(ctx, place)
	if err != nil {
		return astro.Coordinate{}, err
	}

	if err := g.cache.SetCoordinate(ctx, place, coord, g.ttl); err != nil {
		g.logger.WarnContext(ctx, "geocode cache write failed", slog.String("error", err.Error()))
	}
	return coord, nil
}
