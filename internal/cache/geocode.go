package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/starmatch/starmatch/internal/astro"
)

const (
	geocodeKeyPrefix = "geocode:"

	// DefaultGeocodeTTL is used when no TTL is configured.
	DefaultGeocodeTTL = 7 * 24 * time.Hour
)

// ErrCacheMiss is returned when a key is not cached.
var ErrCacheMiss = errors.New("cache miss")

// GetCoordinate returns the cached coordinate for place.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetCoordinate(ctx context.Context, place string) (astro.Coordinate, error) {
	result, err := c.client.HGetAll(ctx, geocodeKey(place)).Result()
	if err != nil {
		return astro.Coordinate{}, fmt.Errorf("redis hgetall failed: %w", err)
	}
	if len(result) == 0 {
		return astro.Coordinate{}, ErrCacheMiss
	}

	lat, err := strconv.ParseFloat(result["lat"], 64)
	if err != nil {
		return astro.Coordinate{}, fmt.Errorf("corrupt cached latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(result["lon"], 64)
	if err != nil {
		return astro.Coordinate{}, fmt.Errorf("corrupt cached longitude: %w", err)
	}

	return astro.Coordinate{Lat: lat, Lon: lon}, nil
}

// SetCoordinate caches the coordinate for place with ttl.
func (c *Cache) SetCoordinate(ctx context.Context, place string, coord astro.Coordinate, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultGeocodeTTL
	}
	key := geocodeKey(place)

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"lat": strconv.FormatFloat(coord.Lat, 'f', -1, 64),
		"lon": strconv.FormatFloat(coord.Lon, 'f', -1, 64),
	})
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}

// geocodeKey folds case and whitespace so equivalent spellings share an entry.
func geocodeKey(place string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(place), " "))
	sum := sha256.Sum256([]byte(normalized))
	return geocodeKeyPrefix + hex.EncodeToString(sum[:16])
}
