// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
type Recorder interface {
	// Registration metrics
	IncRegistration()
	IncDuplicateEmail()
	IncRateLimited()
	ObserveRegisterDuration(duration time.Duration)

	// Matching metrics
	IncMatchQuery()
	AddMatchResults(n int)

	// Geocoding metrics
	IncGeocodeCacheHit()
	IncGeocodeCacheMiss()
	IncGeocodeFallback()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
