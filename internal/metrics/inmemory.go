package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Registrations           uint64
	DuplicateEmails         uint64
	RateLimited             uint64
	RegisterDurationCount   uint64
	RegisterDurationTotalNs int64
	MatchQueries            uint64
	MatchResults            uint64
	GeocodeCacheHits        uint64
	GeocodeCacheMisses      uint64
	GeocodeFallbacks        uint64
}

// InMemoryRecorder keeps counters in process memory.
type InMemoryRecorder struct {
	registrations           atomic.Uint64
	duplicateEmails         atomic.Uint64
	rateLimited             atomic.Uint64
	registerDurationCount   atomic.Uint64
	registerDurationTotalNs atomic.Int64
	matchQueries            atomic.Uint64
	matchResults            atomic.Uint64
	geocodeCacheHits        atomic.Uint64
	geocodeCacheMisses      atomic.Uint64
	geocodeFallbacks        atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Registrations:           m.registrations.Load(),
		DuplicateEmails:         m.duplicateEmails.Load(),
		RateLimited:             m.rateLimited.Load(),
		RegisterDurationCount:   m.registerDurationCount.Load(),
		RegisterDurationTotalNs: m.registerDurationTotalNs.Load(),
		MatchQueries:            m.matchQueries.Load(),
		MatchResults:            m.matchResults.Load(),
		GeocodeCacheHits:        m.geocodeCacheHits.Load(),
		GeocodeCacheMisses:      m.geocodeCacheMisses.Load(),
		GeocodeFallbacks:        m.geocodeFallbacks.Load(),
	}
}

// IncRegistration counts a stored registration.
func (m *InMemoryRecorder) IncRegistration() { m.registrations.Add(1) }

// IncDuplicateEmail counts a registration rejected for a taken email.
func (m *InMemoryRecorder) IncDuplicateEmail() { m.duplicateEmails.Add(1) }

// IncRateLimited counts a request rejected by the rate limiter.
func (m *InMemoryRecorder) IncRateLimited() { m.rateLimited.Add(1) }

// ObserveRegisterDuration records end-to-end registration latency.
func (m *InMemoryRecorder) ObserveRegisterDuration(duration time.Duration) {
	m.registerDurationCount.Add(1)
	m.registerDurationTotalNs.Add(duration.Nanoseconds())
}

// IncMatchQuery counts a match lookup.
func (m *InMemoryRecorder) IncMatchQuery() { m.matchQueries.Add(1) }

// AddMatchResults adds the number of matches returned by a lookup.
func (m *InMemoryRecorder) AddMatchResults(n int) {
	if n > 0 {
		m.matchResults.Add(uint64(n))
	}
}

func (m *InMemoryRecorder) IncGeocodeCacheHit() { m.geocodeCacheHits.Add(1) }
func (m *InMemoryRecorder) IncGeocodeCacheMiss() { m.geocodeCacheMisses.Add(1) }
func (m *InMemoryRecorder) IncGeocodeFallback() { m.geocodeFallbacks.Add(1) }
