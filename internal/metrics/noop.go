package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncRegistration() {}
func (n *NoopRecorder) IncDuplicateEmail() {}
func (n *NoopRecorder) IncRateLimited() {}
func (n *NoopRecorder) ObserveRegisterDuration(duration time.Duration) {}
func (n *NoopRecorder) IncMatchQuery() {}
func (n *NoopRecorder) AddMatchResults(count int) {}
func (n *NoopRecorder) IncGeocodeCacheHit() {}
func (n *NoopRecorder) IncGeocodeCacheMiss() {}
func (n *NoopRecorder) IncGeocodeFallback() {}
