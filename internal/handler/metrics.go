package handler

import (
	"fmt"
	"net/http"

	"github.com/starmatch/starmatch/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "starmatch_registrations_total %d\n", snap.Registrations)
	writeMetric(w, "starmatch_registrations_rejected_total{reason=\"duplicate_email\"} %d\n", snap.DuplicateEmails)
	writeMetric(w, "starmatch_registrations_rejected_total{reason=\"rate_limited\"} %d\n", snap.RateLimited)
	writeMetric(w, "starmatch_register_duration_seconds_count %d\n", snap.RegisterDurationCount)
	writeMetric(w, "starmatch_register_duration_seconds_sum %.6f\n", float64(snap.RegisterDurationTotalNs)/1e9)

	writeMetric(w, "starmatch_match_queries_total %d\n", snap.MatchQueries)
	writeMetric(w, "starmatch_match_results_total %d\n", snap.MatchResults)

	writeMetric(w, "starmatch_geocode_cache_total{result=\"hit\"} %d\n", snap.GeocodeCacheHits)
	writeMetric(w, "starmatch_geocode_cache_total{result=\"miss\"} %d\n", snap.GeocodeCacheMisses)
	writeMetric(w, "starmatch_geocode_fallbacks_total %d\n", snap.GeocodeFallbacks)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
