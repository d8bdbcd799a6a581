package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starmatch/starmatch/internal/handler/dto"
	"github.com/starmatch/starmatch/internal/metrics"
)

func TestHandler_Home(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	New().Home(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %s", ct)
	}

	body, _ := io.ReadAll(rec.Body)
	if string(body) != "Astro Dating API is running and healthy 🚀" {
		t.Errorf("unexpected body: %q", body)
	}
}

func TestHandler_Fallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		serve    func(w http.ResponseWriter, r *http.Request)
		wantCode int
		wantErr  string
	}{
		{"not found", New().NotFound, http.StatusNotFound, "NOT_FOUND"},
		{"method not allowed", New().MethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			tt.serve(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var resp dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantErr)
			}
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	t.Parallel()

	rec := metrics.NewInMemory()
	rec.IncRegistration()
	rec.IncMatchQuery()
	rec.AddMatchResults(3)
	rec.IncGeocodeFallback()

	w := httptest.NewRecorder()
	NewMetricsHandler(rec).Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"starmatch_registrations_total 1\n",
		"starmatch_match_queries_total 1\n",
		"starmatch_match_results_total 3\n",
		"starmatch_geocode_fallbacks_total 1\n",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	NewMetricsHandler(nil).Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
