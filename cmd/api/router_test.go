package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starmatch/starmatch/internal/astro"
	"github.com/starmatch/starmatch/internal/cache"
	"github.com/starmatch/starmatch/internal/compat"
	"github.com/starmatch/starmatch/internal/handler"
	"github.com/starmatch/starmatch/internal/handler/dto"
	"github.com/starmatch/starmatch/internal/metrics"
	"github.com/starmatch/starmatch/internal/middleware"
	"github.com/starmatch/starmatch/internal/repository"
	"github.com/starmatch/starmatch/internal/service"
)

type testApp struct {
	router   http.Handler
	store    *repository.MemoryStore
	recorder *metrics.InMemoryRecorder
}

// newTestApp wires the full router over a memory store. Signs come from the
// calendar table and only the Sun is weighted, so two fire suns score 100.
func newTestApp(t *testing.T, limiter middleware.IPRateLimiter) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemoryStore()
	recorder := metrics.NewInMemory()

	weights, err := compat.ParseWeights("sun=100")
	require.NoError(t, err)
	scorer, err := compat.NewScorer(weights, true)
	require.NoError(t, err)

	svc, err := service.NewUserService(store, astro.CalendarCalculator{}, scorer, service.Options{
		Logger:   logger,
		Recorder: recorder,
	})
	require.NoError(t, err)

	deps := routerDeps{
		home:    handler.New(),
		health:  handler.NewHealthHandler(store, nil),
		users:   handler.NewUserHandler(svc, logger),
		metrics: handler.NewMetricsHandler(recorder),
		cors:    middleware.DefaultCORSConfig(),
		isDev:   true,
		maxBody: 1 << 16,
		logger:  logger,
		rateLimit: middleware.RateLimitConfig{
			Enabled:  limiter != nil,
			Scope:    "register",
			RPS:      1,
			Burst:    1,
			Limiter:  limiter,
			Logger:   logger,
			Recorder: recorder,
		},
	}

	return &testApp{router: setupRouter(deps), store: store, recorder: recorder}
}

func (a *testApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func registerBody(name, date string) string {
	return `{"name":"` + name + `","birthDate":"` + date + `","birthTime":"12:00","birthPlace":"Boca Raton"}`
}

func TestRouter_RegisterAndMatch(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	for _, tc := range []struct{ name, date string }{
		{"Ada", "1990-04-15"}, // Aries
		{"Ben", "1991-08-01"}, // Leo
		{"Cy", "1992-05-01"},  // Taurus
		{"Di", "1993/12/01"},  // Sagittarius
	} {
		rec := app.do(t, http.MethodPost, "/register", registerBody(tc.name, tc.date))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := app.do(t, http.MethodGet, "/match/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.MatchListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, dto.MatchResponse{Name: "Ben", Score: 100, ID: 2}, resp.Matches[0])
	assert.Equal(t, dto.MatchResponse{Name: "Di", Score: 100, ID: 4}, resp.Matches[1])

	snap := app.recorder.Snapshot()
	assert.Equal(t, uint64(4), snap.Registrations)
	assert.Equal(t, uint64(1), snap.MatchQueries)
	assert.Equal(t, uint64(2), snap.MatchResults)
}

func TestRouter_MissingNameCreatesNoRecord(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	rec := app.do(t, http.MethodPost, "/register",
		`{"birthDate":"1990-04-15","birthTime":"12:00","birthPlace":"Boca Raton"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	n, err := app.store.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	rec = app.do(t, http.MethodGet, "/match/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Home(t *testing.T) {
	t.Parallel()

	rec := newTestApp(t, nil).do(t, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, handler.HomeMessage, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
}

func TestRouter_Fallbacks(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	tests := []struct {
		method   string
		path     string
		wantCode int
		wantErr  string
	}{
		{http.MethodGet, "/nope", http.StatusNotFound, "NOT_FOUND"},
		{http.MethodGet, "/register", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{http.MethodDelete, "/match/1", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := app.do(t, tt.method, tt.path, "")
			assert.Equal(t, tt.wantCode, rec.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantErr, resp.Code)
		})
	}
}

func TestRouter_Middleware(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, "trace-123")
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "trace-123", rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRouter_BodyTooLarge(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)
	body := `{"name":"` + strings.Repeat("x", 1<<17) + `"}`

	rec := app.do(t, http.MethodPost, "/register", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

type denyLimiter struct {
	calls int
}

func (d *denyLimiter) CheckIPRateLimit(context.Context, string, string, float64, int) (*cache.RateLimitResult, error) {
	d.calls++
	return &cache.RateLimitResult{Allowed: false, RetryAfter: 1500 * time.Millisecond}, nil
}

func TestRouter_RegisterRateLimited(t *testing.T) {
	t.Parallel()

	limiter := &denyLimiter{}
	app := newTestApp(t, limiter)

	rec := app.do(t, http.MethodPost, "/register", registerBody("Ada", "1990-04-15"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))

	// Only registration is limited.
	rec = app.do(t, http.MethodGet, "/match/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, limiter.calls)

	assert.Equal(t, uint64(1), app.recorder.Snapshot().RateLimited)
}
