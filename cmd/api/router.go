package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/starmatch/starmatch/internal/handler"
	"github.com/starmatch/starmatch/internal/middleware"
)

type routerDeps struct {
	home      *handler.Handler
	health    *handler.HealthHandler
	users     *handler.UserHandler
	metrics   *handler.MetricsHandler
	rateLimit middleware.RateLimitConfig
	cors      middleware.CORSConfig
	isDev     bool
	maxBody   int64
	logger    *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.CORS(d.cors))
	r.Use(middleware.Security(d.isDev))
	r.Use(middleware.MaxBodySize(d.maxBody))

	r.Get("/", d.home.Home)
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	r.Get("/metrics", d.metrics.Metrics)

	r.With(middleware.RateLimitIP(d.rateLimit)).Post("/register", d.users.Register)
	r.Get("/match/{id}", d.users.Match)

	r.NotFound(d.home.NotFound)
	r.MethodNotAllowed(d.home.MethodNotAllowed)

	return r
}
