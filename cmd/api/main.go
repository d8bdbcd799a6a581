// Package main is the entrypoint for the Starmatch API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/starmatch/starmatch/internal/astro"
	"github.com/starmatch/starmatch/internal/cache"
	"github.com/starmatch/starmatch/internal/compat"
	"github.com/starmatch/starmatch/internal/config"
	"github.com/starmatch/starmatch/internal/geocode"
	"github.com/starmatch/starmatch/internal/handler"
	"github.com/starmatch/starmatch/internal/metrics"
	"github.com/starmatch/starmatch/internal/middleware"
	"github.com/starmatch/starmatch/internal/repository"
	"github.com/starmatch/starmatch/internal/server"
	"github.com/starmatch/starmatch/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := repository.Open(ctx, repository.Options{
		Driver:             cfg.StoreDriver,
		DSN:                cfg.DatabaseURL,
		Logger:             logger,
		SlowQueryThreshold: cfg.SlowQueryThreshold,
	})
	if err != nil {
		logger.Error("failed to open store",
			slog.String("driver", cfg.StoreDriver),
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return err
	}
	logger.Info("store ready", "driver", cfg.StoreDriver)

	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			store.Close()
			logger.Error("failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			return err
		}
		logger.Info("connected to Redis")
	}

	recorder := metrics.NewInMemory()

	svc, err := newUserService(cfg, store, cacheClient, recorder, logger)
	if err != nil {
		store.Close()
		if cacheClient != nil {
			cacheClient.Close()
		}
		return err
	}

	deps := routerDeps{
		home:    handler.New(),
		users:   handler.NewUserHandler(svc, logger),
		metrics: handler.NewMetricsHandler(recorder),
		cors:    middleware.DefaultCORSConfig(),
		isDev:   cfg.IsDevelopment(),
		maxBody: cfg.MaxRequestBodySize,
		logger:  logger,
		rateLimit: middleware.RateLimitConfig{
			Enabled:  cfg.RateLimitRegisterEnabled && cacheClient != nil,
			Scope:    "register",
			RPS:      cfg.RateLimitRegisterRPS,
			Burst:    cfg.RateLimitRegisterBurst,
			Logger:   logger,
			Recorder: recorder,
		},
	}
	deps.cors.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	if cacheClient != nil {
		deps.health = handler.NewHealthHandler(store, cacheClient)
		deps.rateLimit.Limiter = cacheClient
	} else {
		deps.health = handler.NewHealthHandler(store, nil)
	}

	srv := server.New(setupRouter(deps), server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Logger:          logger,
	})
	srv.OnShutdown("store", func(context.Context) error { return store.Close() })
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error { return cacheClient.Close() })
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"sign_method", cfg.Method(),
		"geocoder_enabled", cfg.GeocoderEnabled,
		"match_threshold", cfg.MatchThreshold,
	)

	return srv.Run(ctx)
}

// newUserService builds the sign calculator, scorer and geocoder chain.
// The service adds the default-location fallback around the geocoder.
func newUserService(cfg *config.Config, store repository.UserStore, cacheClient *cache.Cache, recorder metrics.Recorder, logger *slog.Logger) (*service.UserService, error) {
	calc, err := astro.NewCalculator(cfg.Method())
	if err != nil {
		return nil, err
	}

	weights, err := cfg.Weights()
	if err != nil {
		return nil, err
	}
	scorer, err := compat.NewScorer(weights, cfg.ScoreClamp)
	if err != nil {
		return nil, err
	}
	logger.Info("score weights", "weights", weights.String(), "clamp", cfg.ScoreClamp)

	location := cfg.DefaultLocation()
	threshold := cfg.MatchThreshold
	opts := service.Options{
		DefaultLocation: &location,
		Threshold:       &threshold,
		Logger:          logger,
		Recorder:        recorder,
	}

	if cfg.GeocoderEnabled && calc.Method() != astro.MethodCalendar {
		var g geocode.Geocoder = geocode.NewNominatimClient(geocode.NominatimOptions{
			BaseURL:   cfg.GeocoderURL,
			UserAgent: cfg.GeocoderUserAgent,
			Timeout:   cfg.GeocoderTimeout,
		})
		if cacheClient != nil {
			g = geocode.NewCached(g, cacheClient, cfg.GeocodeCacheTTL, logger, recorder)
		}
		opts.Geocoder = g
	}

	return service.NewUserService(store, calc, scorer, opts)
}

// initLogger installs the slog default logger described by cfg.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
