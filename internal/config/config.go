// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor
// principles; a local .env file, when present, fills in unset variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/starmatch/starmatch/internal/astro"
	"github.com/starmatch/starmatch/internal/compat"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Record store. DATABASE_URL is a file path for sqlite and a
	// postgres:// URL for postgres.
	StoreDriver        string        `env:"STORE_DRIVER" envDefault:"sqlite"`
	DatabaseURL        string        `env:"DATABASE_URL" envDefault:"users.db"`
	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Cache (Redis). Optional; enables the geocode cache and rate limiting.
	RedisURL string `env:"REDIS_URL"`

	// Astrology
	SignMethod     string `env:"SIGN_METHOD" envDefault:"approx"`
	ScoreProfile   string `env:"SCORE_PROFILE" envDefault:"planetary"`
	ScoreWeights   string `env:"SCORE_WEIGHTS"`
	ScoreClamp     bool   `env:"SCORE_CLAMP" envDefault:"true"`
	MatchThreshold int    `env:"MATCH_THRESHOLD" envDefault:"50"`

	// Geocoding
	GeocoderEnabled   bool          `env:"GEOCODER_ENABLED" envDefault:"true"`
	GeocoderURL       string        `env:"GEOCODER_URL" envDefault:"https://nominatim.openstreetmap.org"`
	GeocoderTimeout   time.Duration `env:"GEOCODER_TIMEOUT" envDefault:"3s"`
	GeocoderUserAgent string        `env:"GEOCODER_USER_AGENT" envDefault:"starmatch-geocoder/1.0"`
	GeocodeCacheTTL   time.Duration `env:"GEOCODE_CACHE_TTL" envDefault:"168h"`
	DefaultLatitude   float64       `env:"DEFAULT_LATITUDE" envDefault:"26.3184"`
	DefaultLongitude  float64       `env:"DEFAULT_LONGITUDE" envDefault:"-80.0998"`

	// Rate limiting for POST /register (requires Redis)
	RateLimitRegisterEnabled bool    `env:"RATE_LIMIT_REGISTER_ENABLED" envDefault:"true"`
	RateLimitRegisterRPS     float64 `env:"RATE_LIMIT_REGISTER_RPS" envDefault:"1"`
	RateLimitRegisterBurst   int     `env:"RATE_LIMIT_REGISTER_BURST" envDefault:"5"`

	// Comma-separated list of allowed origins; "*" allows any.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Request body size limit in bytes
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Method returns the configured sign calculation method.
func (c *Config) Method() astro.Method {
	return astro.Method(strings.ToLower(strings.TrimSpace(c.SignMethod)))
}

// Weights returns SCORE_WEIGHTS when set, otherwise the SCORE_PROFILE table.
func (c *Config) Weights() (compat.Weights, error) {
	if strings.TrimSpace(c.ScoreWeights) != "" {
		return compat.ParseWeights(c.ScoreWeights)
	}
	return compat.Profile(c.ScoreProfile)
}

// DefaultLocation is the coordinate used when geocoding is off or fails.
func (c *Config) DefaultLocation() astro.Coordinate {
	return astro.Coordinate{Lat: c.DefaultLatitude, Lon: c.DefaultLongitude}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.AppPort < 1 || c.AppPort > 65535 {
		add("APP_PORT %d out of range", c.AppPort)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		add("LOG_FORMAT %q is not json or text", c.LogFormat)
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.ShutdownTimeout <= 0 {
		add("server timeouts must be positive")
	}

	switch c.StoreDriver {
	case StoreSQLite:
		if c.DatabaseURL == "" {
			add("DATABASE_URL is required for the sqlite store")
		}
	case StorePostgres:
		if !strings.HasPrefix(c.DatabaseURL, "postgres://") && !strings.HasPrefix(c.DatabaseURL, "postgresql://") {
			add("DATABASE_URL must be a postgres:// URL for the postgres store")
		}
	case StoreMemory:
	default:
		add("STORE_DRIVER %q is not one of sqlite, postgres, memory", c.StoreDriver)
	}

	if !c.Method().IsValid() {
		add("SIGN_METHOD %q is not calendar or approx", c.SignMethod)
	}
	if w, err := c.Weights(); err != nil {
		errs = append(errs, err)
	} else if c.Method() == astro.MethodCalendar && w[astro.Sun] <= c.MatchThreshold {
		// The calendar method only knows the Sun, so no pair could ever match.
		add("SIGN_METHOD calendar scores only the sun: sun weight %d must exceed MATCH_THRESHOLD %d",
			w[astro.Sun], c.MatchThreshold)
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > compat.MaxScore {
		add("MATCH_THRESHOLD %d must be between 0 and %d", c.MatchThreshold, compat.MaxScore)
	}

	if c.GeocoderEnabled {
		if c.GeocoderURL == "" {
			add("GEOCODER_URL is required when geocoding is enabled")
		}
		if c.GeocoderTimeout <= 0 {
			add("GEOCODER_TIMEOUT must be positive")
		}
	}
	if c.DefaultLatitude < -90 || c.DefaultLatitude > 90 {
		add("DEFAULT_LATITUDE %v out of range", c.DefaultLatitude)
	}
	if c.DefaultLongitude < -180 || c.DefaultLongitude > 180 {
		add("DEFAULT_LONGITUDE %v out of range", c.DefaultLongitude)
	}

	if c.RateLimitRegisterEnabled && (c.RateLimitRegisterRPS <= 0 || c.RateLimitRegisterBurst < 1) {
		add("register rate limit needs RPS > 0 and BURST >= 1")
	}
	if c.MaxRequestBodySize <= 0 {
		add("MAX_REQUEST_BODY_SIZE must be positive")
	}

	return errors.Join(errs...)
}

// Load reads an optional .env file, parses the environment and validates
// the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
