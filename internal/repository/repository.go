// Package repository provides the user record store.
//
// Records are append-only: a user is inserted once with derived signs and is
// then only ever read back by id or listed for matching.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starmatch/starmatch/internal/model"
)

// Common errors for user store operations.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailExists   = errors.New("email already exists")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrMissingDSN    = errors.New("database URL is required")
)

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// UserStore is the persistence contract for user records.
type UserStore interface {
	// CreateUser inserts u and sets its ID and CreatedAt.
	// Returns ErrEmailExists when the email is already registered.
	CreateUser(ctx context.Context, u *model.User) error

	// GetUserByID returns ErrUserNotFound when no record has the id.
	GetUserByID(ctx context.Context, id int64) (*model.User, error)

	// ListUsersExcluding returns every other record ordered by id.
	ListUsersExcluding(ctx context.Context, id int64) ([]*model.User, error)

	CountUsers(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// Options configures Open.
type Options struct {
	Driver string
	DSN    string
	Logger *slog.Logger
	// SlowQueryThreshold logs statements slower than this at warn level.
	// Zero disables slow-query logging.
	SlowQueryThreshold time.Duration
}

// Open returns the store for opts.Driver with its schema migrated.
func Open(ctx context.Context, opts Options) (UserStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ql := queryLogger{logger: logger, slow: opts.SlowQueryThreshold}

	switch opts.Driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite, "":
		if opts.DSN == "" {
			return nil, ErrMissingDSN
		}
		return OpenSQLite(ctx, opts.DSN, ql)
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, ErrMissingDSN
		}
		return OpenPostgres(ctx, opts.DSN, ql)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// queryLogger emits one debug entry per statement and a warning for slow ones.
type queryLogger struct {
	logger *slog.Logger
	slow   time.Duration
}

func (q queryLogger) observe(ctx context.Context, op string, start time.Time, err error) {
	if q.logger == nil {
		return
	}

	d := time.Since(start)
	attrs := []any{
		slog.String("op", op),
		slog.Float64("duration_ms", float64(d.Microseconds())/1000),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	if q.slow > 0 && d >= q.slow {
		q.logger.WarnContext(ctx, "slow query", attrs...)
		return
	}
	q.logger.DebugContext(ctx, "query", attrs...)
}
