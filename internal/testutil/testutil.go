// Package testutil holds helpers shared by package and integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/starmatch/starmatch/internal/astro"
	"github.com/starmatch/starmatch/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 731205

// AcquireDBLock grabs a global advisory lock to serialize DB tests that
// share one database across packages.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetUsers empties the users table and restarts its id sequence.
func ResetUsers(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "TRUNCATE users RESTART IDENTITY"); err != nil {
		return fmt.Errorf("truncate users: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser returns an unsaved user with a fixed set of placements.
// An empty email leaves the email column NULL.
func NewTestUser(t testing.TB, name, email string) *model.User {
	t.Helper()
	u := &model.User{
		Name:       name,
		BirthDate:  "1990-04-15",
		BirthTime:  "08:30",
		BirthPlace: "Boca Raton",
		Signs: astro.Placements{
			astro.Sun:     astro.Aries,
			astro.Moon:    astro.Cancer,
			astro.Rising:  astro.Leo,
			astro.Venus:   astro.Pisces,
			astro.Mars:    astro.Aquarius,
			astro.Jupiter: astro.Cancer,
		},
	}
	if email != "" {
		u.Email = &email
	}
	return u
}

var emailSeq atomic.Int64

// UniqueEmail returns an address no other call in this process returns.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, emailSeq.Add(1))
}
