//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starmatch/starmatch/internal/testutil"
)

func TestPostgresStore(t *testing.T) {
	dsn := testutil.RequireEnv(t, "TEST_DATABASE_URL")

	ctx := context.Background()
	lockStore, err := OpenPostgres(ctx, dsn, queryLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { lockStore.Close() })

	unlock, err := testutil.AcquireDBLock(ctx, lockStore.pool)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unlock() })

	runStoreContract(t, func(t *testing.T) UserStore {
		store, err := OpenPostgres(ctx, dsn, queryLogger{})
		require.NoError(t, err)
		require.NoError(t, testutil.ResetUsers(ctx, store.pool))
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestPostgresStore_UniqueEmailAcrossConnections(t *testing.T) {
	dsn := testutil.RequireEnv(t, "TEST_DATABASE_URL")

	ctx := context.Background()
	store, err := OpenPostgres(ctx, dsn, queryLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	unlock, err := testutil.AcquireDBLock(ctx, store.pool)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unlock() })

	email := testutil.UniqueEmail("pg")
	require.NoError(t, store.CreateUser(ctx, testutil.NewTestUser(t, "A", email)))
	require.ErrorIs(t, store.CreateUser(ctx, testutil.NewTestUser(t, "B", email)), ErrEmailExists)
}
