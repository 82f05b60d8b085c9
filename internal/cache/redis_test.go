package cache_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/cellmap/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestRedis(t *testing.T) *cache.Redis {
	t.Helper()

	store, err := cache.NewRedis(t.Context(), "localhost:6379", "", 1, slog.Default())
	if err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestRedis_GetSet(t *testing.T) {
	store := getTestRedis(t)
	ctx := t.Context()
	key := "test:" + t.Name() + ":" + time.Now().Format(time.RFC3339Nano)

	_, err := store.Get(ctx, key)
	require.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, store.Set(ctx, key, []byte("value"), time.Minute))

	value, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), value)
	require.NoError(t, store.Health(ctx))
}

func TestNewRedis_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := cache.NewRedis(t.Context(), "127.0.0.1:1", "", 0, slog.Default())

	require.ErrorContains(t, err, "failed to connect to redis")
}
