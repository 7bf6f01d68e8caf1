package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almoxarifado-api/internal/application/ports"
	"github.com/jhoicas/Almoxarifado-api/internal/infrastructure/redis"
)

func getRedisClient(t *testing.T) *goredis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := redis.Connect(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestIdempotencyStore_ClaimOnce(t *testing.T) {
	store := redis.NewIdempotencyStore(getRedisClient(t), time.Minute)
	ctx := context.Background()
	key := uuid.NewString()
	t.Cleanup(func() { _ = store.Release(ctx, key) })

	ok, err := store.Claim(ctx, key, "hash-a")
	require.NoError(t, err)
	assert.True(t, ok, "la primera petición reclama la clave")

	ok, err = store.Claim(ctx, key, "hash-b")
	require.NoError(t, err)
	assert.False(t, ok, "la repetición no puede reclamar")

	resp, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Pending, "pendiente => sin respuesta guardada")
	assert.Equal(t, "hash-a", resp.RequestHash, "conserva el hash del primer reclamo")
}

func TestIdempotencyStore_CompleteAndReplay(t *testing.T) {
	store := redis.NewIdempotencyStore(getRedisClient(t), time.Minute)
	ctx := context.Background()
	key := uuid.NewString()
	t.Cleanup(func() { _ = store.Release(ctx, key) })

	_, err := store.Claim(ctx, key, "hash-a")
	require.NoError(t, err)
	want := ports.StoredResponse{RequestHash: "hash-a", Status: 201, ContentType: "application/json", Body: []byte(`{"code":"EMP-2025-00001"}`)}
	require.NoError(t, store.Complete(ctx, key, want))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestIdempotencyStore_ReleaseAllowsRetry(t *testing.T) {
	store := redis.NewIdempotencyStore(getRedisClient(t), time.Minute)
	ctx := context.Background()
	key := uuid.NewString()
	t.Cleanup(func() { _ = store.Release(ctx, key) })

	_, err := store.Claim(ctx, key, "hash-a")
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, key))

	ok, err := store.Claim(ctx, key, "hash-a")
	require.NoError(t, err)
	assert.True(t, ok)
}
