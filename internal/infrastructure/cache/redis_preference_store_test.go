package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/exoorder/backend/internal/domain/preference"
	"github.com/exoorder/backend/internal/infrastructure/config"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	return config.RedisConfig{Host: host, Port: port.Int(), KeyPrefix: "exo:test:"}
}

func TestRedisPreferenceStore(t *testing.T) {
	cfg := startRedis(t)
	ctx := context.Background()

	store, err := NewRedisPreferenceStore(ctx, cfg)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(ctx, preference.KeyAPIKey)
	require.ErrorIs(t, err, preference.ErrNotFound)

	require.NoError(t, store.Set(ctx, preference.KeyAPIKey, "k1"))
	require.NoError(t, store.Set(ctx, preference.KeyAPIKey, "k2"))

	value, err := store.Get(ctx, preference.KeyAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "k2", value)

	raw, err := store.client.Get(ctx, "exo:test:api_key").Result()
	require.NoError(t, err)
	assert.Equal(t, "k2", raw)

	ttl, err := store.client.TTL(ctx, "exo:test:api_key").Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl, "preferences never expire")
}

func TestRedisPreferenceStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	store := NewRedisPreferenceStoreWithClient(client, "")
	defer store.Close()
	ctx := context.Background()

	assert.Equal(t, defaultKeyPrefix, store.keyPrefix)
	_, err := store.Get(ctx, preference.KeyAPIKey)
	assert.ErrorContains(t, err, fmt.Sprintf("failed to read preference %s", preference.KeyAPIKey))
	assert.NotErrorIs(t, err, preference.ErrNotFound)
	assert.Error(t, store.Set(ctx, preference.KeyAPIKey, "v"))
	assert.Error(t, store.Ping(ctx))
}
