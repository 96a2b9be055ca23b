package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/exoorder/backend/internal/domain/preference"
	"github.com/exoorder/backend/internal/infrastructure/config"
)

const defaultKeyPrefix = "exo:pref:"

// RedisPreferenceStore implements preference.Store on Redis strings.
// Values never expire.
type RedisPreferenceStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ preference.Store = (*RedisPreferenceStore)(nil)

// NewRedisPreferenceStore connects to Redis and verifies the connection
func NewRedisPreferenceStore(ctx context.Context, cfg config.RedisConfig) (*RedisPreferenceStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisPreferenceStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisPreferenceStoreWithClient wraps an existing client
func NewRedisPreferenceStoreWithClient(client *redis.Client, keyPrefix string) *RedisPreferenceStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisPreferenceStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisPreferenceStore) key(k preference.Key) string {
	return s.keyPrefix + string(k)
}

// Get returns the stored value or preference.ErrNotFound
func (s *RedisPreferenceStore) Get(ctx context.Context, key preference.Key) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", preference.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, nil
}

// Set overwrites the value for key
func (s *RedisPreferenceStore) Set(ctx context.Context, key preference.Key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection
func (s *RedisPreferenceStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisPreferenceStore) Close() error {
	return s.client.Close()
}
