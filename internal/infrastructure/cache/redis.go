// Package cache keeps each tenant's active guidelines in Redis so scoring and
// pricing do not reload them from Postgres on every request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the byte-level cache used by CachedGuidelineRepository.
// A miss is reported as (nil, nil).
type Store interface {
	Get(ctx context.Context, tenantID, key string) ([]byte, error)
	Set(ctx context.Context, tenantID, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, tenantID, key string) error
}

// RedisStore implements Store using Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Get retrieves a value from Redis.
func (s *RedisStore) Get(ctx context.Context, tenantID, key string) ([]byte, error) {
	if tenantID == "" {
		return nil, errors.New("tenantID is required")
	}
	val, err := s.client.Get(ctx, makeKey(tenantID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores a value in Redis with TTL.
func (s *RedisStore) Set(ctx context.Context, tenantID, key string, value []byte, ttl time.Duration) error {
	if tenantID == "" {
		return errors.New("tenantID is required")
	}
	return s.client.Set(ctx, makeKey(tenantID, key), value, ttl).Err()
}

// Delete removes a value from Redis.
func (s *RedisStore) Delete(ctx context.Context, tenantID, key string) error {
	if tenantID == "" {
		return errors.New("tenantID is required")
	}
	return s.client.Del(ctx, makeKey(tenantID, key)).Err()
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func makeKey(tenantID, key string) string {
	return "underwriting:" + tenantID + ":" + key
}
