// Package cache holds the read-model cache for statistics and dashboards and
// the job lock used by the scheduler. Redis backs both in multi-instance
// deployments; in-memory versions cover single instances and tests.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// QueryCache caches JSON-serializable query results per school
type QueryCache interface {
	// Get loads key into dest. Returns false on a miss.
	Get(ctx context.Context, tenantID uuid.UUID, key string, dest any) (bool, error)
	// Set stores value under key for ttl
	Set(ctx context.Context, tenantID uuid.UUID, key string, value any, ttl time.Duration) error
	// InvalidateTenant drops every cached entry of the school
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error
}

const defaultKeyPrefix = "schoolhub:query"

// RedisQueryCache implements QueryCache on Redis.
// Keys look like <prefix>:<tenant>:<key>.
type RedisQueryCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisQueryCache creates a query cache on an existing client
func NewRedisQueryCache(client *redis.Client, keyPrefix string) *RedisQueryCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisQueryCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisQueryCache) tenantPrefix(tenantID uuid.UUID) string {
	return c.keyPrefix + ":" + tenantID.String() + ":"
}

// Get loads a cached value
func (c *RedisQueryCache) Get(ctx context.Context, tenantID uuid.UUID, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, c.tenantPrefix(tenantID)+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

// Set stores a value
func (c *RedisQueryCache) Set(ctx context.Context, tenantID uuid.UUID, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.tenantPrefix(tenantID)+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// InvalidateTenant scans and deletes the school's keys
func (c *RedisQueryCache) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	iter := c.client.Scan(ctx, 0, c.tenantPrefix(tenantID)+"*", 100).Iterator()
	keys := make([]string, 0, 16)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

var _ QueryCache = (*RedisQueryCache)(nil)

// NopQueryCache never stores anything. Used when caching is disabled.
type NopQueryCache struct{}

// Get always misses
func (NopQueryCache) Get(context.Context, uuid.UUID, string, any) (bool, error) { return false, nil }

// Set discards the value
func (NopQueryCache) Set(context.Context, uuid.UUID, string, any, time.Duration) error { return nil }

// InvalidateTenant does nothing
func (NopQueryCache) InvalidateTenant(context.Context, uuid.UUID) error { return nil }

var _ QueryCache = NopQueryCache{}
