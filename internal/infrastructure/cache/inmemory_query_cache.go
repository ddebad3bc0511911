package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type cachedValue struct {
	raw       []byte
	expiresAt time.Time
}

// InMemoryQueryCache implements QueryCache in process memory.
// Values are stored as JSON so callers get copies, the same as with Redis.
type InMemoryQueryCache struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]map[string]cachedValue
}

// NewInMemoryQueryCache creates an empty cache
func NewInMemoryQueryCache() *InMemoryQueryCache {
	return &InMemoryQueryCache{tenants: make(map[uuid.UUID]map[string]cachedValue)}
}

// Get loads a cached value
func (c *InMemoryQueryCache) Get(_ context.Context, tenantID uuid.UUID, key string, dest any) (bool, error) {
	c.mu.RLock()
	v, ok := c.tenants[tenantID][key]
	c.mu.RUnlock()

	if !ok || time.Now().After(v.expiresAt) {
		return false, nil
	}
	if err := json.Unmarshal(v.raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

// Set stores a value
func (c *InMemoryQueryCache) Set(_ context.Context, tenantID uuid.UUID, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries, ok := c.tenants[tenantID]
	if !ok {
		entries = make(map[string]cachedValue)
		c.tenants[tenantID] = entries
	}
	entries[key] = cachedValue{raw: raw, expiresAt: time.Now().Add(ttl)}
	return nil
}

// InvalidateTenant drops the school's entries
func (c *InMemoryQueryCache) InvalidateTenant(_ context.Context, tenantID uuid.UUID) error {
	c.mu.Lock()
	delete(c.tenants, tenantID)
	c.mu.Unlock()
	return nil
}

// Size returns the number of entries across schools
func (c *InMemoryQueryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, entries := range c.tenants {
		n += len(entries)
	}
	return n
}

var _ QueryCache = (*InMemoryQueryCache)(nil)
