package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// JobLock lets one server instance claim a scheduled run.
// TryAcquire returns true when the caller now holds key until ttl elapses.
type JobLock interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

const lockKeyPrefix = "schoolhub:lock:"

// RedisJobLock implements JobLock with SET NX
type RedisJobLock struct {
	client *redis.Client
}

// NewRedisJobLock creates a lock on an existing client
func NewRedisJobLock(client *redis.Client) *RedisJobLock {
	return &RedisJobLock{client: client}
}

// TryAcquire claims key with SET NX and a TTL in one command
func (l *RedisJobLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKeyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return ok, nil
}

var _ JobLock = (*RedisJobLock)(nil)

type lockEntry struct {
	expiresAt time.Time
}

// InMemoryJobLock implements JobLock for a single instance
type InMemoryJobLock struct {
	mu        sync.Mutex
	entries   map[string]lockEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryJobLock creates the lock and starts its cleanup goroutine
func NewInMemoryJobLock() *InMemoryJobLock {
	l := &InMemoryJobLock{
		entries:  make(map[string]lockEntry),
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// TryAcquire claims key unless a live entry holds it
func (l *InMemoryJobLock) TryAcquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, exists := l.entries[key]; exists && time.Now().Before(e.expiresAt) {
		return false, nil
	}
	l.entries[key] = lockEntry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (l *InMemoryJobLock) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *InMemoryJobLock) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryJobLock) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, e := range l.entries {
		if now.After(e.expiresAt) {
			delete(l.entries, key)
		}
	}
}

// Size returns the number of held or expired-but-uncollected entries
func (l *InMemoryJobLock) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

var _ JobLock = (*InMemoryJobLock)(nil)
