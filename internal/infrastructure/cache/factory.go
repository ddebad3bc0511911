package cache

import (
	"github.com/redis/go-redis/v9"
	"github.com/schoolhub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Factory picks Redis or in-memory implementations depending on whether a
// Redis client is available
type Factory struct {
	client *redis.Client
	cfg    config.CacheConfig
	logger *zap.Logger
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory creates a factory. client may be nil when Redis is disabled or unreachable.
func NewFactory(cfg config.CacheConfig, client *redis.Client, opts ...FactoryOption) *Factory {
	f := &Factory{client: client, cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// QueryCache returns the statistics cache
func (f *Factory) QueryCache() QueryCache {
	if !f.cfg.Enabled {
		f.logger.Info("query cache disabled")
		return NopQueryCache{}
	}
	if f.client == nil {
		f.logger.Warn("Redis unavailable, using in-memory query cache. " +
			"Cached statistics are not shared between instances.")
		return NewInMemoryQueryCache()
	}
	f.logger.Info("using Redis query cache")
	return NewRedisQueryCache(f.client, f.cfg.KeyPrefix)
}

// JobLock returns the scheduler lock
func (f *Factory) JobLock() JobLock {
	if f.client == nil {
		f.logger.Warn("Redis unavailable, using in-memory job lock. " +
			"Scheduled jobs may run once per instance.")
		return NewInMemoryJobLock()
	}
	return NewRedisJobLock(f.client)
}
