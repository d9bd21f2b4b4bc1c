package cache

import (
	"fmt"

	"github.com/corpfin/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ResultCacheFactory creates result caches based on configuration
type ResultCacheFactory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ResultCacheFactoryOption is a functional option for configuring the factory
type ResultCacheFactoryOption func(*ResultCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ResultCacheFactoryOption {
	return func(f *ResultCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) ResultCacheFactoryOption {
	return func(f *ResultCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewResultCacheFactory creates a new factory
func NewResultCacheFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...ResultCacheFactoryOption) *ResultCacheFactory {
	f := &ResultCacheFactory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true, // Default to allowing fallback
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-based result cache
func (f *ResultCacheFactory) CreateRedisCache() (ResultCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisResultCache(redisCfg, f.cacheConfig.TTL, WithCacheLogger(f.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis result cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory result cache
// This is suitable for single-instance deployments and testing
// WARNING: In-memory caches do not share state across process instances,
// so each instance recomputes results the others already hold
func (f *ResultCacheFactory) CreateInMemoryCache() ResultCache {
	return NewInMemoryResultCache(f.cacheConfig.TTL, f.cacheConfig.MaxEntries)
}

// CreateCache creates a result cache based on the configured backend
// The redis backend falls back to in-memory when Redis is not available
// and AllowInMemoryFallback is true
func (f *ResultCacheFactory) CreateCache() (ResultCache, error) {
	switch f.cacheConfig.Backend {
	case BackendNone:
		f.logger.Info("result caching disabled")
		return NewNoopResultCache(), nil

	case BackendMemory:
		f.logger.Info("using in-memory result cache",
			zap.Duration("ttl", f.cacheConfig.TTL),
			zap.Int("max_entries", f.cacheConfig.MaxEntries),
		)
		return f.CreateInMemoryCache(), nil

	case BackendRedis:
		cache, err := f.CreateRedisCache()
		if err == nil {
			f.logger.Info("using Redis result cache",
				zap.String("addr", f.redisConfig.Addr()),
				zap.Duration("ttl", f.cacheConfig.TTL),
			)
			return cache, nil
		}

		// Check if fallback is allowed
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required for result cache but unavailable: %w", err)
		}

		// Fall back to in-memory with warning
		f.logger.Warn("Redis unavailable, falling back to in-memory result cache. "+
			"Each instance will recompute results the others already hold.",
			zap.Error(err),
		)
		return f.CreateInMemoryCache(), nil

	default:
		return nil, fmt.Errorf("unknown cache backend: %q", f.cacheConfig.Backend)
	}
}
