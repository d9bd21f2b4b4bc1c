package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Constants for Redis result cache configuration
const (
	defaultResultKeyPrefix = "model:result:"
	resultScanBatchSize    = 100
)

// RedisResultCache implements ResultCache using Redis
// This is suitable for distributed deployments where multiple instances
// benefit from a shared result cache
type RedisResultCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	keyPrefix  string
	defaultTTL time.Duration
	logger     *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisResultCacheOption is a functional option for configuring the cache
type RedisResultCacheOption func(*RedisResultCache)

// WithKeyPrefix sets the key prefix for cached results
func WithKeyPrefix(prefix string) RedisResultCacheOption {
	return func(c *RedisResultCache) {
		c.keyPrefix = prefix
	}
}

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisResultCacheOption {
	return func(c *RedisResultCache) {
		c.logger = logger
	}
}

// NewRedisResultCache creates a new Redis-based result cache
func NewRedisResultCache(cfg RedisConfig, defaultTTL time.Duration, opts ...RedisResultCacheOption) (*RedisResultCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if defaultTTL <= 0 {
		defaultTTL = defaultResultTTL
	}

	cache := &RedisResultCache{
		client:     client,
		ownsClient: true, // We created this client, so we own it
		keyPrefix:  defaultResultKeyPrefix,
		defaultTTL: defaultTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisResultCacheWithClient creates a cache with an existing Redis client
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisResultCacheWithClient(client *redis.Client, defaultTTL time.Duration, opts ...RedisResultCacheOption) *RedisResultCache {
	if defaultTTL <= 0 {
		defaultTTL = defaultResultTTL
	}

	cache := &RedisResultCache{
		client:     client,
		ownsClient: false, // Client is shared, don't close it
		keyPrefix:  defaultResultKeyPrefix,
		defaultTTL: defaultTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// Get retrieves a cached payload by key
func (c *RedisResultCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	cacheKey := c.keyPrefix + key

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		// Cache miss
		c.logger.Debug("cache miss for projection result", zap.String("cache_key", key))
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("failed to get projection result from cache",
			zap.String("cache_key", key),
			zap.Error(err))
		return nil, false, fmt.Errorf("failed to get result from cache: %w", err)
	}

	c.logger.Debug("cache hit for projection result", zap.String("cache_key", key))
	return data, true, nil
}

// Set stores a payload with a TTL
func (c *RedisResultCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	cacheKey := c.keyPrefix + key

	if err := c.client.Set(ctx, cacheKey, payload, ttl).Err(); err != nil {
		c.logger.Error("failed to set projection result in cache",
			zap.String("cache_key", key),
			zap.Error(err))
		return fmt.Errorf("failed to set result in cache: %w", err)
	}

	c.logger.Debug("cached projection result",
		zap.String("cache_key", key),
		zap.Duration("ttl", ttl))
	return nil
}

// EntryCount returns the number of cached results by scanning the key prefix
func (c *RedisResultCache) EntryCount(ctx context.Context) (int64, error) {
	var count int64
	var cursor uint64

	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", resultScanBatchSize).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to scan cached results: %w", err)
		}

		count += int64(len(keys))
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return count, nil
}

// Close closes the Redis client if this cache owns it
func (c *RedisResultCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisResultCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisResultCache implements ResultCache
var _ ResultCache = (*RedisResultCache)(nil)
