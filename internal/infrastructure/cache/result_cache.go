package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache backend identifiers, matching the cache.backend configuration values
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ResultCache stores serialized projection results keyed by a digest of the
// request that produced them. Identical requests resolve to identical keys,
// so a hit returns the exact payload a fresh run would compute.
type ResultCache interface {
	// Get retrieves a cached payload. The second return value is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a payload with a TTL. A zero TTL uses the backend's default.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// EntryCount returns the number of live entries (for monitoring)
	EntryCount(ctx context.Context) (int64, error)

	// Close releases backend resources. Safe to call multiple times.
	Close() error
}

// RequestKey derives a cache key from the value that fully determines a
// projection result, typically the request DTO. encoding/json emits struct
// fields in declaration order and sorts map keys, so equal requests always
// hash to the same key.
func RequestKey(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cache key material: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// NoopResultCache is the backend for cache.backend=none. Every lookup misses
// and writes are discarded.
type NoopResultCache struct{}

// NewNoopResultCache creates a cache that never stores anything
func NewNoopResultCache() *NoopResultCache {
	return &NoopResultCache{}
}

// Get always reports a miss
func (c *NoopResultCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the payload
func (c *NoopResultCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return nil
}

// EntryCount always returns zero
func (c *NoopResultCache) EntryCount(ctx context.Context) (int64, error) {
	return 0, nil
}

// Close is a no-op
func (c *NoopResultCache) Close() error {
	return nil
}

// Ensure NoopResultCache implements ResultCache
var _ ResultCache = (*NoopResultCache)(nil)
