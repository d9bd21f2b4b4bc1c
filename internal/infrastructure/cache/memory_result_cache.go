package cache

import (
	"context"
	"sync"
	"time"
)

// Constants for in-memory result cache configuration
const (
	defaultResultTTL      = 15 * time.Minute
	defaultMaxEntries     = 1024
	resultCleanupInterval = 1 * time.Minute
)

// resultEntry wraps a cached payload with its expiration time
type resultEntry struct {
	payload   []byte
	expiresAt time.Time
}

// InMemoryResultCache implements ResultCache using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryResultCache struct {
	mu         sync.RWMutex
	entries    map[string]resultEntry
	defaultTTL time.Duration
	maxEntries int
	stopChan   chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// NewInMemoryResultCache creates a new in-memory result cache
// It starts a background goroutine to clean up expired entries
func NewInMemoryResultCache(defaultTTL time.Duration, maxEntries int) *InMemoryResultCache {
	if defaultTTL <= 0 {
		defaultTTL = defaultResultTTL
	}
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}

	cache := &InMemoryResultCache{
		entries:    make(map[string]resultEntry),
		defaultTTL: defaultTTL,
		maxEntries: maxEntries,
		stopChan:   make(chan struct{}),
	}

	// Start cleanup goroutine
	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Get retrieves a cached payload by key
func (c *InMemoryResultCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists {
		return nil, false, nil
	}

	// Check if entry has expired
	if time.Now().After(e.expiresAt) {
		return nil, false, nil // Expired, treat as miss
	}

	return e.payload, true, nil
}

// Set stores a payload with a TTL, evicting the entry closest to expiry
// when the cache is full
func (c *InMemoryResultCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}

	c.entries[key] = resultEntry{
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

// evictLocked frees one slot. Expired entries go first; otherwise the entry
// closest to expiry is dropped. Caller must hold the write lock.
func (c *InMemoryResultCache) evictLocked() {
	now := time.Now()
	removed := false
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed = true
		}
	}
	if removed {
		return
	}

	var oldestKey string
	var oldestExpiry time.Time
	for key, e := range c.entries {
		if oldestKey == "" || e.expiresAt.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = e.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// EntryCount returns the number of live entries
func (c *InMemoryResultCache) EntryCount(ctx context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	var count int64
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			count++
		}
	}
	return count, nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (c *InMemoryResultCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryResultCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(resultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryResultCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Ensure InMemoryResultCache implements ResultCache
var _ ResultCache = (*InMemoryResultCache)(nil)
