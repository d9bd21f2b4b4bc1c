package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryResultCache_Get(t *testing.T) {
	cache := NewInMemoryResultCache(1*time.Hour, 16)
	defer cache.Close()

	ctx := context.Background()

	t.Run("returns miss for unknown key", func(t *testing.T) {
		payload, found, err := cache.Get(ctx, "unknown-key")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, payload)
	})

	t.Run("returns stored payload", func(t *testing.T) {
		err := cache.Set(ctx, "key-1", []byte(`{"summary":{}}`), 1*time.Hour)
		require.NoError(t, err)

		payload, found, err := cache.Get(ctx, "key-1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte(`{"summary":{}}`), payload)
	})

	t.Run("treats expired entry as miss", func(t *testing.T) {
		err := cache.Set(ctx, "key-2", []byte("payload"), 10*time.Millisecond)
		require.NoError(t, err)

		// Wait for expiration
		time.Sleep(20 * time.Millisecond)

		_, found, err := cache.Get(ctx, "key-2")
		require.NoError(t, err)
		assert.False(t, found, "expired entry should be a miss")
	})
}

func TestInMemoryResultCache_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites existing key", func(t *testing.T) {
		cache := NewInMemoryResultCache(1*time.Hour, 16)
		defer cache.Close()

		require.NoError(t, cache.Set(ctx, "key", []byte("old"), 1*time.Hour))
		require.NoError(t, cache.Set(ctx, "key", []byte("new"), 1*time.Hour))

		payload, found, err := cache.Get(ctx, "key")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("new"), payload)
	})

	t.Run("uses default TTL when zero", func(t *testing.T) {
		cache := NewInMemoryResultCache(1*time.Hour, 16)
		defer cache.Close()

		require.NoError(t, cache.Set(ctx, "key", []byte("payload"), 0))

		_, found, err := cache.Get(ctx, "key")
		require.NoError(t, err)
		assert.True(t, found, "entry with default TTL should still be live")
	})

	t.Run("evicts expired entries before live ones", func(t *testing.T) {
		cache := NewInMemoryResultCache(1*time.Hour, 2)
		defer cache.Close()

		require.NoError(t, cache.Set(ctx, "short-lived", []byte("a"), 10*time.Millisecond))
		require.NoError(t, cache.Set(ctx, "long-lived", []byte("b"), 1*time.Hour))

		time.Sleep(20 * time.Millisecond)

		// Cache is at capacity, expired entry should make room
		require.NoError(t, cache.Set(ctx, "newcomer", []byte("c"), 1*time.Hour))

		_, found, err := cache.Get(ctx, "long-lived")
		require.NoError(t, err)
		assert.True(t, found, "live entry should survive eviction")

		_, found, err = cache.Get(ctx, "newcomer")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("evicts entry closest to expiry when full", func(t *testing.T) {
		cache := NewInMemoryResultCache(1*time.Hour, 2)
		defer cache.Close()

		require.NoError(t, cache.Set(ctx, "expires-soon", []byte("a"), 1*time.Minute))
		require.NoError(t, cache.Set(ctx, "expires-late", []byte("b"), 1*time.Hour))
		require.NoError(t, cache.Set(ctx, "newcomer", []byte("c"), 1*time.Hour))

		_, found, err := cache.Get(ctx, "expires-soon")
		require.NoError(t, err)
		assert.False(t, found, "entry closest to expiry should be evicted")

		_, found, err = cache.Get(ctx, "expires-late")
		require.NoError(t, err)
		assert.True(t, found)

		count, err := cache.EntryCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func TestInMemoryResultCache_EntryCount(t *testing.T) {
	cache := NewInMemoryResultCache(1*time.Hour, 16)
	defer cache.Close()

	ctx := context.Background()

	count, err := cache.EntryCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	for i := 0; i < 3; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("key-%d", i), []byte("payload"), 1*time.Hour))
	}

	count, err = cache.EntryCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// Expired entries don't count even before the cleanup loop runs
	require.NoError(t, cache.Set(ctx, "ephemeral", []byte("payload"), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	count, err = cache.EntryCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestInMemoryResultCache_Close(t *testing.T) {
	cache := NewInMemoryResultCache(1*time.Hour, 16)

	require.NoError(t, cache.Close())

	// Safe to call multiple times
	require.NoError(t, cache.Close())
}
