package dossier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("dossier", "hello")
	assert.Equal(t, a, CacheKey("dossier", "hello"))
	assert.NotEqual(t, a, CacheKey("dossier", "hello!"))
	assert.Len(t, a, len("crc:")+24)
}

func TestCache_L1(t *testing.T) {
	ctx := context.Background()
	c := NewCache(ctx, "", time.Minute)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	c.Set(ctx, "k", "v")
	v, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.NoError(t, c.Close())
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewCache(ctx, "", time.Millisecond)
	c.Set(ctx, "k", "v")
	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestCache_BadRedisDisablesL2(t *testing.T) {
	ctx := context.Background()
	c := NewCache(ctx, "not a url", time.Minute)
	assert.Nil(t, c.rdb)

	c.Set(ctx, "k", "v")
	v, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestCache_NilIsSafe(t *testing.T) {
	var c *Cache
	c.Set(context.Background(), "k", "v")
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.NoError(t, c.Close())
}
