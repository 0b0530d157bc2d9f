package dossier

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores generated dossiers in two tiers: L1 in memory, L2 in Redis
// when a URL is configured and reachable.
type Cache struct {
	l1  sync.Map // key -> *cacheEntry
	rdb *redis.Client
	ttl time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	data      string
	expiresAt time.Time
}

// NewCache builds a cache. An empty or unreachable redisURL leaves L2 off.
func NewCache(ctx context.Context, redisURL string, ttl time.Duration) *Cache {
	c := &Cache{ttl: ttl}
	if redisURL == "" {
		return c
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("[CACHE] Invalid redis URL, L2 disabled: %v", err)
		return c
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("[CACHE] Redis unreachable, L2 disabled: %v", err)
		rdb.Close()
		return c
	}
	c.rdb = rdb
	log.Printf("[CACHE] L2 redis connected at %s", opts.Addr)
	return c
}

// CacheKey builds a deterministic key from parts
func CacheKey(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("crc:%x", hash[:12])
}

// Get tries L1, then L2. An L2 hit repopulates L1.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	if val, ok := c.l1.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			c.hits.Add(1)
			return entry.data, true
		}
		c.l1.Delete(key)
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Result()
		if err == nil {
			c.hits.Add(1)
			c.l1.Store(key, &cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)})
			return data, true
		}
		if err != redis.Nil {
			log.Printf("[CACHE] L2 get failed: %v", err)
		}
	}

	c.misses.Add(1)
	return "", false
}

// Set stores value in both tiers
func (c *Cache) Set(ctx context.Context, key, value string) {
	if c == nil {
		return
	}
	c.l1.Store(key, &cacheEntry{data: value, expiresAt: time.Now().Add(c.ttl)})
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
			log.Printf("[CACHE] L2 set failed: %v", err)
		}
	}
}

// Stats returns hit and miss counters
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
