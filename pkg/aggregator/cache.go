package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/raildeck/raildeck/pkg/raildata"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// resultCache memoises aggregation results as JSON strings for a short
// TTL. Entries are never invalidated early.
type resultCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string)
}

type redisResultCache struct {
	cache *cache.Cache[string]
}

func newRedisResultCache(client *redis.Client, ttl time.Duration) *redisResultCache {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(ttl))

	return &redisResultCache{cache: cache.New[string](redisStore)}
}

func (c *redisResultCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.cache.Get(ctx, key)
	if err != nil || value == "" {
		return "", false
	}

	return value, true
}

func (c *redisResultCache) Set(ctx context.Context, key string, value string) {
	if err := c.cache.Set(ctx, key, value); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache aggregation result")
	}
}

type memoryResultCache struct {
	ttl time.Duration

	mutex   sync.RWMutex
	entries map[string]raildata.CacheEntry[string]
}

func newMemoryResultCache(ttl time.Duration) *memoryResultCache {
	return &memoryResultCache{
		ttl: ttl,

		entries: map[string]raildata.CacheEntry[string]{},
	}
}

func (c *memoryResultCache) Get(ctx context.Context, key string) (string, bool) {
	c.mutex.RLock()
	entry, ok := c.entries[key]
	c.mutex.RUnlock()

	if !ok || entry.Expired() {
		return "", false
	}

	return entry.Value, true
}

func (c *memoryResultCache) Set(ctx context.Context, key string, value string) {
	c.mutex.Lock()
	c.entries[key] = raildata.NewCacheEntry(value, c.ttl)
	c.mutex.Unlock()
}
