package catalog

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/tip-favorites/internal/favorite/domain"
	"github.com/tair/tip-favorites/pkg/logger"
)

const categoryKeyPrefix = "category:name:"

// NameCache is a string cache with batched reads and writes. GetMany
// returns one value per key, nil for misses.
type NameCache interface {
	GetMany(ctx context.Context, keys []string) ([]interface{}, error)
	SetMany(ctx context.Context, values map[string]string, ttl time.Duration) error
}

// RedisNameCache implements NameCache with MGET and a pipelined SET
type RedisNameCache struct {
	client *redis.Client
}

var _ NameCache = (*RedisNameCache)(nil)

// NewRedisNameCache creates a Redis backed name cache
func NewRedisNameCache(client *redis.Client) *RedisNameCache {
	return &RedisNameCache{client: client}
}

func (c *RedisNameCache) GetMany(ctx context.Context, keys []string) ([]interface{}, error) {
	return c.client.MGet(ctx, keys...).Result()
}

func (c *RedisNameCache) SetMany(ctx context.Context, values map[string]string, ttl time.Duration) error {
	pipe := c.client.Pipeline()
	for key, value := range values {
		pipe.Set(ctx, key, value, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// CachedCategoryReader serves category names from a cache and loads misses
// from the next reader in a single call. Cache failures degrade to the
// next reader.
type CachedCategoryReader struct {
	cache NameCache
	next  domain.CategoryReader
	ttl   time.Duration
}

var _ domain.CategoryReader = (*CachedCategoryReader)(nil)

// NewCachedCategoryReader creates a caching category reader. A nil cache
// disables caching.
func NewCachedCategoryReader(cache NameCache, next domain.CategoryReader, ttl time.Duration) *CachedCategoryReader {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedCategoryReader{cache: cache, next: next, ttl: ttl}
}

func categoryKey(id string) string {
	return categoryKeyPrefix + id
}

// NamesByIDs resolves category names through the cache
func (r *CachedCategoryReader) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if r.cache == nil || len(ids) == 0 {
		return r.next.NamesByIDs(ctx, ids)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = categoryKey(id)
	}

	values, err := r.cache.GetMany(ctx, keys)
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("Category cache unavailable")
		return r.next.NamesByIDs(ctx, ids)
	}

	names, misses := splitHits(ids, values)
	if len(misses) == 0 {
		return names, nil
	}

	loaded, err := r.next.NamesByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]string, len(loaded))
	for id, name := range loaded {
		names[id] = name
		entries[categoryKey(id)] = name
	}
	if len(entries) > 0 {
		if err := r.cache.SetMany(ctx, entries, r.ttl); err != nil {
			logger.Warn(ctx).Err(err).Int("count", len(entries)).Msg("Failed to cache category names")
		}
	}

	logger.Debug(ctx).
		Int("hits", len(ids)-len(misses)).
		Int("misses", len(misses)).
		Msg("Category names resolved")
	return names, nil
}

// splitHits separates cached values into resolved names and missing ids
func splitHits(ids []string, values []interface{}) (map[string]string, []string) {
	names := make(map[string]string, len(ids))
	var misses []string
	for i, id := range ids {
		if i < len(values) {
			if name, ok := values[i].(string); ok {
				names[id] = name
				continue
			}
		}
		misses = append(misses, id)
	}
	return names, misses
}
