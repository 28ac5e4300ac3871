package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"price-scout/models"
	"price-scout/utils"
)

const cacheKeyPrefix = "pricescout:cache:"

// RedisCache is a QueryCache backed by Redis, for setups where several
// processes answer searches against a shared cache. Entries are stored
// without TTL: a key lives until the next non-empty write replaces it.
type RedisCache struct {
	rdb    *redis.Client
	logger *utils.Logger
}

// NewRedisCache parses redisURL, verifies connectivity, and returns the cache.
func NewRedisCache(ctx context.Context, redisURL string, logger *utils.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisCache{rdb: client, logger: logger}, nil
}

func (c *RedisCache) Get(query string) ([]*models.Listing, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	raw, err := c.rdb.Get(ctx, cacheKeyPrefix+NormalizeQuery(query)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("[cache] Redis read failed, treating as miss: %v", err)
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("[cache] Corrupt cache entry, treating as miss: %v", err)
		return nil, false
	}
	return entry.Results, true
}

func (c *RedisCache) Put(query string, results []*models.Listing) error {
	key := NormalizeQuery(query)
	raw, err := json.Marshal(models.CacheEntry{
		Query:    key,
		Results:  results,
		StoredAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("redis: marshal entry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return c.rdb.Set(ctx, cacheKeyPrefix+key, raw, 0).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
