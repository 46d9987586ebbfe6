// Package cache keeps the most recent live-scrape result set in Redis so a
// store outage degrades to slightly stale data instead of a rescrape.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"scholar-fetch/internal/scholar/model"
)

// cacheKey carries a schema version; bump the suffix whenever the extracted
// shape changes so stale-shape payloads read as a miss rather than as data.
const (
	cacheKey = "scholarships:v2"
	cacheTTL = 24 * time.Hour
)

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

type PageCache struct {
	Log *zap.Logger
	rdb *redis.Client
}

func NewPageCache(log *zap.Logger, rdb *redis.Client) *PageCache {
	return &PageCache{Log: log, rdb: rdb}
}

// Get returns the cached result set, or ok=false on a miss, an expired
// entry, or an undecodable payload. Cache trouble is never an error to the
// caller; it just pushes the fallback chain one level down.
func (c *PageCache) Get(ctx context.Context) ([]model.Scholarship, bool) {
	payload, err := c.rdb.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.Log.Warn("cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var items []model.Scholarship
	if err := json.Unmarshal(payload, &items); err != nil {
		c.Log.Warn("cache payload undecodable, treating as miss", zap.Error(err))
		return nil, false
	}
	if len(items) == 0 {
		return nil, false
	}
	return items, true
}

// Set stores the result set under the versioned key with the fixed TTL.
func (c *PageCache) Set(ctx context.Context, items []model.Scholarship) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cache payload: %w", err)
	}
	if err := c.rdb.Set(ctx, cacheKey, payload, cacheTTL).Err(); err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}
