package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	catalog "github.com/soundrift/soundrift/internal/modules/catalog/domain"
	"github.com/soundrift/soundrift/internal/modules/discovery/domain"
)

const trendingTTL = 10 * time.Minute

// TrendingCache keeps anonymous trending responses in Redis. A nil client
// disables caching entirely; errors degrade to a miss rather than failing
// the request.
type TrendingCache struct {
	client *redis.Client
}

func NewTrendingCache(client *redis.Client) *TrendingCache {
	return &TrendingCache{client: client}
}

func trendingKey(window domain.TrendingWindow, limit int) string {
	return fmt.Sprintf("trending:%s:%d", window, limit)
}

func (c *TrendingCache) Get(ctx context.Context, window domain.TrendingWindow, limit int) ([]catalog.Song, bool) {
	if c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, trendingKey(window, limit)).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("trending cache read failed", "error", err)
		}
		return nil, false
	}
	var songs []catalog.Song
	if err := json.Unmarshal([]byte(payload), &songs); err != nil {
		return nil, false
	}
	return songs, true
}

func (c *TrendingCache) Set(ctx context.Context, window domain.TrendingWindow, limit int, songs []catalog.Song) {
	if c.client == nil {
		return
	}
	payload, err := json.Marshal(songs)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, trendingKey(window, limit), payload, trendingTTL).Err(); err != nil {
		slog.Warn("trending cache write failed", "error", err)
	}
}

// InvalidateTrending drops every cached trending key. Called by the catalog
// after song mutations.
func (c *TrendingCache) InvalidateTrending(ctx context.Context) {
	if c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, "trending:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			slog.Warn("trending cache invalidation failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		slog.Warn("trending cache scan failed", "error", err)
	}
}
