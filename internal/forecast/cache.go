package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/NoID1290/WeatherWatch/internal/logger"
	"github.com/NoID1290/WeatherWatch/internal/models"
)

// CachedClient decorates a Querier with a Redis cache. Cache failures
// degrade to a direct fetch: Redis being down must never fail a query.
type CachedClient struct {
	inner Querier
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisClient builds a Redis client from a URL and verifies connectivity
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// NewCachedClient wraps inner with a Redis cache using the given TTL
func NewCachedClient(inner Querier, client *redis.Client, ttl time.Duration) *CachedClient {
	return &CachedClient{inner: inner, redis: client, ttl: ttl}
}

func cacheKey(locationID string) string {
	return "forecast:" + locationID
}

// Query returns the cached record when fresh, otherwise fetches and caches
func (c *CachedClient) Query(ctx context.Context, locationID string) (*models.ForecastRecord, error) {
	if cached, err := c.redis.Get(ctx, cacheKey(locationID)).Bytes(); err == nil {
		var rec models.ForecastRecord
		if err := json.Unmarshal(cached, &rec); err == nil {
			return &rec, nil
		}
		// Corrupt cache entry: fall through to a fresh fetch
	} else if err != redis.Nil {
		logger.Warn("Forecast cache read failed", "location", locationID, "error", err)
	}

	rec, err := c.inner.Query(ctx, locationID)
	if err != nil || rec == nil {
		return rec, err
	}

	if data, err := json.Marshal(rec); err == nil {
		if err := c.redis.Set(ctx, cacheKey(locationID), data, c.ttl).Err(); err != nil {
			logger.Warn("Forecast cache write failed", "location", locationID, "error", err)
		}
	}

	return rec, nil
}
