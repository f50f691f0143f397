// internal/assignment/cache.go
package assignment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"territory-workers/internal/common/logger"
	"territory-workers/internal/geo"
)

// CachedCoordinate is the value stored per resolved address.
type CachedCoordinate struct {
	Point  geo.GeoPoint `json:"point"`
	Source string       `json:"source"`
}

// CoordinateCache caches geocoding results in Redis keyed by the normalized
// address query, so repeated lookups for the same address skip the external
// service. Cache failures are logged and treated as misses.
type CoordinateCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCoordinateCache(client *redis.Client, ttl time.Duration, log logger.Logger) *CoordinateCache {
	if ttl == 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &CoordinateCache{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "coordinate-cache"}),
	}
}

func coordinateKey(addr geo.Address) string {
	return fmt.Sprintf("geo:coord:%s", geo.Normalize(addr.QueryString()))
}

// Get returns the cached coordinate for addr, or nil on miss or cache error.
func (c *CoordinateCache) Get(ctx context.Context, addr geo.Address) *CachedCoordinate {
	raw, err := c.client.Get(ctx, coordinateKey(addr)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		c.logger.Warn("coordinate cache read failed", map[string]interface{}{"error": err.Error()})
		return nil
	}

	var cached CachedCoordinate
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		c.logger.Warn("coordinate cache decode failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return &cached
}

// Set stores a resolved coordinate. Errors are logged, never propagated.
func (c *CoordinateCache) Set(ctx context.Context, addr geo.Address, point geo.GeoPoint, source string) {
	raw, err := json.Marshal(CachedCoordinate{Point: point, Source: source})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, coordinateKey(addr), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("coordinate cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
