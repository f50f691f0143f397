// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"territory-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient holds the connection backing the coordinate cache. Timeouts are
// deliberately short: a slow cache must not slow down assignment.
type RedisClient struct {
	Client *redis.Client
}

func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &RedisClient{Client: rdb}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// GetClient returns the underlying client for the coordinate cache.
func (c *RedisClient) GetClient() *redis.Client {
	return c.Client
}
