// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"

	"mortgage-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient owns the connection pool behind the result cache.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds a pooled client. It does not dial; call Ping to check
// reachability.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	opts := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = config.GetDuration(cfg.DialTimeout)
	}
	if cfg.IOTimeout > 0 {
		opts.ReadTimeout = config.GetDuration(cfg.IOTimeout)
		opts.WriteTimeout = opts.ReadTimeout
	}
	if cfg.PoolSize > 1 {
		opts.MinIdleConns = cfg.PoolSize / 2
	}

	return &RedisClient{Client: redis.NewClient(opts)}, nil
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

// GetClient returns the underlying *redis.Client.
func (c *RedisClient) GetClient() *redis.Client {
	return c.Client
}
