// Package cache stores calculation results in Redis keyed by task type,
// policy version and a digest of the scenario.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "mortgage:result:"

// ResultCache is safe to use as a nil pointer; every lookup then misses and
// every store is a no-op.
type ResultCache struct {
	client *redis.Client
	prefix string
}

func NewResultCache(client *redis.Client, prefix string) *ResultCache {
	if client == nil {
		return nil
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &ResultCache{client: client, prefix: prefix}
}

// Key derives a stable key for input under the given policy version. Two
// inputs that marshal to the same JSON share a key.
func (c *ResultCache) Key(taskType, policyVersion string, input interface{}) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("marshal cache key input: %w", err)
	}
	sum := sha256.Sum256(data)
	prefix := DefaultPrefix
	if c != nil {
		prefix = c.prefix
	}
	return prefix + taskType + ":" + policyVersion + ":" + hex.EncodeToString(sum[:]), nil
}

// Get decodes the cached value into dst. A missing key is a miss, not an
// error.
func (c *ResultCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(val), dst); err != nil {
		return false, fmt.Errorf("decode cached value %s: %w", key, err)
	}
	return true, nil
}

// Set stores value for ttl. A zero ttl disables the write.
func (c *ResultCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil || ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	if err := c.client.Set(ctx, key, string(data), ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
