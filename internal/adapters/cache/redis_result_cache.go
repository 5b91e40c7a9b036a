package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleet-dispatch-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
)

// RedisResultCache is a Redis-backed cache for serialized optimization results.
type RedisResultCache struct {
	Client *redis.Client
}

func NewRedisResultCache(client *redis.Client) *RedisResultCache {
	return &RedisResultCache{Client: client}
}

// Fetch a cached payload. A missing key is not an error.
func (c *RedisResultCache) Get(ctx context.Context, key string) (_ []byte, _ bool, err error) {
	defer obs.Time(ctx, "result.cache.Get")(&err)

	if c.Client == nil {
		return nil, false, errors.New("result cache: redis client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get result cache: key must not be empty")
	}

	payload, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get result cache key=%q: %w", key, err)
	}

	return payload, true, nil
}

// Store a payload for ttl. A non-positive ttl stores it without expiry.
func (c *RedisResultCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) (err error) {
	defer obs.Time(ctx, "result.cache.Set")(&err)

	if c.Client == nil {
		return errors.New("result cache: redis client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("set result cache: key must not be empty")
	}
	if ttl < 0 {
		ttl = 0
	}

	if err := c.Client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("set result cache key=%q: %w", key, err)
	}

	return nil
}
