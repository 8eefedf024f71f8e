package availability

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "availability:"

// RedisCache is a Cache backed by Redis, for multi-node deployments that
// share availability lookups. Redis errors degrade to cache misses.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache creates a cache against the Redis server at addr.
func NewRedisCache(addr string, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		logger: logger,
	}
}

// Get returns the cached status for key, if present.
func (c *RedisCache) Get(ctx context.Context, key string) (Status, bool) {
	val, err := c.client.Get(ctx, redisKeyPrefix+cacheKey(key)).Result()
	if err == redis.Nil {
		return StatusUnknown, false
	}
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("redis get failed", zap.Error(err))
		}
		return StatusUnknown, false
	}
	switch Status(val) {
	case StatusAvailable, StatusUnavailable, StatusUnknown:
		return Status(val), true
	default:
		return StatusUnknown, false
	}
}

// Put stores status for key with the given ttl.
func (c *RedisCache) Put(ctx context.Context, key string, status Status, ttl time.Duration) {
	if err := c.client.Set(ctx, redisKeyPrefix+cacheKey(key), string(status), ttl).Err(); err != nil {
		if c.logger != nil {
			c.logger.Warn("redis set failed", zap.Error(err))
		}
	}
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
