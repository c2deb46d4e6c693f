package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/devicedesk/devicedesk/internal/logger"
	redisClient "github.com/devicedesk/devicedesk/internal/redis"
	"github.com/redis/go-redis/v9"
)

const (
	// DeleteRetryDelay is the pause before a failed delete is retried once.
	DeleteRetryDelay = 100 * time.Millisecond

	// ScanCount is the SCAN page size used by DeleteByPrefix.
	ScanCount = 100

	deleteBatchSize = 1000
)

// RedisCache implements Cache on a shared Redis instance so every API
// replica sees the same dashboard snapshot.
type RedisCache struct {
	client  *redis.Client
	log     *logger.Logger
	enabled bool
}

func NewRedisCache(client *redisClient.Client, log *logger.Logger, enabled bool) *RedisCache {
	return &RedisCache{
		client:  client.GetClient(),
		log:     log,
		enabled: enabled,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, bool) {
	if !c.enabled {
		return nil, false
	}

	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Errorw("redis GET failed", "key", key, "error", err)
		}
		return nil, false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if !c.enabled {
		return
	}
	if expiration == 0 {
		expiration = ExpiryDefaultRedis
	}

	var strValue string
	switch v := value.(type) {
	case string:
		strValue = v
	default:
		b, err := json.Marshal(value)
		if err != nil {
			c.log.Errorw("failed to marshal cache value", "key", key, "error", err)
			return
		}
		strValue = string(b)
	}

	if err := c.client.Set(ctx, key, strValue, expiration).Err(); err != nil {
		c.log.Errorw("redis SET failed", "key", key, "error", err)
	}
}

// Delete removes a key, retrying once on a fresh context.
func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warnw("redis DEL failed, retrying", "key", key, "error", err)

		retryCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		time.Sleep(DeleteRetryDelay)

		if err := c.client.Del(retryCtx, key).Err(); err != nil {
			c.log.Errorw("redis DEL retry failed", "key", key, "error", err)
		}
	}
}

func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) {
	iter := c.client.Scan(ctx, 0, prefix+"*", ScanCount).Iterator()

	var batch []string
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			c.log.Errorw("redis DEL batch failed", "prefix", prefix, "error", err)
		}
		batch = batch[:0]
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= deleteBatchSize {
			flush()
		}
	}
	flush()

	if err := iter.Err(); err != nil {
		c.log.Errorw("redis SCAN failed", "prefix", prefix, "error", err)
	}
}

func (c *RedisCache) Flush(ctx context.Context) {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		c.log.Errorw("redis FLUSHDB failed", "error", err)
	}
}
