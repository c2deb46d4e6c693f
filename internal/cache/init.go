package cache

import (
	"github.com/devicedesk/devicedesk/internal/config"
	"github.com/devicedesk/devicedesk/internal/logger"
	redisClient "github.com/devicedesk/devicedesk/internal/redis"
)

type CacheType string

const (
	CacheTypeInMemory CacheType = "inmemory"
	CacheTypeRedis    CacheType = "redis"
)

// New builds the cache selected by config. It falls back to the in-memory
// cache when Redis is selected but cannot be reached.
func New(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Infow("initializing cache", "type", cfg.Cache.Type, "enabled", cfg.Cache.Enabled)

	if CacheType(cfg.Cache.Type) == CacheTypeRedis {
		client, err := redisClient.NewClient(redisClient.ConfigFromApp(cfg.Redis), log)
		if err == nil {
			return NewRedisCache(client, log, cfg.Cache.Enabled)
		}
		log.Errorw("redis unavailable, using in-memory cache", "error", err)
	}

	return NewInMemoryCache(cfg.Cache.Enabled)
}
