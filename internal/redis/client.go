package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/devicedesk/devicedesk/internal/config"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	UseTLS   bool
	PoolSize int
	Timeout  time.Duration
}

func ConfigFromApp(c config.RedisConfig) Config {
	return Config{
		Host:     c.Host,
		Port:     c.Port,
		Password: c.Password,
		DB:       c.DB,
		UseTLS:   c.UseTLS,
		PoolSize: c.PoolSize,
		Timeout:  c.Timeout,
	}
}

// Client wraps a single-node go-redis client.
type Client struct {
	rdb *redis.Client
	log *logger.Logger
}

// NewClient connects and pings Redis before returning.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		PoolSize:     cfg.PoolSize,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	log.Infow("connected to redis", "addr", opts.Addr, "db", cfg.DB)
	return &Client{rdb: rdb, log: log}, nil
}

func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
