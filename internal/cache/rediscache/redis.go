// Package rediscache backs the cache port with Redis.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booksapi/internal/cache"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ cache.Cache = (*Cache)(nil)

type Config struct {
	Addr     string
	DB       int
	Password string
	// TTL of zero keeps entries until they are invalidated.
	TTL time.Duration
}

type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	return NewWithClient(rdb, cfg.TTL, logger)
}

func NewWithClient(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, logger: logger.Named("redis")}
}

func unavailable(op, key string, err error) error {
	return fmt.Errorf("%w: %s %q: %v", cache.ErrUnavailable, op, key, err)
}

func (c *Cache) GetString(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("GET miss", zap.String("key", key))
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("GET", key, err)
	}
	c.logger.Debug("GET hit", zap.String("key", key), zap.Int("bytes", len(v)))
	return v, true, nil
}

func (c *Cache) SetString(ctx context.Context, key, value string) error {
	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return unavailable("SET", key, err)
	}
	c.logger.Debug("SET ok", zap.String("key", key), zap.Duration("ttl", c.ttl))
	return nil
}

func (c *Cache) Remove(ctx context.Context, key string) error {
	n, err := c.rdb.Del(ctx, key).Result()
	if err != nil {
		return unavailable("DEL", key, err)
	}
	c.logger.Debug("DEL ok", zap.String("key", key), zap.Int64("deleted", n))
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: PING: %v", cache.ErrUnavailable, err)
	}
	return nil
}

func (c *Cache) Close() error {
	if c.rdb == nil {
		return nil
	}
	if err := c.rdb.Close(); err != nil {
		c.logger.Warn("error while closing", zap.Error(err))
		return err
	}
	c.logger.Info("closed")
	return nil
}
