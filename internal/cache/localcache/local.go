// Package localcache backs the cache port with an in-process sturdyc client.
// It suits single-node deployments and tests; entries are not shared across
// processes.
package localcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booksapi/internal/cache"

	"github.com/viccon/sturdyc"
)

var _ cache.Cache = (*Cache)(nil)

type Config struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
}

func DefaultConfig() Config {
	return Config{
		Capacity:           1000,
		NumShards:          4,
		TTL:                24 * time.Hour,
		EvictionPercentage: 10,
	}
}

type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("localcache: invalid %s: %s", e.Field, e.Reason)
}

func (c Config) Validate() error {
	var errs []error
	if c.Capacity <= 0 {
		errs = append(errs, &ConfigError{Field: "Capacity", Reason: "must be greater than 0"})
	}
	if c.NumShards <= 0 {
		errs = append(errs, &ConfigError{Field: "NumShards", Reason: "must be greater than 0"})
	}
	if c.TTL <= 0 {
		errs = append(errs, &ConfigError{Field: "TTL", Reason: "must be greater than 0"})
	}
	if c.EvictionPercentage < 0 || c.EvictionPercentage > 100 {
		errs = append(errs, &ConfigError{Field: "EvictionPercentage", Reason: "must be between 0 and 100"})
	}
	return errors.Join(errs...)
}

type Cache struct {
	client *sturdyc.Client[string]
}

func New(cfg Config) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Cache{
		client: sturdyc.New[string](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage),
	}, nil
}

func (c *Cache) GetString(ctx context.Context, key string) (string, bool, error) {
	v, ok := c.client.Get(key)
	return v, ok, nil
}

func (c *Cache) SetString(ctx context.Context, key, value string) error {
	c.client.Set(key, value)
	return nil
}

func (c *Cache) Remove(ctx context.Context, key string) error {
	c.client.Delete(key)
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return nil
}

func (c *Cache) Close() error {
	return nil
}
