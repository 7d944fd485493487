// Package cache provides the read cache used by the calendar projection.
// Two backends exist: an in-process memory cache for single-node deployments
// and a Redis cache when several portal instances share state.
package cache

import (
	"context"
	"time"
)

type Cacher interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	// DeletePrefix drops every key with the given prefix, used to invalidate
	// all cached calendar ranges after an event mutation.
	DeletePrefix(ctx context.Context, prefix string)
	Close() error
}

type Config struct {
	Type       string // "memory" or "redis"
	RedisURL   string
	Prefix     string
	DefaultTTL time.Duration
}

func New(cfg Config) (Cacher, error) {
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if cfg.Type == "redis" && cfg.RedisURL != "" {
		return NewRedisCache(RedisOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.Prefix,
			DefaultTTL: ttl,
		})
	}
	return NewMemoryCache(ttl), nil
}
