// Package cache keeps alias lookups in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeebo/errs"

	"github.com/darkodi/url-alias/internal/config"
	"github.com/darkodi/url-alias/internal/model"
)

// Error is a cache error
var Error = errs.Class("cache")

// RedisCache caches lookUp results keyed by path and language.
//
// Keys embed a generation number; Invalidate bumps the generation so every
// earlier entry becomes unreachable and expires through its TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, Error.New("ping %s: %v", cfg.Addr, err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "urlalias"
	}
	return &RedisCache{client: client, ttl: cfg.TTL, prefix: prefix}, nil
}

// Key returns the cache key for a lookUp of path in languageCode under the
// current generation. Take the key before reading the index: a Set under a
// key taken before an Invalidate can never be read afterwards.
func (c *RedisCache) Key(ctx context.Context, path, languageCode string) (string, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", Error.Wrap(err)
	}
	if languageCode == "" {
		languageCode = "*"
	}
	return fmt.Sprintf("%s:lookup:%d:%s:%s", c.prefix, gen, languageCode, path), nil
}

// Get returns the alias cached under key, or nil on a miss
func (c *RedisCache) Get(ctx context.Context, key string) (*model.URLAlias, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}

	var a model.URLAlias
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, Error.New("decode %s: %v", key, err)
	}
	return &a, nil
}

// Set caches alias under key
func (c *RedisCache) Set(ctx context.Context, key string, alias model.URLAlias) error {
	raw, err := json.Marshal(alias)
	if err != nil {
		return Error.Wrap(err)
	}
	return Error.Wrap(c.client.Set(ctx, key, raw, c.ttl).Err())
}

// Invalidate drops every cached lookup
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return Error.Wrap(c.client.Incr(ctx, c.generationKey()).Err())
}

// Close closes the client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) generationKey() string {
	return c.prefix + ":generation"
}
