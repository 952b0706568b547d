package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// redisCache implements Cache on a Redis client.
type redisCache struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedis creates a Redis-backed cache and verifies connectivity.
func NewRedis(ctx context.Context, addr string, db int, logger zerolog.Logger) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().Str("addr", addr).Int("db", db).Msg("redis cache connected")

	return &redisCache{
		client: client,
		logger: logger.With().Str("component", "cache").Logger(),
	}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		c.logger.Error().Err(err).Str("key", key).Msg("cache get failed")
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return value, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("cache set failed")
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate removes every key matching the glob pattern using SCAN so large
// keyspaces are not blocked.
func (c *redisCache) Invalidate(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Error().Err(err).Str("pattern", pattern).Msg("cache scan failed")
		return fmt.Errorf("cache invalidate scan: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error().Err(err).Str("pattern", pattern).Msg("cache delete failed")
		return fmt.Errorf("cache invalidate delete: %w", err)
	}

	c.logger.Debug().Str("pattern", pattern).Int("keys", len(keys)).Msg("cache invalidated")
	return nil
}
