// Package cache is the shared response cache in front of upstream boundaries.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bilgisen/cyberpress/internal/logger"
)

// Cache stores raw values with a time to live.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Remember returns the cached value of key or, on a miss, the result of fn,
// which is then cached for ttl. Cache failures never fail the call; a nil
// cache or a non-positive ttl disables caching.
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if c == nil || ttl <= 0 {
		return fn(ctx)
	}

	log := logger.Component("cache")

	raw, ok, err := c.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	}
	if ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		log.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	}

	value, err := fn(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Value is not cacheable")
		return value, nil
	}
	if err := c.Set(ctx, key, encoded, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
	return value, nil
}
