package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/repository"
)

const filterOptionsKey = "lookup:filter_options"

// LookupCache serves filter options from Redis and falls back to the wrapped
// repository on a miss. Redis failures are logged and bypassed.
type LookupCache struct {
	client *redis.Client
	next   repository.LookupRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewLookupCache wraps next with a Redis cache whose entries live for ttl.
func NewLookupCache(client *redis.Client, next repository.LookupRepository, ttl time.Duration, logger *slog.Logger) *LookupCache {
	return &LookupCache{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger,
	}
}

// FilterOptions returns cached options, loading and caching them on a miss.
func (c *LookupCache) FilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	data, err := c.client.Get(ctx, filterOptionsKey).Bytes()
	switch {
	case err == nil:
		var opts domain.FilterOptions
		if err := json.Unmarshal(data, &opts); err == nil {
			return &opts, nil
		}
		c.logger.WarnContext(ctx, "discarding corrupt cached filter options")
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "lookup cache read failed", slog.String("error", err.Error()))
	}

	opts, err := c.next.FilterOptions(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(opts); err == nil {
		if err := c.client.Set(ctx, filterOptionsKey, data, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "lookup cache write failed", slog.String("error", err.Error()))
		}
	}
	return opts, nil
}

// Invalidate drops the cached options.
func (c *LookupCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, filterOptionsKey).Err()
}
