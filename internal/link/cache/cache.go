// Package cache provides the Redis read-through cache for the visit hot path.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "link:short:"

// Cache maps short links to their full URLs in Redis. A nil *Cache is a valid
// no-op cache, so callers never have to branch on whether caching is enabled.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a Cache over the given Redis client.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "link_cache"),
	}
}

// GetFullLink looks up the full URL for a short link.
// Returns the URL and whether it was found. Redis failures read as misses.
func (c *Cache) GetFullLink(ctx context.Context, shortLink string) (string, bool) {
	if c == nil {
		return "", false
	}
	fullLink, err := c.client.Get(ctx, keyPrefix+shortLink).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "Cache lookup failed", "short_link", shortLink, "error", err)
		}
		return "", false
	}
	return fullLink, true
}

// SetFullLink stores the short link to full URL mapping.
func (c *Cache) SetFullLink(ctx context.Context, shortLink, fullLink string) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+shortLink, fullLink, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Cache store failed", "short_link", shortLink, "error", err)
	}
}

// Invalidate drops the mappings of the given short links. Called whenever a
// link is updated or deleted so the visit path cannot redirect to stale URLs.
func (c *Cache) Invalidate(ctx context.Context, shortLinks ...string) {
	if c == nil || len(shortLinks) == 0 {
		return
	}
	keys := make([]string, len(shortLinks))
	for i, shortLink := range shortLinks {
		keys[i] = keyPrefix + shortLink
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "Cache invalidation failed", "keys", len(keys), "error", err)
	}
}
