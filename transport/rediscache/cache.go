// Package rediscache decorates a transport with a Redis-backed record
// cache. This is a cross-process optimization layered outside the core:
// proxies still fetch at most once each, the decorator just answers some
// of those fetches from Redis instead of the wrapped transport.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/restbound/restbound/relation"
)

// Cache wraps a transport with read-through Redis caching
type Cache struct {
	next   relation.Transport
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// Option configures a Cache
type Option func(*Cache)

// WithTTL sets the expiry of cached entries (default 5 minutes)
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithPrefix sets the key prefix (default "restbound:")
func WithPrefix(prefix string) Option {
	return func(c *Cache) { c.prefix = prefix }
}

// WithLogger sets the cache logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New wraps next with a cache backed by client
func New(next relation.Transport, client *redis.Client, opts ...Option) *Cache {
	c := &Cache{
		next:   next,
		client: client,
		ttl:    5 * time.Minute,
		prefix: "restbound:",
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchResource implements relation.Transport. Identities without an id
// bypass the cache entirely.
func (c *Cache) FetchResource(ctx context.Context, resource string, identity relation.Identity) (map[string]any, error) {
	if identity.ID() == nil {
		return c.next.FetchResource(ctx, resource, identity)
	}

	key := fmt.Sprintf("%s%s:%v", c.prefix, resource, identity.ID())

	var cached map[string]any
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	record, err := c.next.FetchResource(ctx, resource, identity)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, record)
	return record, nil
}

// FetchCollection implements relation.Transport
func (c *Cache) FetchCollection(ctx context.Context, ownerResource string, owner relation.Identity, field string) ([]map[string]any, error) {
	if owner.ID() == nil {
		return c.next.FetchCollection(ctx, ownerResource, owner, field)
	}

	key := fmt.Sprintf("%s%s:%v:%s", c.prefix, ownerResource, owner.ID(), field)

	var cached []map[string]any
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	records, err := c.next.FetchCollection(ctx, ownerResource, owner, field)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, records)
	return records, nil
}

// lookup reads and decodes a cached entry. Cache failures degrade to a
// miss: the wrapped transport stays authoritative.
func (c *Cache) lookup(ctx context.Context, key string, out any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// store writes a cache entry, logging failures instead of surfacing them
func (c *Cache) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

var _ relation.Transport = (*Cache)(nil)
