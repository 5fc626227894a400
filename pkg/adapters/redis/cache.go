// Package redis caches raw pathway documents in Redis in front of another ports.Source.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/pkg/ports"
)

const (
	fieldFormat = "format"
	fieldData   = "data"
)

// Cache implements ports.Source as a read-through cache over another source.
// Redis failures are logged and fall back to the wrapped source.
type Cache struct {
	client *backend.Client
	inner  ports.Source
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*Cache)

// WithTTL sets the expiration for cached documents. Zero keeps them until invalidated.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix for cached documents.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// WithLogger sets the logger used for Redis failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates a cache with its own Redis client.
func New(address, password string, db int, inner ports.Source, opts ...Option) *Cache {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, inner, opts...)
}

// NewFromClient creates a cache from an existing client.
func NewFromClient(client *backend.Client, inner ports.Source, opts ...Option) *Cache {
	c := &Cache{
		client: client,
		inner:  inner,
		prefix: "carepath:pathway:",
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) key(id string) string {
	return c.prefix + id
}

// Fetch serves the document from Redis, filling the cache from the wrapped source on a miss.
func (c *Cache) Fetch(ctx context.Context, id string) (*ports.Document, error) {
	vals, err := c.client.HGetAll(ctx, c.key(id)).Result()
	switch {
	case err != nil:
		c.logger.Warn("pathway cache read failed", "pathway", id, "error", err)
	case len(vals) > 0:
		return &ports.Document{ID: id, Format: vals[fieldFormat], Data: []byte(vals[fieldData])}, nil
	}

	doc, err := c.inner.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, doc); err != nil {
		c.logger.Warn("pathway cache write failed", "pathway", id, "error", err)
	}
	return doc, nil
}

func (c *Cache) store(ctx context.Context, doc *ports.Document) error {
	key := c.key(doc.ID)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fieldFormat, doc.Format, fieldData, doc.Data)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// List is answered by the wrapped source, which stays authoritative for what exists.
func (c *Cache) List(ctx context.Context) ([]string, error) {
	return c.inner.List(ctx)
}

// Catalog delegates to the wrapped source when it has one.
func (c *Cache) Catalog(ctx context.Context) ([]ports.CatalogEntry, error) {
	if cat, ok := c.inner.(ports.Catalog); ok {
		return cat.Catalog(ctx)
	}
	return nil, nil
}

// Invalidate removes cached documents.
func (c *Cache) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate redis cache: %w", err)
	}
	return nil
}

// Close releases the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
