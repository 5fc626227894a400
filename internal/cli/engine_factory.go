package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/carepath"
	"github.com/aretw0/carepath/internal/config"
	"github.com/aretw0/carepath/pathways"
	"github.com/aretw0/carepath/pkg/adapters/file"
	"github.com/aretw0/carepath/pkg/adapters/redis"
	"github.com/aretw0/carepath/pkg/ports"
)

// nopCloser is returned when nothing needs releasing.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewSource builds the pathway source the configuration describes: the embedded
// catalog or a directory, optionally behind a Redis read-through cache.
// The returned closer releases the Redis client.
func NewSource(cfg *config.Config, logger *slog.Logger) (ports.Source, io.Closer, error) {
	var src ports.Source = pathways.Source()
	if cfg.PathwayDir != "" {
		dir, err := file.NewDir(cfg.PathwayDir)
		if err != nil {
			return nil, nil, err
		}
		src = dir
	}

	if cfg.RedisAddr == "" {
		return src, nopCloser{}, nil
	}
	cache := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, src,
		redis.WithTTL(cfg.CacheTTL),
		redis.WithLogger(logger),
	)
	logger.Info("Caching pathway documents in Redis", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	return cache, cache, nil
}

// NewEngine initializes an engine with standard CLI conventions.
func NewEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, extra ...carepath.Option) (*carepath.Engine, io.Closer, error) {
	src, closer, err := NewSource(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := []carepath.Option{
		carepath.WithSource(src),
		carepath.WithLogger(logger),
		carepath.WithCacheSize(cfg.CacheSize),
	}
	if cfg.Debug {
		opts = append(opts, carepath.WithLifecycleHooks(DebugHooks(logger)))
	}
	opts = append(opts, extra...)

	engine, err := carepath.New(ctx, opts...)
	if err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, closer, nil
}
