// Package fantasycache composes the caching subsystem: one Config produces
// a file backend at the resolved cache root, the expiring cache store over
// it, the freshness oracle polling the configured state endpoint, and the
// historical store gated on that oracle. Consumers hold a Client and cache
// through it; the individual stores stay reachable for callers that need
// their full surface.
package fantasycache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/fantasycache/internal/cache"
	"github.com/rshade/fantasycache/internal/config"
	"github.com/rshade/fantasycache/internal/freshness"
	"github.com/rshade/fantasycache/internal/historical"
	"github.com/rshade/fantasycache/internal/persist"
)

// Loader produces a value on a cache miss.
type Loader = cache.Loader

// Client owns one cache root and the stores over it.
type Client struct {
	backend    *persist.FileBackend
	cache      *cache.Store
	oracle     *freshness.Oracle
	historical *historical.Store
	ttl        time.Duration
}

// New builds a Client from cfg. Creating the cache root is the single
// fatal initialization point; everything past it degrades per operation.
func New(cfg config.Config, logger zerolog.Logger) (*Client, error) {
	backend, err := persist.NewFileBackend(cfg.ResolveDir())
	if err != nil {
		return nil, fmt.Errorf("cache root unavailable: %w", err)
	}

	oracle := freshness.NewOracle(
		freshness.NewHTTPSource(cfg.StateURL, freshness.WithRequestTimeout(cfg.StateTimeout)),
		freshness.WithLogger(logger),
	)

	return &Client{
		backend: backend,
		cache: cache.New(backend,
			cache.WithCapacity(cfg.MaxEntries),
			cache.WithSweepInterval(cfg.SweepInterval),
			cache.WithLoaderTimeout(cfg.LoaderTimeout),
			cache.WithLogger(logger),
		),
		oracle:     oracle,
		historical: historical.New(backend, oracle, historical.WithLogger(logger)),
		ttl:        cfg.TTL,
	}, nil
}

// GetOrSet caches through the expiring store with the configured default
// TTL.
func (c *Client) GetOrSet(ctx context.Context, key string, loader Loader) (json.RawMessage, error) {
	return c.cache.GetOrSet(ctx, key, loader, c.ttl)
}

// GetOrSetHistorical caches through the historical store.
func (c *Client) GetOrSetHistorical(ctx context.Context, key string, loader Loader, dataType, season string, week int) (json.RawMessage, error) {
	return c.historical.GetOrSet(ctx, key, loader, dataType, season, week)
}

// Cache returns the expiring store.
func (c *Client) Cache() *cache.Store {
	return c.cache
}

// Historical returns the historical store.
func (c *Client) Historical() *historical.Store {
	return c.historical
}

// Oracle returns the freshness oracle.
func (c *Client) Oracle() *freshness.Oracle {
	return c.oracle
}

// Backend returns the file backend at the cache root.
func (c *Client) Backend() *persist.FileBackend {
	return c.backend
}

// Close stops the cache's background sweep and releases the backend.
func (c *Client) Close() error {
	err := c.cache.Close()
	if closeErr := c.backend.Close(); err == nil {
		err = closeErr
	}
	return err
}
