// Package catalog caches the product list fetched from the shop API.
//
// Get serves an in-memory copy while it is younger than the TTL. Otherwise
// it fetches from the network and writes the result through to the local
// store. When the network fails, a persisted copy younger than MaxAge is
// served instead.
package catalog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"belekbox/internal/localstore"
	"belekbox/internal/model"

	"github.com/rs/zerolog"
)

// Default cache lifetimes.
const (
	DefaultTTL    = 5 * time.Minute
	DefaultMaxAge = 24 * time.Hour
)

// Source tells where a result came from.
type Source string

const (
	SourceMemory    Source = "memory"
	SourceNetwork   Source = "network"
	SourcePersisted Source = "persisted"
)

// Fetcher loads the current product list.
type Fetcher interface {
	Products(ctx context.Context) ([]model.Product, error)
}

// Result is a product list together with its provenance.
type Result struct {
	Products  []model.Product
	Source    Source
	FetchedAt time.Time
}

// Options configures a Cache.
type Options struct {
	TTL    time.Duration
	MaxAge time.Duration
	Now    func() time.Time
}

// Cache is the product cache. Concurrent Get calls are not deduplicated;
// each one that misses the memory copy performs its own fetch.
type Cache struct {
	mu        sync.Mutex
	products  []model.Product
	fetchedAt time.Time

	fetcher Fetcher
	store   *localstore.Store
	ttl     time.Duration
	maxAge  time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

// New creates a cache backed by fetcher and store.
func New(fetcher Fetcher, store *localstore.Store, opts Options, logger zerolog.Logger) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		fetcher: fetcher,
		store:   store,
		ttl:     opts.TTL,
		maxAge:  opts.MaxAge,
		now:     opts.Now,
		logger:  logger.With().Str("component", "catalog").Logger(),
	}
}

// Get returns the product list.
func (c *Cache) Get(ctx context.Context) (Result, error) {
	if res, ok := c.fresh(c.ttl); ok {
		return res, nil
	}
	return c.load(ctx)
}

// Refresh skips the in-memory copy and goes to the network, falling back to
// the persisted copy on failure.
func (c *Cache) Refresh(ctx context.Context) (Result, error) {
	return c.load(ctx)
}

// RefreshIfOlder reloads the list when the in-memory copy is missing or older
// than age. The boolean reports whether a reload happened.
func (c *Cache) RefreshIfOlder(ctx context.Context, age time.Duration) (Result, bool, error) {
	if res, ok := c.fresh(age); ok {
		return res, false, nil
	}
	res, err := c.load(ctx)
	return res, true, err
}

// Invalidate drops the in-memory copy. The persisted copy is kept as a
// fallback.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = nil
	c.fetchedAt = time.Time{}
}

// Cached returns the in-memory copy without any freshness check.
func (c *Cache) Cached() ([]model.Product, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Product(nil), c.products...), c.fetchedAt
}

func (c *Cache) fresh(ttl time.Duration) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.products == nil || c.fetchedAt.IsZero() {
		return Result{}, false
	}
	if c.now().Sub(c.fetchedAt) >= ttl {
		return Result{}, false
	}
	return Result{
		Products:  append([]model.Product(nil), c.products...),
		Source:    SourceMemory,
		FetchedAt: c.fetchedAt,
	}, true
}

func (c *Cache) load(ctx context.Context) (Result, error) {
	now := c.now()
	products, err := c.fetcher.Products(ctx)
	if err == nil {
		if products == nil {
			products = []model.Product{}
		}
		c.set(products, now)
		c.persist(ctx, products, now)
		c.logger.Debug().Int("count", len(products)).Msg("products fetched")
		return Result{Products: append([]model.Product(nil), products...), Source: SourceNetwork, FetchedAt: now}, nil
	}

	c.logger.Warn().Err(err).Msg("failed to fetch products")

	if res, ok := c.fromStore(ctx, now); ok {
		c.logger.Info().
			Int("count", len(res.Products)).
			Time("fetched_at", res.FetchedAt).
			Msg("serving persisted products")
		return res, nil
	}

	return Result{}, model.WrapDomainError(model.ErrCodeNetwork, "failed to load products", err)
}

func (c *Cache) set(products []model.Product, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = products
	c.fetchedAt = at
}

// persist writes the list through to the local store. Failures are logged
// and otherwise ignored.
func (c *Cache) persist(ctx context.Context, products []model.Product, at time.Time) {
	data, err := json.Marshal(products)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to encode products cache")
		return
	}
	if err := c.store.SetString(ctx, localstore.KeyProductsCache, string(data)); err != nil {
		c.logger.Warn().Err(err).Msg("failed to persist products cache")
		return
	}
	if err := c.store.SetTime(ctx, localstore.KeyProductsCacheTime, at); err != nil {
		c.logger.Warn().Err(err).Msg("failed to persist products cache time")
	}
}

func (c *Cache) fromStore(ctx context.Context, now time.Time) (Result, bool) {
	raw, ok, err := c.store.GetString(ctx, localstore.KeyProductsCache)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to read products cache")
		return Result{}, false
	}
	if !ok || raw == "" {
		return Result{}, false
	}

	fetchedAt, ok, err := c.store.GetTime(ctx, localstore.KeyProductsCacheTime)
	if err != nil || !ok {
		return Result{}, false
	}
	if now.Sub(fetchedAt) >= c.maxAge {
		c.logger.Debug().Time("fetched_at", fetchedAt).Msg("persisted products are too old")
		return Result{}, false
	}

	var products []model.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		c.logger.Warn().Err(err).Msg("persisted products cache is unreadable")
		return Result{}, false
	}
	if products == nil {
		products = []model.Product{}
	}

	c.set(products, fetchedAt)
	return Result{Products: append([]model.Product(nil), products...), Source: SourcePersisted, FetchedAt: fetchedAt}, true
}
