package source

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/spektr-org/salespulse/sales"
)

// Cached serves the last successful fetch of a source until it is older than
// the TTL. Concurrent callers that miss the cache share one fetch. Failed
// fetches are not cached.
type Cached struct {
	src   Source
	cache *expirable.LRU[string, sales.Dataset]
	log   *zap.Logger

	mu sync.Mutex
}

// NewCached wraps src. A ttl <= 0 disables caching and returns src itself.
func NewCached(src Source, ttl time.Duration, log *zap.Logger) Source {
	if ttl <= 0 {
		return src
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{
		src:   src,
		cache: expirable.NewLRU[string, sales.Dataset](1, nil, ttl),
		log:   log,
	}
}

func (c *Cached) Name() string { return c.src.Name() }

func (c *Cached) Fetch(ctx context.Context) (sales.Dataset, error) {
	key := c.src.Name()
	if ds, ok := c.cache.Get(key); ok {
		return ds, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have filled the cache while we waited.
	if ds, ok := c.cache.Get(key); ok {
		return ds, nil
	}

	start := time.Now()
	ds, err := c.src.Fetch(ctx)
	if err != nil {
		c.log.Warn("fetch failed", zap.String("source", key), zap.Error(err))
		return sales.Dataset{}, err
	}
	c.cache.Add(key, ds)
	c.log.Info("export fetched",
		zap.String("source", key),
		zap.Int("rows", len(ds.Rows)),
		zap.Duration("took", time.Since(start)))
	return ds, nil
}

// Invalidate drops the cached snapshot so the next Fetch goes to the source.
func (c *Cached) Invalidate() {
	c.cache.Purge()
}
