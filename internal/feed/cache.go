package feed

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a generated section stays fresh.
const DefaultTTL = time.Hour

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// GenerateFunc produces the items of one section.
type GenerateFunc func(ctx context.Context) ([]ContentItem, error)

// Cache holds generated sections for ttl. Concurrent misses for the same
// section share a single generator call.
type Cache struct {
	clock Clock
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[Section]CachedSection
	// epochs counts evictions per section. A generation started in an
	// older epoch never stores its result.
	epochs map[Section]uint64
	flight singleflight.Group
}

// NewCache creates a Cache using the wall clock. A non-positive ttl means DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	return NewCacheWithClock(realClock{}, ttl)
}

// NewCacheWithClock creates a Cache with a custom clock (for testing).
func NewCacheWithClock(clock Clock, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[Section]CachedSection),
		epochs:  make(map[Section]uint64),
	}
}

// Lookup returns the cached entry for section if it is still fresh.
func (c *Cache) Lookup(section Section) (CachedSection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fresh(section)
}

// fresh must be called with c.mu held.
func (c *Cache) fresh(section Section) (CachedSection, bool) {
	e, ok := c.entries[section]
	if !ok || c.clock.Now().Sub(e.GeneratedAt) >= c.ttl {
		return CachedSection{}, false
	}
	return e, true
}

// GetOrGenerate returns the fresh cached items for section, or calls gen once
// and caches what it returns. A generator error is returned and nothing is stored.
//
// The shared generation runs detached from any single caller's cancellation;
// each caller stops waiting when its own ctx is done.
func (c *Cache) GetOrGenerate(ctx context.Context, section Section, gen GenerateFunc) ([]ContentItem, error) {
	if e, ok := c.Lookup(section); ok {
		return slices.Clone(e.Items), nil
	}

	genCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(string(section), func() (any, error) {
		c.mu.RLock()
		e, ok := c.fresh(section)
		epoch := c.epochs[section]
		c.mu.RUnlock()
		if ok {
			return e.Items, nil
		}

		items, err := gen(genCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.epochs[section] == epoch {
			c.entries[section] = CachedSection{Items: items, GeneratedAt: c.clock.Now()}
		}
		c.mu.Unlock()
		return items, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]ContentItem)), nil
	}
}

// Evict drops the entry for section. Generations already in flight for it
// still answer their callers but are not cached.
func (c *Cache) Evict(section Section) {
	c.mu.Lock()
	delete(c.entries, section)
	c.epochs[section]++
	c.mu.Unlock()
	c.flight.Forget(string(section))
}

// Refresh evicts section and regenerates it with exactly one call to gen.
func (c *Cache) Refresh(ctx context.Context, section Section, gen GenerateFunc) ([]ContentItem, error) {
	c.Evict(section)
	return c.GetOrGenerate(ctx, section, gen)
}
