package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/rr-callblock/internal/callblock/domain"
	"github.com/haukened/rr-callblock/internal/callblock/repos/rules"
)

// queryCache is an LRU-backed implementation of rules.QueryCache.
// It tracks hits, misses and evictions.
type queryCache struct {
	lru       *lru.Cache[string, []domain.RuleEntry]
	size      int
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// disabledCache is a no-op QueryCache used when size <= 0.
type disabledCache struct{}

// New creates a QueryCache with the given capacity. If size <= 0, a disabled
// cache is returned that always misses.
func New(size int) (rules.QueryCache, error) {
	if size <= 0 {
		return disabledCache{}, nil
	}

	qc := &queryCache{size: size}
	// NewWithEvict observes evictions, including Purge-induced ones.
	cache, err := lru.NewWithEvict(size, func(string, []domain.RuleEntry) {
		qc.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	qc.lru = cache
	return qc, nil
}

func (c *queryCache) Get(key string) ([]domain.RuleEntry, bool) {
	if rows, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return rows, true
	}
	c.misses.Add(1)
	return nil, false
}

// Put stores rows under key. A nil result is cached as an empty slice so that
// misses are remembered too.
func (c *queryCache) Put(key string, rows []domain.RuleEntry) {
	if rows == nil {
		rows = []domain.RuleEntry{}
	}
	c.lru.Add(key, rows)
}

func (c *queryCache) Len() int { return c.lru.Len() }

func (c *queryCache) Purge() { c.lru.Purge() }

func (c *queryCache) Stats() rules.CacheStats {
	return rules.CacheStats{
		Capacity:  c.size,
		Size:      c.lru.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (disabledCache) Get(string) ([]domain.RuleEntry, bool) { return nil, false }
func (disabledCache) Put(string, []domain.RuleEntry)        {}
func (disabledCache) Len() int                              { return 0 }
func (disabledCache) Purge()                                {}
func (disabledCache) Stats() rules.CacheStats               { return rules.CacheStats{} }

var _ rules.QueryCache = (*queryCache)(nil)
var _ rules.QueryCache = disabledCache{}
