package rules

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/haukened/rr-callblock/internal/callblock/common/clock"
	"github.com/haukened/rr-callblock/internal/callblock/common/log"
	"github.com/haukened/rr-callblock/internal/callblock/domain"
)

// minBloomCapacity keeps small rule sets from rebuilding the filter on every insert.
const minBloomCapacity = 1024

// repository implements Repository by composing a Store, a Bloom filter over
// literal numbers (via factory) and a QueryCache. Reads go cache → bloom → store;
// writes go to the store first, then extend the filter and purge the cache.
type repository struct {
	mu       sync.RWMutex
	store    Store
	cache    QueryCache
	bloom    BloomFilter
	bloomCap uint64
	bloomN   uint64
	patterns uint64
	gen      uint64 // bumped on every cache purge
	factory  BloomFactory
	fpRate   float64
	clock    clock.Clock
	logger   log.Logger
	skips    atomic.Uint64
}

// Options configures NewRepository. Factory may be nil to disable the Bloom filter.
type Options struct {
	Store   Store
	Cache   QueryCache
	Factory BloomFactory
	FPRate  float64
	Clock   clock.Clock
	Logger  log.Logger
}

// NewRepository constructs a Repository and builds the Bloom filter from the
// current store contents.
func NewRepository(opts Options) (Repository, error) {
	if opts.Store == nil || opts.Cache == nil {
		return nil, errors.New("rules: store and cache are required")
	}
	r := &repository{
		store:   opts.Store,
		cache:   opts.Cache,
		factory: opts.Factory,
		fpRate:  opts.FPRate,
		clock:   opts.Clock,
		logger:  opts.Logger,
	}
	if r.clock == nil {
		r.clock = clock.RealClock{}
	}
	if r.logger == nil {
		r.logger = log.NewNoopLogger()
	}
	if err := r.rebuildBloom(); err != nil {
		return nil, err
	}
	return r, nil
}

// Query returns the rows matching number. Patterns are consulted only when
// useRegex is set. Store errors are returned uncached.
func (r *repository) Query(number string, useRegex bool) ([]domain.RuleEntry, error) {
	// 1) checkBloom: early-allow when no literal can exist and patterns are irrelevant
	if !r.checkBloom(number, useRegex) {
		r.skips.Add(1)
		return nil, nil
	}
	key := cacheKey(number, useRegex)
	// 2) checkCache
	rows, gen, ok := r.checkCache(key)
	if ok {
		return rows, nil
	}
	// 3) checkStore
	rows, err := r.store.Query(number, useRegex)
	if err != nil {
		return nil, err
	}
	// 4) updateCache, unless a write purged the cache meanwhile
	r.updateCache(key, rows, gen)
	return rows, nil
}

// Update upserts one entry and reports the affected row count.
func (r *repository) Update(u Update) (int, error) {
	existed := u.IsRegex
	if !u.IsRegex {
		_, found, err := r.store.Get(u.Number)
		if err != nil {
			return 0, err
		}
		existed = found
	}
	n, err := r.store.Upsert(u, r.clock.Now())
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	r.mu.Lock()
	// only new literals count toward the filter's capacity
	if !existed && r.bloom != nil {
		r.bloom.Add([]byte(u.Number))
		r.bloomN++
	}
	needRebuild := r.bloom != nil && r.bloomN > r.bloomCap
	r.purgeLocked()
	r.mu.Unlock()

	r.refreshPatternCount()
	if needRebuild {
		if err := r.rebuildBloom(); err != nil {
			// The old filter still covers every key, so reads stay correct.
			r.logger.Warn(map[string]any{"error": err}, "bloom_rebuild_failed")
		}
	}
	return n, nil
}

// Remove deletes the entry stored under number. The Bloom filter keeps the key
// until the next rebuild, which only costs a store lookup.
func (r *repository) Remove(number string) (bool, error) {
	ok, err := r.store.Delete(number, r.clock.Now())
	if err != nil || !ok {
		return ok, err
	}
	r.mu.Lock()
	r.purgeLocked()
	r.mu.Unlock()
	r.refreshPatternCount()
	return true, nil
}

// List visits every stored entry.
func (r *repository) List(visit func(domain.RuleEntry) bool) error {
	return r.store.List(visit)
}

// ReplaceAll performs an atomic snapshot update across store, bloom and cache.
func (r *repository) ReplaceAll(entries []domain.RuleEntry) error {
	st := r.store.Stats()
	if err := r.store.ReplaceAll(entries, st.Version+1, r.clock.Now().Unix()); err != nil {
		return err
	}
	return r.rebuildBloom()
}

// RepoStats returns cache, store and filter counters.
func (r *repository) RepoStats() RepoStats {
	r.mu.RLock()
	cs := r.cache.Stats()
	loaded := r.bloom != nil
	r.mu.RUnlock()
	return RepoStats{
		Cache:       cs,
		Store:       r.store.Stats(),
		BloomSkips:  r.skips.Load(),
		BloomLoaded: loaded,
	}
}

// rebuildBloom sizes a fresh filter for the stored literals, swaps it in and
// purges the cache.
func (r *repository) rebuildBloom() error {
	st := r.store.Stats()
	if r.factory == nil {
		r.mu.Lock()
		r.patterns = st.PatternKeys
		r.purgeLocked()
		r.mu.Unlock()
		return nil
	}

	capacity := st.LiteralKeys * 2
	if capacity < minBloomCapacity {
		capacity = minBloomCapacity
	}
	bf := r.factory.New(capacity, r.fpRate)
	var n uint64
	err := r.store.List(func(e domain.RuleEntry) bool {
		if !e.IsRegex {
			bf.Add([]byte(e.Number))
			n++
		}
		return true
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.bloom = bf
	r.bloomCap = capacity
	r.bloomN = n
	r.patterns = st.PatternKeys
	r.purgeLocked()
	r.mu.Unlock()

	r.logger.Debug(map[string]any{"literals": n, "patterns": st.PatternKeys, "capacity": capacity}, "bloom_rebuilt")
	return nil
}

func (r *repository) refreshPatternCount() {
	st := r.store.Stats()
	r.mu.Lock()
	r.patterns = st.PatternKeys
	r.mu.Unlock()
}

// checkBloom returns true if the store must be consulted, or false when the
// filter proves there is no literal entry and no pattern could match.
func (r *repository) checkBloom(number string, useRegex bool) bool {
	r.mu.RLock()
	bf := r.bloom
	patterns := r.patterns
	r.mu.RUnlock()
	if bf == nil {
		return true
	}
	if useRegex && patterns > 0 {
		return true
	}
	return bf.MightContain([]byte(number))
}

func (r *repository) checkCache(key string) ([]domain.RuleEntry, uint64, bool) {
	r.mu.RLock()
	rows, ok := r.cache.Get(key)
	gen := r.gen
	r.mu.RUnlock()
	return rows, gen, ok
}

func (r *repository) updateCache(key string, rows []domain.RuleEntry, gen uint64) {
	r.mu.Lock()
	if r.gen == gen {
		r.cache.Put(key, rows)
	}
	r.mu.Unlock()
}

// purgeLocked clears the cache; r.mu must be held for writing.
func (r *repository) purgeLocked() {
	r.cache.Purge()
	r.gen++
}

func cacheKey(number string, useRegex bool) string {
	return strconv.FormatBool(useRegex) + "|" + number
}
