// Package bloom provides the negative filter over literal blacklist numbers.
// A miss lets the repository answer without touching the cache or the store.
package bloom

import (
	"sync"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/rr-callblock/internal/callblock/repos/rules"
)

const defaultFPRate = 0.01

type factory struct{}

// NewFactory returns a BloomFactory backed by bits-and-blooms.
func NewFactory() rules.BloomFactory { return factory{} }

// New sizes a filter for capacity numbers at fpRate. A zero capacity is
// treated as one and an out-of-range rate falls back to 1%.
func (factory) New(capacity uint64, fpRate float64) rules.BloomFilter {
	if capacity == 0 {
		capacity = 1
	}
	if !(fpRate > 0 && fpRate < 1) {
		fpRate = defaultFPRate
	}
	return &filter{bf: bitsbloom.NewWithEstimates(uint(capacity), fpRate)}
}

// filter guards the bitset; bits-and-blooms does not allow Add concurrent with Test.
type filter struct {
	mu sync.RWMutex
	bf *bitsbloom.BloomFilter
}

func (f *filter) Add(number []byte) {
	f.mu.Lock()
	f.bf.Add(number)
	f.mu.Unlock()
}

func (f *filter) MightContain(number []byte) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.bf.Test(number)
}
