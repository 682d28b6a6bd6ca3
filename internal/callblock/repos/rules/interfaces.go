package rules

import (
	"time"

	"github.com/haukened/rr-callblock/internal/callblock/domain"
)

// Update is an upsert of the block flags for one normalized number.
// Source is recorded only when the update creates the entry.
type Update struct {
	Number  string
	IsRegex bool
	Fields  domain.RuleFields
	Source  string
}

// Store abstracts the persistent rule index (Bolt backend in package bolt).
//   - Query: the literal entry equal to number, plus pattern entries matching it when useRegex
//   - Upsert: insert or update one entry, returning the number of affected rows
//   - ReplaceAll: atomically swap the full rule set
type Store interface {
	Get(number string) (domain.RuleEntry, bool, error)
	Query(number string, useRegex bool) ([]domain.RuleEntry, error)
	Upsert(u Update, now time.Time) (int, error)
	Delete(number string, now time.Time) (bool, error)
	List(visit func(domain.RuleEntry) bool) error
	ReplaceAll(rules []domain.RuleEntry, version uint64, updatedUnix int64) error
	Stats() StoreStats
	Close() error
}

// BloomFilter is the minimal interface the repository needs from Bloom filters.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
}

// BloomFactory constructs Bloom filters sized for a capacity and false-positive rate.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// QueryCache caches store query results by number and regex mode.
type QueryCache interface {
	Get(key string) ([]domain.RuleEntry, bool)
	Put(key string, rows []domain.RuleEntry)
	Len() int
	Purge()
	Stats() CacheStats
}

// Repository is the composition layer that wires cache → bloom → store.
// Query and Update satisfy the blacklist service's rule source.
type Repository interface {
	Query(number string, useRegex bool) ([]domain.RuleEntry, error)
	Update(u Update) (int, error)
	Remove(number string) (bool, error)
	List(visit func(domain.RuleEntry) bool) error
	ReplaceAll(rules []domain.RuleEntry) error
	RepoStats() RepoStats
}
