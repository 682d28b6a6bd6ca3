package rules

// CacheStats reports lightweight cache metrics.
// All fields are best-effort snapshots and may be updated concurrently.
type CacheStats struct {
	Capacity  int
	Size      int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// StoreStats reports counts and metadata read from the store in a read-only transaction.
type StoreStats struct {
	Version     uint64 // snapshot version, bumped on every write
	UpdatedUnix int64  // last write, seconds since epoch
	LiteralKeys uint64
	PatternKeys uint64
}

// RepoStats exposes repository-level counters and underlying store stats.
type RepoStats struct {
	Cache       CacheStats
	Store       StoreStats
	BloomSkips  uint64 // queries answered by the Bloom filter alone
	BloomLoaded bool
}
