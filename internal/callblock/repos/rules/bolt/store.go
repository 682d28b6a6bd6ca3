package bolt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/rr-callblock/internal/callblock/domain"
	"github.com/haukened/rr-callblock/internal/callblock/repos/rules"
)

var (
	bucketLiteral = []byte("literal")
	bucketPattern = []byte("pattern")
	bucketMeta    = []byte("meta")

	keyVersion = []byte("version")
	keyUpdated = []byte("updated")
)

// ErrEmptyNumber is returned for writes without a number.
var ErrEmptyNumber = errors.New("rule number must not be empty")

// boltStore implements rules.Store using bbolt. Literal numbers and patterns
// live in separate buckets so exact lookups never scan patterns.
type boltStore struct {
	db *bbolt.DB
}

// bucketCreator is the subset of *bbolt.Tx used to create buckets.
type bucketCreator interface {
	CreateBucketIfNotExists(name []byte) (*bbolt.Bucket, error)
}

func ensureBuckets(tx bucketCreator) error {
	for _, name := range [][]byte{bucketLiteral, bucketPattern, bucketMeta} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return fmt.Errorf("create bucket %q: %w", name, err)
		}
	}
	return nil
}

// ensureBucketsFn is swapped in tests to exercise bucket creation failures.
var ensureBucketsFn = func(tx bucketCreator) error { return ensureBuckets(tx) }

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (rules.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error { return ensureBucketsFn(tx) }); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

func bucketFor(isRegex bool) []byte {
	if isRegex {
		return bucketPattern
	}
	return bucketLiteral
}

// Get returns the entry stored under number in either bucket.
func (s *boltStore) Get(number string) (domain.RuleEntry, bool, error) {
	var (
		e     domain.RuleEntry
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketLiteral, bucketPattern} {
			b := tx.Bucket(name)
			if b == nil {
				continue
			}
			if v := b.Get([]byte(number)); v != nil {
				var err error
				e, err = decodeEntry([]byte(number), v)
				if err != nil {
					return err
				}
				found = true
				return nil
			}
		}
		return nil
	})
	return e, found, err
}

// Query returns the literal entry equal to number first, followed by every
// pattern entry that matches number when useRegex is set. Patterns are visited
// in key order.
func (s *boltStore) Query(number string, useRegex bool) ([]domain.RuleEntry, error) {
	var out []domain.RuleEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketLiteral); b != nil {
			if v := b.Get([]byte(number)); v != nil {
				e, err := decodeEntry([]byte(number), v)
				if err != nil {
					return err
				}
				out = append(out, e)
			}
		}
		if !useRegex {
			return nil
		}
		b := tx.Bucket(bucketPattern)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if !likeMatch(string(k), number) {
				return nil
			}
			e, err := decodeEntry(k, v)
			if err != nil {
				return err
			}
			out = append(out, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert writes the present fields of u, inserting the entry when absent.
// It returns 1 when a row was written and 0 when u carries no fields.
func (s *boltStore) Upsert(u rules.Update, now time.Time) (int, error) {
	if u.Number == "" {
		return 0, ErrEmptyNumber
	}
	if u.Fields.IsEmpty() {
		return 0, nil
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketFor(u.IsRegex))
		key := []byte(u.Number)
		var e domain.RuleEntry
		if v := b.Get(key); v != nil {
			var err error
			if e, err = decodeEntry(key, v); err != nil {
				return err
			}
		} else {
			e = domain.RuleEntry{Number: u.Number, IsRegex: u.IsRegex, Source: u.Source, AddedAt: now}
		}
		e = u.Fields.Apply(e)
		e.UpdatedAt = now
		if err := b.Put(key, encodeEntry(e)); err != nil {
			return err
		}
		return bumpMeta(tx, now.Unix())
	})
	if err != nil {
		return 0, err
	}
	return 1, nil
}

// Delete removes number from whichever bucket holds it, stamping the store
// metadata with now.
func (s *boltStore) Delete(number string, now time.Time) (bool, error) {
	var deleted bool
	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketLiteral, bucketPattern} {
			b := tx.Bucket(name)
			if b == nil || b.Get([]byte(number)) == nil {
				continue
			}
			if err := b.Delete([]byte(number)); err != nil {
				return err
			}
			deleted = true
		}
		if !deleted {
			return nil
		}
		return bumpMeta(tx, now.Unix())
	})
	return deleted, err
}

// List visits literal entries, then pattern entries, each in key order.
// Iteration stops when visit returns false.
func (s *boltStore) List(visit func(domain.RuleEntry) bool) error {
	errStop := errors.New("stop")
	err := s.db.View(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketLiteral, bucketPattern} {
			b := tx.Bucket(name)
			if b == nil {
				continue
			}
			err := b.ForEach(func(k, v []byte) error {
				e, err := decodeEntry(k, v)
				if err != nil {
					return err
				}
				if !visit(e) {
					return errStop
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

// ReplaceAll drops every entry and writes rules in a single transaction.
func (s *boltStore) ReplaceAll(entries []domain.RuleEntry, version uint64, updatedUnix int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketLiteral, bucketPattern} {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return err
				}
			}
		}
		if err := ensureBucketsFn(tx); err != nil {
			return err
		}
		for _, e := range entries {
			if e.Number == "" {
				return ErrEmptyNumber
			}
			if e.UpdatedAt.IsZero() {
				e.UpdatedAt = e.AddedAt
			}
			if err := tx.Bucket(bucketFor(e.IsRegex)).Put([]byte(e.Number), encodeEntry(e)); err != nil {
				return err
			}
		}
		return setMeta(tx, version, updatedUnix)
	})
}

func (s *boltStore) Stats() rules.StoreStats {
	st := rules.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketLiteral); b != nil {
			st.LiteralKeys = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketPattern); b != nil {
			st.PatternKeys = uint64(b.Stats().KeyN)
		}
		st.Version, st.UpdatedUnix = readMeta(tx)
		return nil
	})
	return st
}

func readMeta(tx *bbolt.Tx) (version uint64, updatedUnix int64) {
	b := tx.Bucket(bucketMeta)
	if b == nil {
		return 0, 0
	}
	if v := b.Get(keyVersion); len(v) == 8 {
		version = binary.BigEndian.Uint64(v)
	}
	if v := b.Get(keyUpdated); len(v) == 8 {
		updatedUnix = int64(binary.BigEndian.Uint64(v))
	}
	return version, updatedUnix
}

func setMeta(tx *bbolt.Tx, version uint64, updatedUnix int64) error {
	b := tx.Bucket(bucketMeta)
	vbuf := make([]byte, 8)
	ubuf := make([]byte, 8)
	binary.BigEndian.PutUint64(vbuf, version)
	binary.BigEndian.PutUint64(ubuf, uint64(updatedUnix))
	if err := b.Put(keyVersion, vbuf); err != nil {
		return err
	}
	return b.Put(keyUpdated, ubuf)
}

// bumpMeta increments the snapshot version after a single-entry write.
func bumpMeta(tx *bbolt.Tx, updatedUnix int64) error {
	version, _ := readMeta(tx)
	return setMeta(tx, version+1, updatedUnix)
}

var _ rules.Store = (*boltStore)(nil)
