package bolt

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/rr-callblock/internal/callblock/domain"
	"github.com/haukened/rr-callblock/internal/callblock/repos/rules"
)

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "rules.db")
}

func openStore(t *testing.T) rules.Store {
	t.Helper()
	st, err := New(tempDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func boolPtr(b bool) *bool { return &b }

func TestBoltStore_UpsertInsertsThenUpdates(t *testing.T) {
	st := openStore(t)
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	n, err := st.Upsert(rules.Update{
		Number: "+15551234567",
		Fields: domain.FieldsFromMask(domain.MaskCalls, domain.MaskAll),
		Source: "cli",
	}, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	e, ok, err := st.Get("+15551234567")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, e.Calls)
	assert.False(t, e.Messages)
	assert.False(t, e.IsRegex)
	assert.Equal(t, "cli", e.Source)
	assert.True(t, e.AddedAt.Equal(t0))

	// only messages is valid in the second update; calls must survive
	t1 := t0.Add(time.Hour)
	n, err = st.Upsert(rules.Update{
		Number: "+15551234567",
		Fields: domain.RuleFields{},
	}, t1)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "empty field set writes nothing")

	n, err = st.Upsert(rules.Update{
		Number: "+15551234567",
		Fields: domain.RuleFields{Messages: boolPtr(true)},
		Source: "other",
	}, t1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	e, _, err = st.Get("+15551234567")
	require.NoError(t, err)
	assert.True(t, e.Calls)
	assert.True(t, e.Messages)
	assert.Equal(t, "cli", e.Source, "source is kept from the insert")
	assert.True(t, e.AddedAt.Equal(t0))
	assert.True(t, e.UpdatedAt.Equal(t1))
}

func TestBoltStore_UpsertEmptyNumber(t *testing.T) {
	st := openStore(t)
	_, err := st.Upsert(rules.Update{Fields: domain.FieldsFromMask(domain.MaskAll, domain.MaskAll)}, time.Now())
	assert.ErrorIs(t, err, ErrEmptyNumber)
}

func TestBoltStore_Query(t *testing.T) {
	st := openStore(t)
	now := time.Now()
	entries := []domain.RuleEntry{
		{Number: "+15551234567", Calls: true, AddedAt: now},
		{Number: "+1555%", IsRegex: true, Calls: true, Messages: true, AddedAt: now},
		{Number: "+1555123456_", IsRegex: true, Messages: true, AddedAt: now},
		{Number: "+44%", IsRegex: true, Calls: true, AddedAt: now},
	}
	require.NoError(t, st.ReplaceAll(entries, 1, now.Unix()))

	// literal only
	rows, err := st.Query("+15551234567", false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "+15551234567", rows[0].Number)

	// literal first, then matching patterns in key order
	rows, err = st.Query("+15551234567", true)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "+15551234567", rows[0].Number)
	assert.Equal(t, "+1555%", rows[1].Number)
	assert.Equal(t, "+1555123456_", rows[2].Number)

	// pattern only
	rows, err = st.Query("+15559999999", true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "+1555%", rows[0].Number)
	assert.True(t, rows[0].IsRegex)

	// patterns are invisible without regex
	rows, err = st.Query("+15559999999", false)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// miss
	rows, err = st.Query("+33123456789", true)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBoltStore_DeleteAndList(t *testing.T) {
	st := openStore(t)
	now := time.Now()
	require.NoError(t, st.ReplaceAll([]domain.RuleEntry{
		{Number: "200", AddedAt: now},
		{Number: "100", Calls: true, AddedAt: now},
		{Number: "9%", IsRegex: true, Calls: true, AddedAt: now},
	}, 7, now.Unix()))

	var got []string
	require.NoError(t, st.List(func(e domain.RuleEntry) bool {
		got = append(got, e.Number)
		return true
	}))
	assert.Equal(t, []string{"100", "200", "9%"}, got)

	// early stop
	got = got[:0]
	require.NoError(t, st.List(func(e domain.RuleEntry) bool {
		got = append(got, e.Number)
		return false
	}))
	assert.Equal(t, []string{"100"}, got)

	deletedAt := time.Unix(1800000000, 0)
	ok, err := st.Delete("9%", deletedAt)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = st.Delete("9%", time.Unix(1900000000, 0))
	require.NoError(t, err)
	assert.False(t, ok)

	stats := st.Stats()
	assert.Equal(t, uint64(2), stats.LiteralKeys)
	assert.Equal(t, uint64(0), stats.PatternKeys)
	assert.Equal(t, uint64(8), stats.Version, "delete bumps the version")
	assert.Equal(t, deletedAt.Unix(), stats.UpdatedUnix, "a missing key leaves the metadata alone")
}

func TestBoltStore_ReplaceAllAndStats(t *testing.T) {
	st := openStore(t)
	assert.Equal(t, rules.StoreStats{}, st.Stats())

	now := time.Unix(1700000000, 0)
	require.NoError(t, st.ReplaceAll([]domain.RuleEntry{
		{Number: "1", Calls: true, AddedAt: now},
		{Number: "2%", IsRegex: true, Messages: true, AddedAt: now},
	}, 3, now.Unix()))

	stats := st.Stats()
	assert.Equal(t, uint64(1), stats.LiteralKeys)
	assert.Equal(t, uint64(1), stats.PatternKeys)
	assert.Equal(t, uint64(3), stats.Version)
	assert.Equal(t, now.Unix(), stats.UpdatedUnix)

	// a second snapshot fully replaces the first
	require.NoError(t, st.ReplaceAll([]domain.RuleEntry{{Number: "3", AddedAt: now}}, 4, now.Unix()+1))
	_, ok, err := st.Get("1")
	require.NoError(t, err)
	assert.False(t, ok)
	e, ok, err := st.Get("3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, e.UpdatedAt.Equal(now), "UpdatedAt defaults to AddedAt")

	err = st.ReplaceAll([]domain.RuleEntry{{Number: ""}}, 5, now.Unix())
	assert.ErrorIs(t, err, ErrEmptyNumber)
	_, ok, _ = st.Get("3")
	assert.True(t, ok, "failed replace must roll back")
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestNew_EnsureBucketsErrors(t *testing.T) {
	for _, fail := range [][]byte{bucketLiteral, bucketPattern, bucketMeta} {
		t.Run(string(fail), func(t *testing.T) {
			old := ensureBucketsFn
			ensureBucketsFn = func(tx bucketCreator) error {
				return ensureBuckets(failingCreator{inner: tx, fail: string(fail)})
			}
			defer func() { ensureBucketsFn = old }()

			st, err := New(tempDB(t))
			require.Error(t, err)
			assert.Nil(t, st)
			assert.True(t, errors.Is(err, assertErr{}))
		})
	}
}

type failingCreator struct {
	inner bucketCreator
	fail  string
}

func (f failingCreator) CreateBucketIfNotExists(name []byte) (*bbolt.Bucket, error) {
	if string(name) == f.fail {
		return nil, assertErr{}
	}
	return f.inner.CreateBucketIfNotExists(name)
}

func TestNew_BadPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "dir", "rules.db"))
	assert.Error(t, err)
}

func TestBoltStore_ClosedStoreErrors(t *testing.T) {
	st, err := New(tempDB(t))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = st.Query("1", true)
	assert.Error(t, err)
	_, err = st.Upsert(rules.Update{Number: "1", Fields: domain.FieldsFromMask(domain.MaskAll, domain.MaskAll)}, time.Now())
	assert.Error(t, err)
	assert.Equal(t, rules.StoreStats{}, st.Stats())
}
