package bolt

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/haukened/rr-callblock/internal/callblock/domain"
	"github.com/haukened/rr-callblock/internal/callblock/repos/rules"
)

func benchBuildStore(b *testing.B, entries []domain.RuleEntry) rules.Store {
	b.Helper()
	store, err := New(filepath.Join(b.TempDir(), "rules.db"))
	if err != nil {
		b.Fatalf("bolt.New: %v", err)
	}
	b.Cleanup(func() { _ = store.Close() })
	if err := store.ReplaceAll(entries, 1, time.Now().Unix()); err != nil {
		b.Fatalf("ReplaceAll: %v", err)
	}
	return store
}

func benchEntries(literals, patterns int) []domain.RuleEntry {
	out := make([]domain.RuleEntry, 0, literals+patterns)
	for i := 0; i < literals; i++ {
		out = append(out, domain.RuleEntry{Number: fmt.Sprintf("+1555%07d", i), Calls: true, AddedAt: time.Unix(1, 0)})
	}
	for i := 0; i < patterns; i++ {
		out = append(out, domain.RuleEntry{Number: fmt.Sprintf("+1%03d%%", 200+i), IsRegex: true, Calls: true, AddedAt: time.Unix(1, 0)})
	}
	return out
}

func BenchmarkBolt_Query_Literal(b *testing.B) {
	st := benchBuildStore(b, benchEntries(1000, 0))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = st.Query(fmt.Sprintf("+1555%07d", i%1000), false)
	}
}

func BenchmarkBolt_Query_Patterns(b *testing.B) {
	st := benchBuildStore(b, benchEntries(1000, 100))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = st.Query("+12505550100", true)
	}
}

func BenchmarkBolt_Upsert(b *testing.B) {
	st := benchBuildStore(b, nil)
	calls := true
	now := time.Unix(1, 0)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = st.Upsert(rules.Update{
			Number: fmt.Sprintf("+1555%07d", i%1000),
			Fields: domain.RuleFields{Calls: &calls},
		}, now)
	}
}
