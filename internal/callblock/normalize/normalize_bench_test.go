package normalize

import "testing"

func BenchmarkNormalize_Canonical(b *testing.B) {
	n := New(nil, WithFormatter(&failingFormatter{}))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		n.Normalize("+1 (650) 253-0000")
	}
}

func BenchmarkNormalize_E164(b *testing.B) {
	n := New(stubCountry{locale: "US"})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		n.Normalize("1-800-FLOWERS")
	}
}
