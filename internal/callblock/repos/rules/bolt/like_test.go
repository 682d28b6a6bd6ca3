package bolt

import "testing"

func TestLikeMatch(t *testing.T) {
	cases := []struct {
		pattern string
		s       string
		want    bool
	}{
		{"", "", true},
		{"%", "", true},
		{"%", "anything", true},
		{"555%", "555", true},
		{"555%", "5551234", true},
		{"555%", "5561234", false},
		{"%1234", "5551234", true},
		{"%1234", "55512345", false},
		{"5_5", "505", true},
		{"5_5", "55", false},
		{"5_5", "5005", false},
		{"+1%55%", "+1235459", false},
		{"+1%55%", "+1235595", true},
		{"%5%5%", "x5y5z", true},
		{"___", "123", true},
		{"___", "1234", false},
		{"1234", "1234", true},
		{"1234", "12345", false},
		{"%_", "", false},
		{"%%1", "11", true},
	}
	for _, tc := range cases {
		if got := likeMatch(tc.pattern, tc.s); got != tc.want {
			t.Errorf("likeMatch(%q, %q) = %v, want %v", tc.pattern, tc.s, got, tc.want)
		}
	}
}
