package normalize

import "unicode"

// digitValue returns the decimal value of a digit in any numeral system
// (Unicode category Nd). Nd ranges are laid out in runs of ten starting at
// zero, so the value is the offset into the range modulo ten.
func digitValue(c rune) (int, bool) {
	if c >= '0' && c <= '9' {
		return int(c - '0'), true
	}
	if c < 0x80 || !unicode.IsDigit(c) {
		return 0, false
	}
	for _, r := range unicode.Nd.R16 {
		if c >= rune(r.Lo) && c <= rune(r.Hi) {
			return offsetValue(c, rune(r.Lo), rune(r.Stride))
		}
	}
	for _, r := range unicode.Nd.R32 {
		if c >= rune(r.Lo) && c <= rune(r.Hi) {
			return offsetValue(c, rune(r.Lo), rune(r.Stride))
		}
	}
	return 0, false
}

func offsetValue(c, lo, stride rune) (int, bool) {
	if stride <= 0 || (c-lo)%stride != 0 {
		return 0, false
	}
	return int(((c - lo) / stride) % 10), true
}

// IsISODigits reports whether s consists only of ASCII digits 0-9.
// The empty string qualifies.
func IsISODigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
