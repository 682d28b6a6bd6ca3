package normalize

import "strings"

const (
	// WildcardAny matches any run of characters, including none.
	WildcardAny = '%'
	// WildcardOne matches exactly one character.
	WildcardOne = '_'
)

// IsPattern reports whether a canonical number contains wildcards.
func IsPattern(canonical string) bool {
	return strings.IndexByte(canonical, WildcardAny) >= 0 ||
		strings.IndexByte(canonical, WildcardOne) >= 0
}

// ClassifyInput normalizes raw with normalize and decides whether it may be
// stored as a rule. Patterns are always accepted. Literals must either format
// to E.164 or already be a plain ASCII digit string.
func ClassifyInput(raw string, normalize NormalizeFunc) (string, bool) {
	number, isE164 := normalize(raw)
	if IsPattern(number) {
		return number, true
	}
	if !isE164 && !IsISODigits(raw) {
		return number, false
	}
	return number, true
}

// ClassifyInput validates raw using n.Normalize.
func (n *Normalizer) ClassifyInput(raw string) (string, bool) {
	return ClassifyInput(raw, n.Normalize)
}
