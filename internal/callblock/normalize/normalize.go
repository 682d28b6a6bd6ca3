package normalize

import (
	"strings"
)

// CountryResolver supplies the region used for E.164 formatting.
// The network (SIM) country wins over the locale region when present.
type CountryResolver interface {
	NetworkCountryCode() (string, bool)
	LocaleRegion() string
}

// KeypadMapper rewrites keypad letters into their digits, e.g. "FLOWERS" -> "3569377".
type KeypadMapper interface {
	LettersToDigits(s string) string
}

// E164Formatter formats a canonical number for region, reporting success.
type E164Formatter interface {
	Format(number, region string) (string, bool)
}

// NormalizeFunc is the shape of Normalizer.Normalize, used where only the
// function is needed.
type NormalizeFunc func(input string) (string, bool)

// Normalizer canonicalizes phone numbers. It holds no mutable state and is safe
// for concurrent use as long as its collaborators are.
type Normalizer struct {
	country   CountryResolver
	keypad    KeypadMapper
	formatter E164Formatter
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithKeypadMapper overrides the keypad letter mapping.
func WithKeypadMapper(m KeypadMapper) Option {
	return func(n *Normalizer) { n.keypad = m }
}

// WithFormatter overrides the E.164 formatter.
func WithFormatter(f E164Formatter) Option {
	return func(n *Normalizer) { n.formatter = f }
}

// New returns a Normalizer backed by libphonenumber metadata. country may be
// nil, in which case only numbers already carrying a '+' country prefix can be
// formatted to E.164.
func New(country CountryResolver, opts ...Option) *Normalizer {
	n := &Normalizer{
		country:   country,
		keypad:    PhoneKeypad{},
		formatter: PhoneNumbersFormatter{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize returns the E.164 form of input and true when formatting
// succeeded, or the canonical form and false otherwise.
func (n *Normalizer) Normalize(input string) (string, bool) {
	canonical := n.Canonicalize(input)
	if e164, ok := n.ToE164(canonical); ok {
		return e164, true
	}
	return canonical, false
}

// Canonicalize applies the character rules without E.164 formatting:
//   - any-script decimal digits become ASCII digits
//   - '+' is kept only as the first output character
//   - '*' becomes '%', '.' becomes '_', and '%' or '_' pass through
//   - everything else is dropped
//
// An ASCII letter anywhere causes the whole input to be keypad-mapped once and
// scanned again from the start.
func (n *Normalizer) Canonicalize(input string) string {
	rewritten := false
scan:
	for {
		var b strings.Builder
		b.Grow(len(input))
		for _, c := range input {
			if d, ok := digitValue(c); ok {
				b.WriteByte(byte('0' + d))
				continue
			}
			switch {
			case isASCIILetter(c) && !rewritten:
				input = n.keypad.LettersToDigits(input)
				rewritten = true
				continue scan
			case c == '+' && b.Len() == 0:
				b.WriteRune(c)
			case c == '*':
				b.WriteByte(WildcardAny)
			case c == '.':
				b.WriteByte(WildcardOne)
			case c == WildcardAny || c == WildcardOne:
				b.WriteRune(c)
			}
		}
		return b.String()
	}
}

// ToE164 formats an already canonical number. Patterns, empty strings and a
// lone '+' are never formatted.
func (n *Normalizer) ToE164(canonical string) (string, bool) {
	if canonical == "" || canonical == "+" || IsPattern(canonical) || n.formatter == nil {
		return "", false
	}
	return n.formatter.Format(canonical, n.Region())
}

// Region returns the resolved ISO 3166 region, preferring the network country.
// It is empty when neither source yields one.
func (n *Normalizer) Region() string {
	if n.country == nil {
		return ""
	}
	if cc, ok := n.country.NetworkCountryCode(); ok && cc != "" {
		return strings.ToUpper(cc)
	}
	return strings.ToUpper(n.country.LocaleRegion())
}

func isASCIILetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
