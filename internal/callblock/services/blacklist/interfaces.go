package blacklist

import (
	"github.com/haukened/rr-callblock/internal/callblock/domain"
	"github.com/haukened/rr-callblock/internal/callblock/repos/rules"
)

// RuleSource is the rule storage the service reads and writes.
// rules.Repository satisfies it.
type RuleSource interface {
	Query(number string, useRegex bool) ([]domain.RuleEntry, error)
	Update(u rules.Update) (int, error)
	Remove(number string) (bool, error)
}

// SettingsStore holds the feature toggles. Missing keys yield def.
type SettingsStore interface {
	GetBool(key string, def bool) bool
	GetBitmask(key string, def int) int
}

// IdentityLookup resolves a caller number to a known contact.
// found is false when no identity exists for the number.
type IdentityLookup interface {
	Lookup(number string) (id domain.Identity, found bool, err error)
}

// Normalizer converts raw input to the stored number form.
type Normalizer interface {
	Normalize(input string) (string, bool)
}
