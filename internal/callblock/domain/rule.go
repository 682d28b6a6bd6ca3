package domain

import (
	"fmt"
	"strings"
	"time"
)

// RuleEntry is a single stored blacklist rule.
//
// Notes:
//   - Number is already normalized (see package normalize) and is the store key.
//   - IsRegex marks entries holding SQL-style wildcards ('%' any run, '_' one character).
//   - A literal entry with neither Calls nor Messages set is a whitelist entry.
type RuleEntry struct {
	Number    string
	IsRegex   bool
	Calls     bool // blocked for calls
	Messages  bool // blocked for messages
	Source    string
	AddedAt   time.Time
	UpdatedAt time.Time
}

// NewRuleEntry constructs a RuleEntry and validates its fields.
func NewRuleEntry(number string, isRegex bool, mask ModeMask, source string, addedAt time.Time) (RuleEntry, error) {
	r := RuleEntry{
		Number:    strings.TrimSpace(number),
		IsRegex:   isRegex,
		Calls:     mask.Has(ModeCalls),
		Messages:  mask.Has(ModeMessages),
		Source:    strings.TrimSpace(source),
		AddedAt:   addedAt,
		UpdatedAt: addedAt,
	}
	if err := r.Validate(); err != nil {
		return RuleEntry{}, err
	}
	return r, nil
}

// Validate checks the RuleEntry for required fields.
func (r RuleEntry) Validate() error {
	if r.Number == "" {
		return fmt.Errorf("rule number must not be empty")
	}
	if r.AddedAt.IsZero() {
		return fmt.Errorf("rule addedAt must be set")
	}
	return nil
}

// BlockedFor reports whether the entry blocks the given mode.
func (r RuleEntry) BlockedFor(mode CheckMode) bool {
	switch mode {
	case ModeCalls:
		return r.Calls
	case ModeMessages:
		return r.Messages
	default:
		return false
	}
}

// Mask returns the entry's block flags as a ModeMask.
func (r RuleEntry) Mask() ModeMask { return maskOf(r.Calls, r.Messages) }

// IsWhitelist reports whether the entry is a literal allow entry.
func (r RuleEntry) IsWhitelist() bool { return !r.IsRegex && !r.Calls && !r.Messages }

// RuleFields is a partial update of a rule's block flags. A nil field is left untouched.
type RuleFields struct {
	Calls    *bool
	Messages *bool
}

// FieldsFromMask builds the update for the requested flags, restricted to the
// bits present in valid.
func FieldsFromMask(flags, valid ModeMask) RuleFields {
	var f RuleFields
	if valid.Has(ModeCalls) {
		v := flags.Has(ModeCalls)
		f.Calls = &v
	}
	if valid.Has(ModeMessages) {
		v := flags.Has(ModeMessages)
		f.Messages = &v
	}
	return f
}

// IsEmpty reports whether the update touches no field.
func (f RuleFields) IsEmpty() bool { return f.Calls == nil && f.Messages == nil }

// Apply returns a copy of r with the present fields written.
func (f RuleFields) Apply(r RuleEntry) RuleEntry {
	if f.Calls != nil {
		r.Calls = *f.Calls
	}
	if f.Messages != nil {
		r.Messages = *f.Messages
	}
	return r
}
