package domain

import "fmt"

// MatchResult is the final classification of a number against the blacklist.
// The values carry no ordering.
type MatchResult uint8

const (
	NoMatch MatchResult = iota
	MatchedPrivate
	MatchedUnknown
	MatchedLiteral
	MatchedPattern
)

// String returns the textual representation of the result.
func (r MatchResult) String() string {
	switch r {
	case NoMatch:
		return "none"
	case MatchedPrivate:
		return "private"
	case MatchedUnknown:
		return "unknown"
	case MatchedLiteral:
		return "list"
	case MatchedPattern:
		return "pattern"
	default:
		return fmt.Sprintf("MatchResult(%d)", r)
	}
}

// IsBlocked reports whether the result means the event should be blocked.
func (r MatchResult) IsBlocked() bool { return r != NoMatch }
