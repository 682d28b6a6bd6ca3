package blacklist

import "github.com/haukened/rr-callblock/internal/callblock/domain"

// scan is the running state of a fold over matching rule rows.
type scan struct {
	result      domain.MatchResult
	whitelisted bool
}

// next folds one row into the state. stop is true once a blocking literal
// row has been seen; later rows cannot change the outcome.
func (s scan) next(row domain.RuleEntry, mode domain.CheckMode) (_ scan, stop bool) {
	blocked := row.BlockedFor(mode)
	if !row.IsRegex {
		s.result = domain.MatchedLiteral
		s.whitelisted = !blocked
		return s, blocked
	}
	if blocked {
		s.result = domain.MatchedPattern
	}
	return s, false
}

// final resolves the state. A non-blocking literal row overrides everything.
func (s scan) final() domain.MatchResult {
	if s.whitelisted {
		return domain.NoMatch
	}
	return s.result
}

// foldRows evaluates the rows returned for a number in store order.
func foldRows(rows []domain.RuleEntry, mode domain.CheckMode) domain.MatchResult {
	var s scan
	for _, row := range rows {
		var stop bool
		if s, stop = s.next(row, mode); stop {
			break
		}
	}
	return s.final()
}
