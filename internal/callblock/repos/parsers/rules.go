package parsers

import (
	"bufio"
	"io"
	"time"

	logpkg "github.com/haukened/rr-callblock/internal/callblock/common/log"
	"github.com/haukened/rr-callblock/internal/callblock/domain"
	"github.com/haukened/rr-callblock/internal/callblock/normalize"
)

// ParseRuleList parses a newline-delimited rule list into RuleEntry values.
//
// Behavior:
//   - Each line is "<number-or-pattern> [calls|messages|both|allow]"; the default is both
//   - Supports comments starting with '#' (inline or whole-line)
//   - Numbers are normalized and validated with classify; invalid lines are skipped
//   - De-duplicates by normalized number, the first occurrence wins
//   - Each rule is attributed to source and timestamped with now
func ParseRuleList(r io.Reader, source string, classify ClassifyFunc, logger logpkg.Logger, now time.Time) ([]domain.RuleEntry, error) {
	scanner := bufio.NewScanner(r)
	seen := make(map[string]struct{})
	out := make([]domain.RuleEntry, 0, 64)
	logger.Debug(map[string]any{"source": source}, "parse_rule_list_start")
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := stripLine(scanner.Text())
		if line == "" {
			continue
		}

		raw, mask := splitRule(line)
		number, valid := classify(raw)
		if !valid || number == "" {
			logger.Debug(map[string]any{"line": lineNum, "raw": logpkg.MaskNumber(raw)}, "skip_invalid_number")
			continue
		}
		if _, ok := seen[number]; ok {
			logger.Debug(map[string]any{"line": lineNum, "number": logpkg.MaskNumber(number)}, "skip_duplicate")
			continue
		}

		rule, err := domain.NewRuleEntry(number, normalize.IsPattern(number), mask, source, now)
		if err != nil {
			logger.Debug(map[string]any{"line": lineNum, "error": err.Error()}, "skip_constructor_error")
			continue
		}
		out = append(out, rule)
		seen[number] = struct{}{}
	}

	if err := scanner.Err(); err != nil {
		logger.Debug(map[string]any{"source": source, "error": err.Error()}, "parse_rule_list_scan_error")
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "count": len(out)}, "parse_rule_list_done")
	return out, nil
}
