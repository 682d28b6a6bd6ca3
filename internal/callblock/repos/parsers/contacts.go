package parsers

import (
	"bufio"
	"io"
	"strings"

	logpkg "github.com/haukened/rr-callblock/internal/callblock/common/log"
	"github.com/haukened/rr-callblock/internal/callblock/domain"
	"github.com/haukened/rr-callblock/internal/callblock/normalize"
)

// ParseContactList parses "<number>[, <name>]" lines into identities.
// Patterns and lines whose number normalizes to nothing are skipped. Later
// lines for the same number replace earlier ones.
func ParseContactList(r io.Reader, normalizeFn normalize.NormalizeFunc, logger logpkg.Logger) ([]domain.Identity, error) {
	scanner := bufio.NewScanner(r)
	index := make(map[string]int)
	var out []domain.Identity
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := stripLine(scanner.Text())
		if line == "" {
			continue
		}
		raw, name, _ := strings.Cut(line, ",")
		number, _ := normalizeFn(strings.TrimSpace(raw))
		if number == "" || number == "+" || normalize.IsPattern(number) {
			logger.Debug(map[string]any{"line": lineNum}, "skip_invalid_contact")
			continue
		}
		id := domain.Identity{Number: number, Name: strings.TrimSpace(name), ContactExists: true}
		if i, ok := index[number]; ok {
			out[i] = id
			continue
		}
		index[number] = len(out)
		out = append(out, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
