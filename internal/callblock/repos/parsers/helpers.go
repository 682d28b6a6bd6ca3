package parsers

import (
	"strings"

	"github.com/haukened/rr-callblock/internal/callblock/domain"
)

// ClassifyFunc normalizes a raw number and reports whether it may be stored.
type ClassifyFunc func(raw string) (string, bool)

// stripLine removes a BOM, inline '#' comments and surrounding whitespace.
func stripLine(line string) string {
	line = strings.TrimPrefix(line, "\uFEFF")
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

// modeFromToken maps a trailing rule keyword to its block mask.
// "allow" yields an empty mask, i.e. a whitelist entry.
func modeFromToken(tok string) (domain.ModeMask, bool) {
	switch strings.ToLower(tok) {
	case "calls", "call", "phone":
		return domain.MaskCalls, true
	case "messages", "message", "sms":
		return domain.MaskMessages, true
	case "both", "all", "block":
		return domain.MaskAll, true
	case "allow", "whitelist", "none":
		return domain.MaskNone, true
	default:
		return 0, false
	}
}

// splitRule separates the number from an optional trailing keyword. Numbers
// may themselves contain spaces, e.g. "+1 650 253 0000 calls".
func splitRule(line string) (string, domain.ModeMask) {
	fields := strings.Fields(line)
	if len(fields) > 1 {
		if mask, ok := modeFromToken(fields[len(fields)-1]); ok {
			return strings.Join(fields[:len(fields)-1], " "), mask
		}
	}
	return line, domain.MaskAll
}
