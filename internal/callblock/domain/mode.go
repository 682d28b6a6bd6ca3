package domain

import (
	"fmt"
	"strings"
)

// CheckMode selects which kind of incoming event is being checked.
// The values double as the bit used for the mode in a ModeMask.
type CheckMode uint8

const (
	// ModeCalls checks an incoming voice call.
	ModeCalls CheckMode = 1 << 0
	// ModeMessages checks an incoming text message.
	ModeMessages CheckMode = 1 << 1
)

// IsValid reports whether m is exactly one of the supported modes.
func (m CheckMode) IsValid() bool {
	return m == ModeCalls || m == ModeMessages
}

// String returns a stable string representation of the mode.
func (m CheckMode) String() string {
	switch m {
	case ModeCalls:
		return "calls"
	case ModeMessages:
		return "messages"
	default:
		return fmt.Sprintf("CheckMode(%d)", m)
	}
}

// Mask returns the single-bit mask for the mode.
func (m CheckMode) Mask() ModeMask { return ModeMask(m) }

// ParseCheckMode converts "calls" or "messages" (case-insensitive) into a CheckMode.
func ParseCheckMode(s string) (CheckMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "calls", "call", "phone":
		return ModeCalls, nil
	case "messages", "message", "sms":
		return ModeMessages, nil
	default:
		return 0, fmt.Errorf("unsupported CheckMode: %q", s)
	}
}

// ModeMask is a set of CheckMode bits. It is used for per-mode block flags
// on rule updates and for the private/unknown number settings.
type ModeMask uint8

const (
	MaskNone     ModeMask = 0
	MaskCalls             = ModeMask(ModeCalls)
	MaskMessages          = ModeMask(ModeMessages)
	MaskAll               = MaskCalls | MaskMessages
)

// Has reports whether the bit for mode is set.
func (m ModeMask) Has(mode CheckMode) bool {
	return m&mode.Mask() != 0
}

// String renders the mask as "none", "calls", "messages" or "calls|messages".
func (m ModeMask) String() string {
	var parts []string
	if m.Has(ModeCalls) {
		parts = append(parts, ModeCalls.String())
	}
	if m.Has(ModeMessages) {
		parts = append(parts, ModeMessages.String())
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
