package domain

// PolicyFlags is the resolved blacklist configuration for a single check.
// It is built once from the settings store and is never mutated by the matcher.
type PolicyFlags struct {
	Enabled bool // master switch; when false nothing is ever listed
	Notify  bool

	PrivateCalls    bool // block withheld numbers for calls
	PrivateMessages bool // block withheld numbers for messages
	UnknownCalls    bool // block numbers without a contact for calls
	UnknownMessages bool // block numbers without a contact for messages

	RegexEnabled bool // allow wildcard rules to match
}

// DefaultPolicy mirrors the settings defaults: enabled and notifying, with
// every optional block and wildcard matching off.
func DefaultPolicy() PolicyFlags {
	return PolicyFlags{Enabled: true, Notify: true}
}

// PrivateNumberBlocked reports whether withheld numbers are blocked for mode.
func (p PolicyFlags) PrivateNumberBlocked(mode CheckMode) bool {
	switch mode {
	case ModeCalls:
		return p.PrivateCalls
	case ModeMessages:
		return p.PrivateMessages
	default:
		return false
	}
}

// UnknownNumberBlocked reports whether numbers without a contact are blocked for mode.
func (p PolicyFlags) UnknownNumberBlocked(mode CheckMode) bool {
	switch mode {
	case ModeCalls:
		return p.UnknownCalls
	case ModeMessages:
		return p.UnknownMessages
	default:
		return false
	}
}

// PrivateMask returns the private-number settings as a ModeMask.
func (p PolicyFlags) PrivateMask() ModeMask {
	return maskOf(p.PrivateCalls, p.PrivateMessages)
}

// UnknownMask returns the unknown-number settings as a ModeMask.
func (p PolicyFlags) UnknownMask() ModeMask {
	return maskOf(p.UnknownCalls, p.UnknownMessages)
}

func maskOf(calls, messages bool) ModeMask {
	m := MaskNone
	if calls {
		m |= MaskCalls
	}
	if messages {
		m |= MaskMessages
	}
	return m
}
