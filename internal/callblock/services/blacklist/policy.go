package blacklist

import "github.com/haukened/rr-callblock/internal/callblock/domain"

// Setting defaults applied when a key is absent from the store.
const (
	defaultEnabled      = true
	defaultNotify       = true
	defaultPrivateMode  = 0
	defaultUnknownMode  = 0
	defaultRegexEnabled = false
)

// LoadPolicy reads every blacklist toggle from settings in one pass.
// A nil store yields domain.DefaultPolicy.
func LoadPolicy(settings SettingsStore) domain.PolicyFlags {
	if settings == nil {
		return domain.DefaultPolicy()
	}
	private := domain.ModeMask(settings.GetBitmask(domain.SettingPrivateNumberMode, defaultPrivateMode))
	unknown := domain.ModeMask(settings.GetBitmask(domain.SettingUnknownNumberMode, defaultUnknownMode))
	return domain.PolicyFlags{
		Enabled:         settings.GetBool(domain.SettingEnabled, defaultEnabled),
		Notify:          settings.GetBool(domain.SettingNotifyEnabled, defaultNotify),
		PrivateCalls:    private.Has(domain.ModeCalls),
		PrivateMessages: private.Has(domain.ModeMessages),
		UnknownCalls:    unknown.Has(domain.ModeCalls),
		UnknownMessages: unknown.Has(domain.ModeMessages),
		RegexEnabled:    settings.GetBool(domain.SettingRegexEnabled, defaultRegexEnabled),
	}
}
