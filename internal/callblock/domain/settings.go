package domain

// Settings keys read by the blacklist. Boolean settings are stored as 0/1
// integers; the private and unknown number settings are ModeMask values.
const (
	SettingEnabled           = "phone_blacklist_enabled"
	SettingNotifyEnabled     = "phone_blacklist_notify_enabled"
	SettingPrivateNumberMode = "phone_blacklist_private_number_mode"
	SettingUnknownNumberMode = "phone_blacklist_unknown_number_mode"
	SettingRegexEnabled      = "phone_blacklist_regex_enabled"
)
