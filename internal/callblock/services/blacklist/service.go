// Package blacklist decides whether a call or message from a number is blocked.
//
// A check runs in a fixed order: master switch, unknown-number policy,
// private-number policy, then the rule list. Collaborator failures are logged
// and treated as "nothing found" so a check never blocks on an error.
package blacklist

import (
	"errors"

	"github.com/haukened/rr-callblock/internal/callblock/common/log"
	"github.com/haukened/rr-callblock/internal/callblock/domain"
	"github.com/haukened/rr-callblock/internal/callblock/normalize"
	"github.com/haukened/rr-callblock/internal/callblock/repos/rules"
)

// SourceManual tags rules created through AddOrUpdate.
const SourceManual = "manual"

// Options configures a Service. Rules, Settings and Normalizer are required.
type Options struct {
	Rules      RuleSource
	Settings   SettingsStore
	Identity   IdentityLookup // optional; without it the unknown-number check never matches
	Normalizer Normalizer
	Logger     log.Logger
}

// Service is stateless; every call reads the current settings.
type Service struct {
	rules      RuleSource
	settings   SettingsStore
	identity   IdentityLookup
	normalizer Normalizer
	logger     log.Logger
}

// NewService validates opts and returns a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Rules == nil {
		return nil, errors.New("blacklist: rule source is required")
	}
	if opts.Settings == nil {
		return nil, errors.New("blacklist: settings store is required")
	}
	if opts.Normalizer == nil {
		return nil, errors.New("blacklist: normalizer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Service{
		rules:      opts.Rules,
		settings:   opts.Settings,
		identity:   opts.Identity,
		normalizer: opts.Normalizer,
		logger:     logger,
	}, nil
}

// Policy returns the current settings as a PolicyFlags snapshot.
func (s *Service) Policy() domain.PolicyFlags { return LoadPolicy(s.settings) }

func (s *Service) Enabled() bool       { return s.Policy().Enabled }
func (s *Service) NotifyEnabled() bool { return s.Policy().Notify }
func (s *Service) RegexEnabled() bool  { return s.Policy().RegexEnabled }

func (s *Service) PrivateNumberBlocked(mode domain.CheckMode) bool {
	return s.Policy().PrivateNumberBlocked(mode)
}

func (s *Service) UnknownNumberBlocked(mode domain.CheckMode) bool {
	return s.Policy().UnknownNumberBlocked(mode)
}

// AddOrUpdate writes the flags of number selected by valid. It returns false
// when the blacklist is disabled, the update fails, or nothing was written.
func (s *Service) AddOrUpdate(number string, flags, valid domain.ModeMask) bool {
	if !s.Enabled() {
		return false
	}
	normalized, _ := s.normalizer.Normalize(number)
	n, err := s.rules.Update(rules.Update{
		Number:  normalized,
		IsRegex: normalize.IsPattern(normalized),
		Fields:  domain.FieldsFromMask(flags, valid),
		Source:  SourceManual,
	})
	if err != nil {
		s.logger.Warn(map[string]any{
			"number": log.MaskNumber(normalized),
			"error":  err,
		}, "blacklist_update_failed")
		return false
	}
	s.logger.Debug(map[string]any{
		"number": log.MaskNumber(normalized),
		"flags":  flags.String(),
		"valid":  valid.String(),
		"rows":   n,
	}, "blacklist_updated")
	return n > 0
}

// Remove deletes the rule stored under the normalized form of number.
func (s *Service) Remove(number string) (bool, error) {
	normalized, _ := s.normalizer.Normalize(number)
	return s.rules.Remove(normalized)
}

// IsValidInput normalizes raw and reports whether it may be stored as a rule.
func (s *Service) IsValidInput(raw string) (string, bool) {
	return normalize.ClassifyInput(raw, s.normalizer.Normalize)
}

// IsListed classifies number for mode. number is the raw caller ID; an empty
// string means the caller withheld it.
func (s *Service) IsListed(number string, mode domain.CheckMode) domain.MatchResult {
	policy := s.Policy()
	if !policy.Enabled {
		return domain.NoMatch
	}
	if !mode.IsValid() {
		s.logger.Error(map[string]any{"mode": uint8(mode)}, "blacklist_invalid_mode")
		return domain.NoMatch
	}
	res := s.check(number, mode, policy)
	s.logger.Debug(map[string]any{
		"number": log.MaskNumber(number),
		"mode":   mode.String(),
		"result": res.String(),
	}, "blacklist_checked")
	return res
}

func (s *Service) check(number string, mode domain.CheckMode, policy domain.PolicyFlags) domain.MatchResult {
	if policy.UnknownNumberBlocked(mode) && s.isUnknown(number) {
		return domain.MatchedUnknown
	}

	if number == "" {
		if policy.PrivateNumberBlocked(mode) {
			return domain.MatchedPrivate
		}
		return domain.NoMatch
	}

	normalized, _ := s.normalizer.Normalize(number)
	rows, err := s.rules.Query(normalized, policy.RegexEnabled)
	if err != nil {
		s.logger.Warn(map[string]any{
			"number": log.MaskNumber(normalized),
			"error":  err,
		}, "blacklist_query_failed")
		return domain.NoMatch
	}
	return foldRows(rows, mode)
}

// isUnknown reports whether number has no contact. A failed lookup is not
// evidence either way, so it reports false.
func (s *Service) isUnknown(number string) bool {
	if s.identity == nil {
		return false
	}
	id, found, err := s.identity.Lookup(number)
	if err != nil {
		s.logger.Warn(map[string]any{
			"number": log.MaskNumber(number),
			"error":  err,
		}, "identity_lookup_failed")
		return false
	}
	return !found || !id.ContactExists
}
