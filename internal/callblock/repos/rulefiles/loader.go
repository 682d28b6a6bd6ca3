// Package rulefiles loads blacklist rules from files in text, YAML, JSON or TOML form.
//
// Structured files name a source and list numbers per block mode:
//
//	source: carrier-feed
//	both: ["+1900*"]
//	calls: ["+18005550100"]
//	messages: []
//	allow: ["+16502530000"]
package rulefiles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	logpkg "github.com/haukened/rr-callblock/internal/callblock/common/log"
	"github.com/haukened/rr-callblock/internal/callblock/domain"
	"github.com/haukened/rr-callblock/internal/callblock/normalize"
	"github.com/haukened/rr-callblock/internal/callblock/repos/parsers"
)

// sections maps structured-file keys to block masks, in load order.
var sections = []struct {
	key  string
	mask domain.ModeMask
}{
	{"both", domain.MaskAll},
	{"calls", domain.MaskCalls},
	{"messages", domain.MaskMessages},
	{"allow", domain.MaskNone},
}

// LoadDirectory walks dir and loads every supported rule file. A number listed
// in more than one file keeps the first entry in lexical path order.
func LoadDirectory(dir string, classify parsers.ClassifyFunc, logger logpkg.Logger, now time.Time) ([]domain.RuleEntry, error) {
	seen := make(map[string]struct{})
	var out []domain.RuleEntry

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		entries, err := LoadFile(path, classify, logger, now)
		if err != nil {
			return fmt.Errorf("error parsing rule file %s: %w", path, err)
		}
		for _, e := range entries {
			if _, dup := seen[e.Number]; dup {
				continue
			}
			seen[e.Number] = struct{}{}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadFile loads a single rule file, choosing the format by extension.
// Unsupported extensions yield no entries and no error.
func LoadFile(path string, classify parsers.ClassifyFunc, logger logpkg.Logger, now time.Time) ([]domain.RuleEntry, error) {
	source := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".list", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return parsers.ParseRuleList(f, source, classify, logger, now)
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	case ".toml":
		parser = toml.Parser()
	default:
		return nil, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load rule file %s: %w", path, err)
	}
	if s := strings.TrimSpace(k.String("source")); s != "" {
		source = s
	}

	raw := k.Raw()
	seen := make(map[string]struct{})
	var out []domain.RuleEntry
	for _, sec := range sections {
		for _, v := range toStringValues(raw[sec.key]) {
			number, ok := classify(v)
			if !ok || number == "" {
				logger.Debug(map[string]any{"file": path, "raw": logpkg.MaskNumber(v)}, "skip_invalid_number")
				continue
			}
			if _, dup := seen[number]; dup {
				continue
			}
			e, err := domain.NewRuleEntry(number, normalize.IsPattern(number), sec.mask, source, now)
			if err != nil {
				return nil, fmt.Errorf("invalid rule in %s: %w", path, err)
			}
			seen[number] = struct{}{}
			out = append(out, e)
		}
	}
	return out, nil
}

// toStringValues converts a parsed value (string or list) into non-empty
// strings. Non-string elements, including unquoted numbers, are skipped.
func toStringValues(val any) []string {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		return []string{s}
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
