// Package settings holds the blacklist feature toggles in a koanf instance.
package settings

import (
	"fmt"
	"sync"

	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Values is the initial settings snapshot, typically built from config.
type Values struct {
	Enabled           int `koanf:"phone_blacklist_enabled"`
	NotifyEnabled     int `koanf:"phone_blacklist_notify_enabled"`
	PrivateNumberMode int `koanf:"phone_blacklist_private_number_mode"`
	UnknownNumberMode int `koanf:"phone_blacklist_unknown_number_mode"`
	RegexEnabled      int `koanf:"phone_blacklist_regex_enabled"`
}

// Store is a concurrency-safe settings store. Keys are flat; the koanf path
// delimiter never appears in them.
type Store struct {
	mu sync.RWMutex
	k  *koanf.Koanf
}

// New returns a Store seeded with initial.
func New(initial Values) (*Store, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(initial, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("error loading settings: %w", err)
	}
	return &Store{k: k}, nil
}

// GetBool returns the setting as a boolean (non-zero is true), or def when unset.
func (s *Store) GetBool(key string, def bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.k.Exists(key) {
		return def
	}
	return s.k.Int(key) != 0
}

// GetBitmask returns the setting as an integer mask, or def when unset.
func (s *Store) GetBitmask(key string, def int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.k.Exists(key) {
		return def
	}
	return s.k.Int(key)
}

// SetInt writes an integer setting.
func (s *Store) SetInt(key string, v int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.k.Set(key, v)
}

// SetBool writes a boolean setting as 0/1.
func (s *Store) SetBool(key string, v bool) error {
	n := 0
	if v {
		n = 1
	}
	return s.SetInt(key, n)
}

// All returns a copy of every setting.
func (s *Store) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.k.All()
}
