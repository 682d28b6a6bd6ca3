// Package contacts is an in-memory caller identity directory keyed by
// normalized number.
package contacts

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/haukened/rr-callblock/internal/callblock/common/log"
	"github.com/haukened/rr-callblock/internal/callblock/domain"
	"github.com/haukened/rr-callblock/internal/callblock/normalize"
	"github.com/haukened/rr-callblock/internal/callblock/repos/parsers"
)

// Directory answers identity lookups. Numbers are normalized both when stored
// and when looked up, so "(650) 253-0000" finds "+16502530000".
type Directory struct {
	mu        sync.RWMutex
	normalize normalize.NormalizeFunc
	logger    log.Logger
	byNumber  map[string]domain.Identity
}

// New returns an empty Directory.
func New(normalizeFn normalize.NormalizeFunc, logger log.Logger) *Directory {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Directory{
		normalize: normalizeFn,
		logger:    logger,
		byNumber:  make(map[string]domain.Identity),
	}
}

// Load replaces the directory contents with the contact list read from r.
func (d *Directory) Load(r io.Reader) error {
	ids, err := parsers.ParseContactList(r, d.normalize, d.logger)
	if err != nil {
		return err
	}
	m := make(map[string]domain.Identity, len(ids))
	for _, id := range ids {
		m[id.Number] = id
	}
	d.mu.Lock()
	d.byNumber = m
	d.mu.Unlock()
	d.logger.Info(map[string]any{"contacts": len(m)}, "contacts_loaded")
	return nil
}

// LoadFile loads a contact list file. An empty path leaves the directory empty.
func (d *Directory) LoadFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open contacts file: %w", err)
	}
	defer f.Close()
	return d.Load(f)
}

// Add stores a single contact. It reports false for numbers that do not
// normalize to a literal.
func (d *Directory) Add(raw, name string) bool {
	number, _ := d.normalize(raw)
	if number == "" || number == "+" || normalize.IsPattern(number) {
		return false
	}
	d.mu.Lock()
	d.byNumber[number] = domain.Identity{Number: number, Name: strings.TrimSpace(name), ContactExists: true}
	d.mu.Unlock()
	return true
}

// Lookup finds the identity for a raw caller number. Empty and withheld
// numbers are never found. The in-memory directory never returns an error.
func (d *Directory) Lookup(number string) (domain.Identity, bool, error) {
	n, _ := d.normalize(number)
	if n == "" {
		return domain.Identity{}, false, nil
	}
	d.mu.RLock()
	id, ok := d.byNumber[n]
	d.mu.RUnlock()
	return id, ok, nil
}

// Len returns the number of stored contacts.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byNumber)
}
