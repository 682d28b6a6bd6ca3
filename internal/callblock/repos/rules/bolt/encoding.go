package bolt

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/haukened/rr-callblock/internal/callblock/domain"
)

// ErrCorruptEntry is returned when a stored value cannot be decoded.
var ErrCorruptEntry = errors.New("corrupt rule entry")

const (
	flagRegex    byte = 1 << 0
	flagCalls    byte = 1 << 1
	flagMessages byte = 1 << 2

	// flags(1) + addedAt(8) + updatedAt(8)
	headerLen = 17
)

// encodeEntry packs the non-key fields of e. The number is the bucket key.
func encodeEntry(e domain.RuleEntry) []byte {
	buf := make([]byte, headerLen+len(e.Source))
	var flags byte
	if e.IsRegex {
		flags |= flagRegex
	}
	if e.Calls {
		flags |= flagCalls
	}
	if e.Messages {
		flags |= flagMessages
	}
	buf[0] = flags
	binary.BigEndian.PutUint64(buf[1:9], uint64(e.AddedAt.UnixNano()))
	binary.BigEndian.PutUint64(buf[9:17], uint64(e.UpdatedAt.UnixNano()))
	copy(buf[headerLen:], e.Source)
	return buf
}

// decodeEntry is the inverse of encodeEntry.
func decodeEntry(key, v []byte) (domain.RuleEntry, error) {
	if len(v) < headerLen {
		return domain.RuleEntry{}, ErrCorruptEntry
	}
	flags := v[0]
	return domain.RuleEntry{
		Number:    string(key),
		IsRegex:   flags&flagRegex != 0,
		Calls:     flags&flagCalls != 0,
		Messages:  flags&flagMessages != 0,
		AddedAt:   time.Unix(0, int64(binary.BigEndian.Uint64(v[1:9]))).UTC(),
		UpdatedAt: time.Unix(0, int64(binary.BigEndian.Uint64(v[9:17]))).UTC(),
		Source:    string(v[headerLen:]),
	}, nil
}
