package bolt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-callblock/internal/callblock/domain"
)

func TestEncodeDecodeEntry(t *testing.T) {
	added := time.Date(2023, 3, 4, 5, 6, 7, 8, time.UTC)
	e := domain.RuleEntry{
		Number:    "+1555%",
		IsRegex:   true,
		Messages:  true,
		Source:    "import:list.txt",
		AddedAt:   added,
		UpdatedAt: added.Add(time.Minute),
	}
	got, err := decodeEntry([]byte(e.Number), encodeEntry(e))
	require.NoError(t, err)
	assert.Equal(t, e.Number, got.Number)
	assert.True(t, got.IsRegex)
	assert.False(t, got.Calls)
	assert.True(t, got.Messages)
	assert.Equal(t, e.Source, got.Source)
	assert.True(t, got.AddedAt.Equal(e.AddedAt))
	assert.True(t, got.UpdatedAt.Equal(e.UpdatedAt))
}

func TestDecodeEntry_Short(t *testing.T) {
	_, err := decodeEntry([]byte("1"), []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrCorruptEntry)
}
