package rulefiles

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-callblock/internal/callblock/common/log"
	"github.com/haukened/rr-callblock/internal/callblock/domain"
	"github.com/haukened/rr-callblock/internal/callblock/normalize"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func classify(raw string) (string, bool) {
	return normalize.New(nil).ClassifyInput(raw)
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func byNumber(entries []domain.RuleEntry) map[string]domain.RuleEntry {
	m := make(map[string]domain.RuleEntry, len(entries))
	for _, e := range entries {
		m[e.Number] = e
	}
	return m
}

func TestLoadFile_YAML(t *testing.T) {
	p := writeFile(t, t.TempDir(), "feed.yaml", `
source: carrier
both: ["1900*"]
calls: "5550100"
messages: ["5550101", 5550102, ""]
allow: ["5550199", "not-a-number"]
`)
	entries, err := LoadFile(p, classify, log.NewNoopLogger(), testNow)
	require.NoError(t, err)
	got := byNumber(entries)
	require.Len(t, got, 4)

	assert.True(t, got["1900%"].IsRegex)
	assert.Equal(t, domain.MaskAll, got["1900%"].Mask())
	assert.Equal(t, domain.MaskCalls, got["5550100"].Mask())
	assert.Equal(t, domain.MaskMessages, got["5550101"].Mask())
	assert.True(t, got["5550199"].IsWhitelist())
	assert.Equal(t, "carrier", got["5550100"].Source)
	assert.Equal(t, testNow, got["5550100"].AddedAt)
}

func TestLoadFile_JSONAndTOML(t *testing.T) {
	dir := t.TempDir()
	j := writeFile(t, dir, "a.json", `{"calls": ["5550100"], "allow": ["5550100"]}`)
	entries, err := LoadFile(j, classify, log.NewNoopLogger(), testNow)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	// first section wins for a repeated number
	assert.Equal(t, domain.MaskCalls, entries[0].Mask())
	assert.Equal(t, "a", entries[0].Source)

	tm := writeFile(t, dir, "b.toml", "source = \"toml\"\nmessages = [\"5550111\"]\n")
	entries, err = LoadFile(tm, classify, log.NewNoopLogger(), testNow)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "toml", entries[0].Source)
	assert.Equal(t, domain.MaskMessages, entries[0].Mask())
}

func TestLoadFile_TextAndUnsupported(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "spam.txt", "5550100 calls\n555* # pattern\n")
	entries, err := LoadFile(txt, classify, log.NewNoopLogger(), testNow)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "spam", entries[0].Source)

	bin := writeFile(t, dir, "image.png", "\x89PNG")
	entries, err = LoadFile(bin, classify, log.NewNoopLogger(), testNow)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestLoadFile_MalformedStructured(t *testing.T) {
	p := writeFile(t, t.TempDir(), "bad.json", `{"calls": [`)
	_, err := LoadFile(p, classify, log.NewNoopLogger(), testNow)
	assert.Error(t, err)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "5550100 messages\n")
	writeFile(t, dir, "b.yaml", "calls: [\"5550100\", \"5550200\"]\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested"), "c.json", `{"allow": ["5550300"]}`)

	entries, err := LoadDirectory(dir, classify, log.NewNoopLogger(), testNow)
	require.NoError(t, err)
	got := byNumber(entries)
	require.Len(t, got, 3)
	assert.Equal(t, domain.MaskMessages, got["5550100"].Mask())
	assert.Equal(t, domain.MaskCalls, got["5550200"].Mask())
	assert.True(t, got["5550300"].IsWhitelist())
}

func TestLoadDirectory_PropagatesParseErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.toml", "calls = [")
	_, err := LoadDirectory(dir, classify, log.NewNoopLogger(), testNow)
	assert.Error(t, err)

	_, err = LoadDirectory(filepath.Join(dir, "missing"), classify, log.NewNoopLogger(), testNow)
	assert.Error(t, err)
}
