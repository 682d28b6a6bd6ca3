package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	entries []string
}

func (l *recordingLogger) Debug(_ map[string]any, msg string) {
	l.entries = append(l.entries, "DEBUG:"+msg)
}
func (l *recordingLogger) Info(_ map[string]any, msg string) {
	l.entries = append(l.entries, "INFO:"+msg)
}
func (l *recordingLogger) Warn(_ map[string]any, msg string) {
	l.entries = append(l.entries, "WARN:"+msg)
}
func (l *recordingLogger) Error(_ map[string]any, msg string) {
	l.entries = append(l.entries, "ERROR:"+msg)
}
func (l *recordingLogger) Fatal(_ map[string]any, msg string) {
	l.entries = append(l.entries, "FATAL:"+msg)
}

func TestZapLogger_Levels(t *testing.T) {
	l := newZapLogger(true, -1)
	l.Debug(map[string]any{"number": MaskNumber("+15551234567"), "n": 3}, "debug")
	l.Info(nil, "info")
	l.Warn(map[string]any{"error": errors.New("boom")}, "warn")
	l.Error(nil, "error")
}

func TestSetLoggerAndGlobalLogging(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)

	rec := &recordingLogger{}
	SetLogger(rec)

	Debug(nil, "d")
	Info(nil, "i")
	Warn(nil, "w")
	Error(nil, "e")
	Fatal(nil, "f")

	assert.Equal(t, []string{"DEBUG:d", "INFO:i", "WARN:w", "ERROR:e", "FATAL:f"}, rec.entries)
	assert.Same(t, rec, GetLogger())
}

func TestConfigure(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)

	require.NoError(t, Configure("dev", "debug"))
	require.NoError(t, Configure("prod", "WARN"))
	assert.Error(t, Configure("prod", "chatty"))
}

func TestMaskNumber(t *testing.T) {
	cases := map[string]string{
		"":             "",
		"123":          "***",
		"1234":         "****",
		"+15551234567": "********4567",
		"555%":         "****",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskNumber(in), "MaskNumber(%q)", in)
	}
}

func TestNoopLogger(t *testing.T) {
	l := NewNoopLogger()
	l.Debug(nil, "x")
	l.Info(nil, "x")
	l.Warn(nil, "x")
	l.Error(nil, "x")
	l.Fatal(nil, "x")
}
