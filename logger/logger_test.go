package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, &Config{Level: "debug", Format: "json"}, "orders")

	l.Debug("built", Fields(FieldContract, "db", FieldLifetime, "singleton"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, "built", lines[0]["message"])
	assert.Equal(t, "orders", lines[0][FieldService])
	assert.Equal(t, "db", lines[0][FieldContract])
	assert.Equal(t, "singleton", lines[0][FieldLifetime])
	assert.Equal(t, "orders", l.Service())
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, &Config{Level: "warn"}, "")

	l.Info("dropped")
	l.Warn("kept")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["message"])
	assert.False(t, l.Enabled(zerolog.InfoLevel))
	assert.True(t, l.Enabled(zerolog.ErrorLevel))
}

func TestNewWithWriter_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, &Config{Level: "loud"}, "")

	l.Debug("dropped")
	l.Info("kept")

	assert.Len(t, decodeLines(t, &buf), 1)
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, &Config{Format: "console", NoColor: true}, "")

	l.Info("hello", Fields("k", "v"))

	out := buf.String()
	assert.Contains(t, out, "[INF]")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "k:")
}

func TestWithComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, &Config{}, "")

	base.WithComponent("di").
		WithFields(map[string]any{FieldScopeID: "root"}).
		WithError(errors.New("boom")).
		Error("failed")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "di", lines[0][FieldComponent])
	assert.Equal(t, "root", lines[0][FieldScopeID])
	assert.Equal(t, "boom", lines[0]["error"])
}

func TestNop(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() {
		l.Info("ignored", Fields("a", 1))
		l.WithComponent("x").Error("ignored")
	})
	assert.False(t, l.Enabled(zerolog.ErrorLevel))
}

func TestFields(t *testing.T) {
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, Fields("a", 1, "b", "two", "dangling"))
	assert.Equal(t, map[string]any{"b": 2}, Fields(42, 1, "b", 2))

	ef := ErrorFields("dispose", errors.New("closed"))
	assert.Equal(t, "dispose", ef[FieldOperation])
	assert.Equal(t, "closed", ef[FieldError])

	df := DurationFields("warm", 1500*time.Millisecond)
	assert.Equal(t, int64(1500), df[FieldDuration])
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)

	cfg = &Config{Level: "debug", Format: "console"}
	cfg.ApplyDefaults()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
}

func TestRegistry(t *testing.T) {
	var buf bytes.Buffer
	named := NewWithWriter(&buf, &Config{}, "")
	Register("test-registry", named)
	t.Cleanup(func() { Unregister("test-registry") })

	assert.Same(t, named, Get("test-registry"))
	assert.NotNil(t, Get("test-registry-missing"))
}

func TestGlobalLogger(t *testing.T) {
	prev := GetGlobalLogger()
	t.Cleanup(func() { SetGlobalLogger(prev) })

	var buf bytes.Buffer
	SetGlobalLogger(NewWithWriter(&buf, &Config{}, "global"))
	Info("via package")
	Warn("again")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "global", lines[0][FieldService])
}
