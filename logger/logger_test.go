package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	return entry
}

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{name: "debug", level: "debug", expected: zerolog.DebugLevel},
		{name: "warn", level: "warn", expected: zerolog.WarnLevel},
		{name: "disabled", level: "disabled", expected: zerolog.Disabled},
		{name: "invalid_defaults_to_info", level: "loud", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewWithWriter(tt.level, false, &bytes.Buffer{})
			assert.Equal(t, tt.expected, l.zlog.GetLevel())
		})
	}
}

func TestEventFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("debug", false, &buf)

	l.Debug().
		Str("method", "GetAll").
		Int("args", 2).
		Int64("rows", 3).
		Dur("elapsed", 5*time.Millisecond).
		Interface("kind", "query").
		Err(errors.New("boom")).
		Msg("dispatched")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "GetAll", entry["method"])
	assert.EqualValues(t, 2, entry["args"])
	assert.EqualValues(t, 3, entry["rows"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "dispatched", entry["message"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("warn", false, &buf)

	l.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	l.Warn().Msgf("visible %d", 1)
	assert.Equal(t, "visible 1", decodeLine(t, &buf)["message"])
}

func TestWithFieldsMasksSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("info", false, &buf)

	l.WithFields(map[string]any{"password": "hunter2", "host": "db"}).Info().Msg("connecting")

	entry := decodeLine(t, &buf)
	assert.Equal(t, DefaultMaskValue, entry["password"])
	assert.Equal(t, "db", entry["host"])
}

func TestStrMasksSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("info", false, &buf)

	l.Info().Str("dsn", "postgres://app:s3cret@db:5432/items").Msg("open")

	assert.Equal(t, "postgres://app:***@db:5432/items", decodeLine(t, &buf)["dsn"])
}

func TestWithContextWithoutLoggerReturnsSelf(t *testing.T) {
	l := NewWithWriter("info", false, &bytes.Buffer{})
	assert.Same(t, l, l.WithContext(context.Background()))
	assert.Same(t, l, l.WithContext("not a context"))
}

func TestWithContextUsesAttachedLogger(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).With().Str("request_id", "r-1").Logger()
	ctx := zl.WithContext(context.Background())

	l := NewWithWriter("info", false, &bytes.Buffer{})
	l.WithContext(ctx).Info().Msg("scoped")

	assert.Equal(t, "r-1", decodeLine(t, &buf)["request_id"])
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() {
		l.Error().Str("k", "v").Err(errors.New("x")).Msg("dropped")
	})
}
