package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.InfoLevel, true},
		{"debug", zerolog.DebugLevel, true},
		{"INFO", zerolog.InfoLevel, true},
		{" warn ", zerolog.WarnLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"error", zerolog.ErrorLevel, true},
		{"disabled", zerolog.Disabled, true},
		{"verbose", zerolog.NoLevel, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", &buf)
	require.NoError(t, err)

	logger.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn().Int("page", 3).Msg("kept")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept", entry["message"])
	assert.EqualValues(t, 3, entry["page"])
	assert.Contains(t, entry, "time")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewConsole("debug", &buf)
	require.NoError(t, err)

	logger.Debug().Str("file", "a.pdf").Msg("opening")
	assert.Contains(t, buf.String(), "opening")
	assert.Contains(t, buf.String(), "a.pdf")
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", &buf)
	require.NoError(t, err)

	ctx := logger.WithContext(context.Background())
	zerolog.Ctx(ctx).Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")
}
