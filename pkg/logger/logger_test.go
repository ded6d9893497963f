package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personalens/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{"info", "info", false},
		{"debug", "debug", false},
		{"empty defaults to info", "", false},
		{"disabled", "disabled", false},
		{"invalid", "loud", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewWithWriter(&config.LoggingConfig{Level: tt.level}, &bytes.Buffer{})
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid log level")
				assert.Nil(t, l)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l.GetZerolog())
		})
	}
}

func TestNewWritesToGivenWriter(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&config.LoggingConfig{Level: "debug", NoColor: true}, &buf)
	require.NoError(t, err)

	l.WithField("source", "snap.txt").Info("Snapshot loaded")

	out := buf.String()
	assert.Contains(t, out, "Snapshot loaded")
	assert.Contains(t, out, "source=snap.txt")
	assert.NotContains(t, out, "\033[", "no ANSI escapes with NoColor")
}

func TestNewWithFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "personalens.log")
	l, err := NewWithWriter(&config.LoggingConfig{Level: "info", File: path, NoColor: true}, &bytes.Buffer{})
	require.NoError(t, err)

	l.Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"written to file"`)
	assert.Contains(t, string(data), `"app":"personalens"`)
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"INFO":     zerolog.InfoLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"fatal":    zerolog.FatalLevel,
		"disabled": zerolog.Disabled,
	}
	for in, want := range cases {
		got, err := parseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseLogLevel("verbose")
	assert.Error(t, err)
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent, err := NewWithWriter(&config.LoggingConfig{Level: "info", NoColor: true}, &buf)
	require.NoError(t, err)

	child := parent.WithFields(map[string]interface{}{"worker": 3})
	parent.Info("from parent")
	assert.NotContains(t, buf.String(), "worker=3")

	buf.Reset()
	child.Info("from child")
	assert.Contains(t, buf.String(), "worker=3")
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger()

	tl.Info("started")
	tl.WithField("file", "a.txt").WithError(errors.New("boom")).Error("failed")
	tl.WarnWithFields("slow", map[string]interface{}{"duration": time.Second})

	msgs := tl.GetMessages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "INFO", msgs[0].Level)
	assert.Nil(t, msgs[0].Fields)
	assert.Equal(t, map[string]interface{}{"file": "a.txt", "error": "boom"}, msgs[1].Fields)

	assert.True(t, tl.HasError())
	assert.True(t, tl.HasMessage("slow"))
	assert.False(t, tl.HasMessage("missing"))
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 1)
	assert.Contains(t, tl.String(), "[ERROR] failed")

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
	assert.False(t, tl.HasError())
}

func TestLogExtraction(t *testing.T) {
	tl := NewTestLogger()

	LogExtraction(tl, ExtractionStats{Source: "a.txt", Strategy: "anchors", Records: 3, ContentAnchors: 4})
	LogExtraction(tl, ExtractionStats{Source: "b.txt", Strategy: "fallback"})

	msgs := tl.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "INFO", msgs[0].Level)
	assert.Equal(t, 3, msgs[0].Fields["records"])
	assert.Equal(t, "WARN", msgs[1].Level)
	assert.Equal(t, "b.txt", msgs[1].Fields["source"])
}

func TestLogBatchProgress(t *testing.T) {
	tl := NewTestLogger()
	LogBatchProgress(tl, 3, 1, 8)
	LogBatchProgress(tl, 0, 0, 0)

	msgs := tl.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "50.0%", msgs[0].Fields["percentage"])
	assert.Equal(t, "0.0%", msgs[1].Fields["percentage"])
}

func TestSetLoggerReplacesGlobal(t *testing.T) {
	prev := globalLogger
	t.Cleanup(func() { globalLogger = prev })

	tl := NewTestLogger()
	SetLogger(tl)
	Info("via global")
	WithField("k", "v").Warn("with field")

	assert.True(t, tl.HasMessage("via global"))
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 1)
}
