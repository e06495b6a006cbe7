package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withOutput points the package output at buf for the duration of a test.
func withOutput(t *testing.T, buf *bytes.Buffer, levelName string) {
	t.Helper()
	outputMu.Lock()
	prevOut, prevLevel := output, level
	outputMu.Unlock()

	SetOutput(buf)
	require.NoError(t, SetLevel(levelName))

	t.Cleanup(func() {
		outputMu.Lock()
		output, level = prevOut, prevLevel
		outputMu.Unlock()
	})
}

func TestEnvLogger_Debug(t *testing.T) {
	tests := []struct {
		name      string
		envValue  string
		expectLog bool
	}{
		{
			name:      "logs when FLEETDASH_DEBUG is set",
			envValue:  "1",
			expectLog: true,
		},
		{
			name:      "logs when FLEETDASH_DEBUG is any value",
			envValue:  "true",
			expectLog: true,
		},
		{
			name:      "does not log when FLEETDASH_DEBUG is empty",
			envValue:  "",
			expectLog: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			withOutput(t, &buf, "info")
			t.Setenv(DebugEnv, tt.envValue)

			l := NewEnvLogger("test")
			l.Debug("test message %s", "arg")

			if tt.expectLog {
				assert.Contains(t, buf.String(), "test message arg")
				assert.Contains(t, buf.String(), "test")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestEnvLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	withOutput(t, &buf, "info")
	t.Setenv(DebugEnv, "")

	l := NewEnvLogger("store")
	l.Info("info message %d", 42)
	l.Warn("warning message")
	l.Error("error message")

	out := buf.String()
	assert.Contains(t, out, "store")
	assert.Contains(t, out, "info message 42")
	assert.Contains(t, out, "warning message")
	assert.Contains(t, out, "error message")
	assert.Contains(t, strings.ToUpper(out), "WARN")
	assert.Contains(t, strings.ToUpper(out), "ERRO")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	withOutput(t, &buf, "warn")
	t.Setenv(DebugEnv, "")

	l := NewEnvLogger("")
	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	assert.Error(t, SetLevel("loud"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		expect  log.Level
		wantErr bool
	}{
		{"debug", log.DebugLevel, false},
		{"INFO", log.InfoLevel, false},
		{"", log.InfoLevel, false},
		{"warning", log.WarnLevel, false},
		{"error", log.ErrorLevel, false},
		{"trace", log.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "api", log.ErrorLevel)

	l.Warn("dropped")
	l.Error("kept %s", "this")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept this")
}

func TestNoopLogger(t *testing.T) {
	var buf bytes.Buffer
	withOutput(t, &buf, "debug")

	l := Noop()
	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	assert.Empty(t, buf.String(), "noop logger should not produce any output")
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("debug %s", "msg")
	l.Info("info %s", "msg")
	l.Warn("warn %s", "msg")
	l.Error("error %s", "msg")

	require.Len(t, l.Messages, 4)

	assert.Equal(t, "debug", l.Messages[0].Level)
	assert.Equal(t, "debug msg", l.Messages[0].Message)

	assert.Equal(t, "info", l.Messages[1].Level)
	assert.Equal(t, "warn", l.Messages[2].Level)

	assert.Equal(t, "error", l.Messages[3].Level)
	assert.Equal(t, "error msg", l.Messages[3].Message)

	assert.Len(t, l.Snapshot(), 4)
}

func TestBufferLogger_HasLevel(t *testing.T) {
	l := NewBufferLogger()

	assert.False(t, l.HasLevel("debug"))
	assert.False(t, l.HasLevel("error"))

	l.Debug("test")
	assert.True(t, l.HasLevel("debug"))
	assert.False(t, l.HasLevel("error"))

	l.Error("test")
	assert.True(t, l.HasLevel("error"))
}

func TestBufferLogger_Clear(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("test1")
	l.Info("test2")
	require.Len(t, l.Messages, 2)

	l.Clear()
	assert.Empty(t, l.Messages)
}

func TestDefault(t *testing.T) {
	original := defaultLogger
	defer func() { defaultLogger = original }()

	assert.NotNil(t, Default())

	buf := NewBufferLogger()
	SetDefault(buf)

	assert.Equal(t, buf, Default())
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = NewEnvLogger("")
	var _ Logger = Noop()
	var _ Logger = NewBufferLogger()
}
