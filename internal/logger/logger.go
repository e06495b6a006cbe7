// Package logger provides a simple logging interface for fleetdash components.
// It allows packages to log debug, info, warn, and error messages without
// being coupled to a specific logging implementation.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// DebugEnv turns on debug output when set to any non-empty value.
const DebugEnv = "FLEETDASH_DEBUG"

var (
	outputMu sync.Mutex
	output   io.Writer = os.Stderr
	level              = log.InfoLevel
)

// SetOutput changes where loggers created afterwards write.
// The dashboard points this at a file so log lines don't tear the TUI.
func SetOutput(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	if w == nil {
		w = io.Discard
	}
	output = w
}

// SetLevel changes the minimum level for loggers created afterwards.
// Accepts debug, info, warn, or error.
func SetLevel(name string) error {
	parsed, err := ParseLevel(name)
	if err != nil {
		return err
	}
	outputMu.Lock()
	defer outputMu.Unlock()
	level = parsed
	return nil
}

// ParseLevel converts a level name to a log level.
func ParseLevel(name string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q (use debug, info, warn, or error)", name)
	}
}

// charmLogger implements Logger on top of charmbracelet/log.
type charmLogger struct {
	l *log.Logger
}

// New creates a logger writing to w at the given level.
// The prefix is shown before every message (e.g., "store" or "poller").
func New(w io.Writer, prefix string, lvl log.Level) Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
	})
	return &charmLogger{l: l}
}

// NewEnvLogger creates a logger using the package output and level.
// Debug messages are printed only when FLEETDASH_DEBUG is set or the
// level was lowered with SetLevel.
func NewEnvLogger(prefix string) Logger {
	outputMu.Lock()
	w, lvl := output, level
	outputMu.Unlock()

	if os.Getenv(DebugEnv) != "" {
		lvl = log.DebugLevel
	}
	return New(w, prefix, lvl)
}

func (c *charmLogger) Debug(format string, args ...interface{}) {
	c.l.Debugf(format, args...)
}

func (c *charmLogger) Info(format string, args ...interface{}) {
	c.l.Infof(format, args...)
}

func (c *charmLogger) Warn(format string, args ...interface{}) {
	c.l.Warnf(format, args...)
}

func (c *charmLogger) Error(format string, args ...interface{}) {
	c.l.Errorf(format, args...)
}

// noopLogger implements Logger but discards all messages.
// Useful for testing or when logging is not desired.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
// Safe for concurrent use since the poller logs from its own goroutine.
type BufferLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.add("debug", format, args...) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.add("info", format, args...) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.add("warn", format, args...) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.add("error", format, args...) }

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the captured messages.
func (l *BufferLogger) Snapshot() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogMessage, len(l.Messages))
	copy(out, l.Messages)
	return out
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = l.Messages[:0]
}

// defaultLogger is the package-level default logger.
var defaultLogger = NewEnvLogger("")

// Default returns the default logger for the package.
func Default() Logger {
	return defaultLogger
}

// SetDefault sets the default logger for the package.
// This is useful for testing or to configure logging globally.
func SetDefault(l Logger) {
	defaultLogger = l
}
