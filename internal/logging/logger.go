// =============================================================================
// Picking List Generator - Logging Module
// =============================================================================
//
// Every component logs through the Logger interface. The default
// implementation writes leveled, printf-style lines to stdout and, when a
// log file is configured, to that file as well.
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Logger is an interface for logging.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config value to a Level. Unknown values mean info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// =============================================================================
// LEVELED LOGGER
// =============================================================================

// LevelLogger writes messages at or above its level.
type LevelLogger struct {
	mu     sync.Mutex
	level  Level
	out    *log.Logger
	closer io.Closer
}

// New returns a logger writing to w.
func New(w io.Writer, level Level) *LevelLogger {
	return &LevelLogger{
		level: level,
		out:   log.New(w, "", log.LstdFlags),
	}
}

// NewFromConfig returns a logger writing to stdout and, if logFile is set,
// appending to that file. verbose forces the debug level.
//
// PARAMETERS:
//   - logFile: Optional path of a log file.
//   - level: The configured level name.
//   - verbose: The --verbose flag.
//
// RETURNS:
//   - The logger. Call Close when done to release the log file.
//   - An error if the log file cannot be opened.
func NewFromConfig(logFile, level string, verbose bool) (*LevelLogger, error) {
	lvl := ParseLevel(level)
	if verbose {
		lvl = LevelDebug
	}

	if logFile == "" {
		return New(os.Stdout, lvl), nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := New(io.MultiWriter(os.Stdout, f), lvl)
	l.closer = f
	return l, nil
}

// Close releases the log file, if any.
func (l *LevelLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Enabled reports whether messages at lvl are written.
func (l *LevelLogger) Enabled(lvl Level) bool {
	return lvl >= l.level
}

func (l *LevelLogger) logf(lvl Level, msg string, args ...interface{}) {
	if !l.Enabled(lvl) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Printf("["+lvl.String()+"] "+msg, args...)
}

func (l *LevelLogger) Debug(msg string, args ...interface{}) {
	l.logf(LevelDebug, msg, args...)
}

func (l *LevelLogger) Info(msg string, args ...interface{}) {
	l.logf(LevelInfo, msg, args...)
}

func (l *LevelLogger) Warn(msg string, args ...interface{}) {
	l.logf(LevelWarn, msg, args...)
}

func (l *LevelLogger) Error(msg string, args ...interface{}) {
	l.logf(LevelError, msg, args...)
}

// =============================================================================
// DISCARD LOGGER
// =============================================================================

// Discard drops every message. Tests and library callers use it.
var Discard Logger = discard{}

type discard struct{}

func (discard) Debug(string, ...interface{}) {}

func (discard) Info(string, ...interface{}) {}

func (discard) Warn(string, ...interface{}) {}

func (discard) Error(string, ...interface{}) {}
