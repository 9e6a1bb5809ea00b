// Package logging provides the leveled diagnostic logger shared by the CLI
// and the HTTP server. User-facing command output does not go through it.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level represents logging verbosity. Higher levels include the lower ones.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel accepts error, warn, info or debug in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "", "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q (use error, warn, info or debug)", s)
}

var logrusLevels = map[Level]logrus.Level{
	LevelError: logrus.ErrorLevel,
	LevelWarn:  logrus.WarnLevel,
	LevelInfo:  logrus.InfoLevel,
	LevelDebug: logrus.DebugLevel,
}

// Logger provides leveled logging with optional structured fields.
type Logger struct {
	level Level
	entry *logrus.Entry
}

// New creates a logger writing text lines to w at the given level.
func New(level Level, w io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	lv, ok := logrusLevels[level]
	if !ok {
		lv = logrus.InfoLevel
	}
	l.SetLevel(lv)
	return &Logger{level: level, entry: logrus.NewEntry(l)}
}

// NewDefault creates an info logger on stderr.
func NewDefault() *Logger {
	return New(LevelInfo, os.Stderr)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(LevelError, io.Discard)
}

// Level returns the configured verbosity.
func (l *Logger) Level() Level { return l.level }

// With returns a logger that attaches key=value to every line.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{level: l.level, entry: l.entry.WithField(key, value)}
}

// Error logs error messages
func (l *Logger) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}
