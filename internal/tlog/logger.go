// Package tlog provides the small leveled logger used throughout the
// engine. It intentionally mirrors the standard-library-backed logger the
// teacher codebase uses everywhere (no third-party logging library is used
// anywhere in that corpus), rather than reaching for an ecosystem logging
// package that nothing in the retrieval pack actually exercises.
package tlog

import (
	"fmt"
	"log"
	"os"
)

// Level represents the severity of a log message.
type Level int

const (
	// Debug is for detailed tracing of invalidation/rebuild decisions.
	Debug Level = iota
	// Info is for general lifecycle events.
	Info
	// Warn is for recoverable anomalies.
	Warn
	// Error is for failures a caller should know about.
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is a nil-safe, leveled logger. A nil *Logger discards everything,
// so components may hold one unconditionally without checking for nil.
type Logger struct {
	level  Level
	name   string
	logger *log.Logger
}

// New creates a Logger writing to stderr at the given level.
func New(name string, level Level) *Logger {
	return &Logger{
		level:  level,
		name:   name,
		logger: log.New(os.Stderr, "", log.LstdFlags),
	}
}

// Named returns a child logger sharing the same level and output but
// reporting a sub-component name (e.g. "workspace.schema").
func (l *Logger) Named(child string) *Logger {
	if l == nil {
		return nil
	}
	name := child
	if l.name != "" {
		name = l.name + "." + child
	}
	return &Logger{level: l.level, name: name, logger: l.logger}
}

func (l *Logger) log(level Level, format string, args ...any) {
	if l == nil || level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.name != "" {
		l.logger.Printf("[%s] %s: %s", level, l.name, msg)
		return
	}
	l.logger.Printf("[%s] %s", level, msg)
}

// Debugf logs at Debug level.
func (l *Logger) Debugf(format string, args ...any) { l.log(Debug, format, args...) }

// Infof logs at Info level.
func (l *Logger) Infof(format string, args ...any) { l.log(Info, format, args...) }

// Warnf logs at Warn level.
func (l *Logger) Warnf(format string, args ...any) { l.log(Warn, format, args...) }

// Errorf logs at Error level.
func (l *Logger) Errorf(format string, args ...any) { l.log(Error, format, args...) }
