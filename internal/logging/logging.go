// Package logging provides a simple leveled logger for the Open Protocol
// client, with named child loggers so each pipeline stage (header parsing,
// Link Layer, MID registry) can tag its own output while sharing one
// level setting.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents log severity levels.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// levelState is shared between a Logger and every child produced by Named,
// so changing the level on any one of them changes it for the whole tree.
type levelState struct {
	mu    sync.RWMutex
	level Level
}

// Logger provides leveled, optionally component-tagged logging.
type Logger struct {
	state     *levelState
	logger    *log.Logger
	component string
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Default returns the default logger instance.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = newLogger(os.Stderr, "")
	})
	return defaultLogger
}

func newLogger(out io.Writer, component string) *Logger {
	return &Logger{
		state:     &levelState{level: LevelInfo},
		logger:    log.New(out, "", log.LstdFlags|log.LUTC),
		component: component,
	}
}

// Named returns a child logger tagging every line with component, nested
// under l's own component if it has one ("linklayer.retransmit"). The
// child shares l's level: SetLevel on either affects both.
func (l *Logger) Named(component string) *Logger {
	name := component
	if l.component != "" {
		name = l.component + "." + component
	}
	return &Logger{state: l.state, logger: l.logger, component: name}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.level = level
}

// SetLevelFromString sets the log level from a string.
func (l *Logger) SetLevelFromString(levelStr string) {
	switch strings.ToLower(levelStr) {
	case "debug":
		l.SetLevel(LevelDebug)
	case "info":
		l.SetLevel(LevelInfo)
	case "warn", "warning":
		l.SetLevel(LevelWarn)
	case "error":
		l.SetLevel(LevelError)
	default:
		l.SetLevel(LevelInfo)
	}
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() Level {
	l.state.mu.RLock()
	defer l.state.mu.RUnlock()
	return l.state.level
}

// GetLevelString returns the current log level as a string.
func (l *Logger) GetLevelString() string {
	return levelNames[l.GetLevel()]
}

// GetLevelString returns the default logger's level as a string.
func GetLevelString() string {
	return Default().GetLevelString()
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if level < l.GetLevel() {
		return
	}

	prefix := levelNames[level]
	msg := fmt.Sprintf(format, args...)
	if l.component != "" {
		l.logger.Printf("[%s] %s: %s", prefix, l.component, msg)
		return
	}
	l.logger.Printf("[%s] %s", prefix, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) { l.log(LevelInfo, format, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) { l.log(LevelWarn, format, args...) }

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) { l.log(LevelError, format, args...) }

// Package-level convenience functions operating on the default logger.

// SetLevel sets the default logger's level.
func SetLevel(level Level) { Default().SetLevel(level) }

// SetLevelFromString sets the default logger's level from a string.
func SetLevelFromString(levelStr string) { Default().SetLevelFromString(levelStr) }

// Debug logs a debug message to the default logger.
func Debug(format string, args ...interface{}) { Default().Debug(format, args...) }

// Info logs an info message to the default logger.
func Info(format string, args ...interface{}) { Default().Info(format, args...) }

// Warn logs a warning message to the default logger.
func Warn(format string, args ...interface{}) { Default().Warn(format, args...) }

// Error logs an error message to the default logger.
func Error(format string, args ...interface{}) { Default().Error(format, args...) }
