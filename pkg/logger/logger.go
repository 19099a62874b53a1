// Package logger provides the process-wide file logger used by pipegen.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	globalLogger *zerolog.Logger
	logFile      io.WriteCloser
	level        = zerolog.InfoLevel
	mu           sync.Mutex
)

// Init initializes the global logger with the specified log file path.
func Init(logPath string) error {
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	InitWriter(f)
	return nil
}

// InitWriter points the global logger at w. The logger takes ownership of w
// and closes it on Close.
func InitWriter(w io.WriteCloser) {
	mu.Lock()
	defer mu.Unlock()

	// Close previous log file if exists
	if logFile != nil {
		logFile.Close()
	}

	logFile = w
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	globalLogger = &zl
}

// SetVerbose enables or disables debug messages.
func SetVerbose(verbose bool) {
	mu.Lock()
	defer mu.Unlock()

	level = zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if globalLogger != nil {
		zl := globalLogger.Level(level)
		globalLogger = &zl
	}
}

// Close closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	globalLogger = nil
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	logf(zerolog.InfoLevel, format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	logf(zerolog.DebugLevel, format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	logf(zerolog.ErrorLevel, format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	logf(zerolog.WarnLevel, format, v...)
}

func logf(lvl zerolog.Level, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if globalLogger != nil {
		globalLogger.WithLevel(lvl).Msgf(format, v...)
	}
}

