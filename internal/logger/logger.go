// Package logger provides process-wide logging for webrelay.
// Output always goes to stderr by default: when serving MCP over stdio,
// stdout carries the protocol and must never receive log lines.
// Debug and info messages are only emitted when verbose mode is enabled
// via the --verbose flag; warnings and errors are always emitted.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  = zerolog.SyncWriter(os.Stderr)
	base    = newBase(output, false)
)

func newBase(w io.Writer, v bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if v {
		level = zerolog.DebugLevel
	}
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
	}
	return zerolog.New(cw).Level(level)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	base = newBase(output, verbose)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = zerolog.SyncWriter(w)
	base = newBase(output, verbose)
}

// Component returns a logger tagged with the given component name.
// Use it for structured fields; the printf helpers below cover the rest.
func Component(name string) *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := base.With().Str("component", name).Logger()
	return &l
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Debug().Msgf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Info().Msgf(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Warn().Msgf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Error().Msgf(format, args...)
}
