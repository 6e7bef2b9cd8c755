// Package logger provides leveled logging for the curator CLI.
// Debug, Info and Warn messages are printed to stderr only when verbose mode
// is enabled via the --verbose flag. Error and Critical are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(always bool, prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if always || verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(false, "[DEBUG] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	logf(false, "\n=== ", "%s ===", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(false, "[INFO] ", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	logf(false, "[WARN] ", format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	logf(true, "[ERROR] ", format, args...)
}

// Critical prints a critical message regardless of verbose mode.
func Critical(format string, args ...any) {
	logf(true, "[CRITICAL] ", format, args...)
}
