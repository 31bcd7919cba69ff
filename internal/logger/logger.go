// Package logger provides leveled logging for the gateway.
//
// All output goes to stderr so it never corrupts the MCP stdio transport,
// which owns stdout. Debug output is gated behind SetVerbose.
package logger

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

var (
	verbose atomic.Bool

	std = log.New(os.Stderr, "", log.LstdFlags)
)

// SetVerbose enables or disables debug output.
func SetVerbose(enabled bool) {
	verbose.Store(enabled)
}

// Debug logs a message at debug level. No-op unless verbose mode is on.
func Debug(format string, args ...any) {
	if !verbose.Load() {
		return
	}
	std.Output(2, "DEBUG "+fmt.Sprintf(format, args...))
}

// Info logs a message at info level.
func Info(format string, args ...any) {
	std.Output(2, "INFO  "+fmt.Sprintf(format, args...))
}

// Warn logs a message at warning level.
func Warn(format string, args ...any) {
	std.Output(2, "WARN  "+fmt.Sprintf(format, args...))
}

// Error logs a message at error level.
func Error(format string, args ...any) {
	std.Output(2, "ERROR "+fmt.Sprintf(format, args...))
}
