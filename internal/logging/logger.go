// Package logging provides the CLI's diagnostic logger and secret redaction
// helpers. Diagnostics go to stderr; sync progress lines go to stdout so they
// stream alongside command output.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger provides leveled logging with redaction support.
type Logger struct {
	debug   bool
	noColor bool
	out     io.Writer // progress lines
	err     io.Writer // diagnostics
}

// New creates a new logger instance.
func New(debug, noColor bool) *Logger {
	return &Logger{
		debug:   debug,
		noColor: noColor,
		out:     os.Stdout,
		err:     os.Stderr,
	}
}

// NewWithWriters creates a logger with explicit writers, for tests.
func NewWithWriters(debug, noColor bool, out, err io.Writer) *Logger {
	return &Logger{debug: debug, noColor: noColor, out: out, err: err}
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.line(l.err, "\033[32m", "✓", format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line(l.err, "\033[33m", "⚠", format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line(l.err, "\033[31m", "✗", format, args...)
}

// Debug logs a debug message if debug mode is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.line(l.err, "\033[36m", "[DEBUG]", format, args...)
}

// Step logs a top-level progress step, e.g. the start of a sync run.
func (l *Logger) Step(format string, args ...interface{}) {
	l.line(l.out, "\033[34m", "→", format, args...)
}

// ItemStart begins a per-item progress line without terminating it.
// ItemEnd completes the line.
func (l *Logger) ItemStart(name string) {
	if !l.noColor {
		fmt.Fprintf(l.out, "  \033[34m→\033[0m %s... ", name)
		return
	}
	fmt.Fprintf(l.out, "  → %s... ", name)
}

// ItemEnd completes a per-item progress line started with ItemStart.
func (l *Logger) ItemEnd(state string, ok bool) {
	color := "\033[32m"
	if !ok {
		color = "\033[33m"
	}
	if !l.noColor {
		fmt.Fprintf(l.out, "%s%s\033[0m\n", color, state)
		return
	}
	fmt.Fprintln(l.out, state)
}

func (l *Logger) line(w io.Writer, color, glyph, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(w, "%s%s\033[0m %s\n", color, glyph, msg)
		return
	}
	fmt.Fprintf(w, "%s %s\n", glyph, msg)
}

// Secret represents a value that must be redacted in logs.
type Secret string

// String implements the Stringer interface, always returning a redacted value.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements the GoStringer interface for %#v formatting.
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// Redact replaces sensitive values in a string with [REDACTED].
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if secret != "" && len(secret) > 3 { // only redact non-trivial secrets
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}
