// Package ui renders the terminal side of a template run: a spinner around
// blocking operations and text prompts with defaults.
package ui

import (
	"os"

	"golang.org/x/term"
)

// ANSI color codes
const (
	ColorReset = "\033[0m"
	ColorRed   = "\033[31m"
	ColorGreen = "\033[32m"
	ColorCyan  = "\033[36m"
	ColorGray  = "\033[90m"
)

// Colorize wraps text in ANSI color codes if color is enabled
func Colorize(text, color string, useColor bool) string {
	if !useColor {
		return text
	}
	return color + text + ColorReset
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// ShouldUseColor respects NO_COLOR and only colors terminals.
func ShouldUseColor(v any) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return IsTerminal(v)
}
