// Package ui holds the terminal presentation helpers shared by the CLI:
// color detection, status styling, user-facing messages and prompts.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

var writer io.Writer = os.Stderr

// SetWriter redirects user-facing messages. nil restores stderr.
func SetWriter(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	writer = w
}

var (
	stdoutColor = detectColor(os.Stdout)
	stderrColor = detectColor(os.Stderr)
)

func detectColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColorEnabled overrides color detection (for testing and --json).
func SetColorEnabled(enabled bool) {
	stdoutColor = enabled
	stderrColor = enabled
}

// ColorEnabled reports whether stdout color is enabled.
func ColorEnabled() bool {
	return stdoutColor
}

func paint(enabled bool, code, s string) string {
	if !enabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Bold styles s for stdout.
func Bold(s string) string { return paint(stdoutColor, "1", s) }

// Dim styles s for stdout.
func Dim(s string) string { return paint(stdoutColor, "2", s) }

// Green styles s for stdout.
func Green(s string) string { return paint(stdoutColor, "32", s) }

// Red styles s for stdout.
func Red(s string) string { return paint(stdoutColor, "31", s) }

// Yellow styles s for stdout.
func Yellow(s string) string { return paint(stdoutColor, "33", s) }

// Status colors a server status: running green, stopped dim, anything
// unexpected yellow.
func Status(status string) string {
	switch status {
	case "running":
		return Green(status)
	case "stopped", "exited", "created":
		return Dim(status)
	case "":
		return Dim("-")
	default:
		return Yellow(status)
	}
}

// VPNTag marks tunnel interfaces in listings.
func VPNTag(isVPN bool) string {
	if isVPN {
		return Yellow("vpn")
	}
	return Dim("lan")
}

// OKTag returns a green check mark.
func OKTag() string { return Green("✓") }

// FailTag returns a red cross.
func FailTag() string { return Red("✗") }

// Warnf prints a warning to stderr.
func Warnf(format string, args ...any) {
	fmt.Fprintf(writer, "%s %s\n", paint(stderrColor, "33", "Warning:"), fmt.Sprintf(format, args...))
}

// Errorf prints an error to stderr.
func Errorf(format string, args ...any) {
	fmt.Fprintf(writer, "%s %s\n", paint(stderrColor, "31", "Error:"), fmt.Sprintf(format, args...))
}

// Infof prints a plain message to stderr.
func Infof(format string, args ...any) {
	fmt.Fprintf(writer, format+"\n", args...)
}
