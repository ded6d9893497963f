package ui

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

var (
	colorEnabled atomic.Bool
	output       io.Writer = os.Stderr
)

func init() {
	colorEnabled.Store(IsTerminal(os.Stderr) && os.Getenv("NO_COLOR") == "")
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// SetColor turns ANSI colors on or off for every helper in this package
func SetColor(enabled bool) {
	colorEnabled.Store(enabled)
}

// ColorEnabled reports whether ANSI colors are on
func ColorEnabled() bool {
	return colorEnabled.Load()
}

// SetOutput redirects status messages, which go to stderr by default
func SetOutput(w io.Writer) {
	output = w
}

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes when
// colors are enabled
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !colorEnabled.Load() {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// PrintError prints an error message in red
func PrintError(format string, args ...interface{}) {
	fmt.Fprintln(output, Red("✗ "+fmt.Sprintf(format, args...)))
}

// PrintSuccess prints a success message in green
func PrintSuccess(format string, args ...interface{}) {
	fmt.Fprintln(output, Green("✓ "+fmt.Sprintf(format, args...)))
}

// PrintInfo prints a label/value pair
func PrintInfo(label string, value string) {
	fmt.Fprintf(output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(format string, args ...interface{}) {
	fmt.Fprintln(output, Yellow("⚠ "+fmt.Sprintf(format, args...)))
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Fprintln(output, Magenta(msg))
}
