// Package logger provides tagged console output for the router.
// Output goes to stdout with ANSI colors; tags group related messages
// (e.g. "STARMAP", "INDEX", "ROUTE").
package logger

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

var colorEnabled = isatty.IsTerminal(os.Stdout.Fd())

func paint(color, s string) string {
	if !colorEnabled {
		return s
	}
	return color + s + colorReset
}

// Banner prints the startup banner with the given version string.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Println(paint(colorBold+colorCyan, "star-router"), paint(colorDim, version))
}

// Info prints an informational message under a tag.
func Info(tag, msg string) {
	fmt.Printf("%s %s\n", paint(colorCyan, "["+tag+"]"), msg)
}

// Success prints a success message under a tag.
func Success(tag, msg string) {
	fmt.Printf("%s %s\n", paint(colorGreen, "["+tag+"]"), msg)
}

// Warn prints a warning message under a tag.
func Warn(tag, msg string) {
	fmt.Printf("%s %s\n", paint(colorYellow, "["+tag+"]"), msg)
}

// Error prints an error message under a tag.
func Error(tag, msg string) {
	fmt.Printf("%s %s\n", paint(colorRed, "["+tag+"]"), msg)
}

// Section prints a visual section divider with a title.
func Section(title string) {
	fmt.Printf("\n%s\n", paint(colorBold, "── "+title+" ──"))
}

// Stats prints a key/value statistic line.
func Stats(key string, value interface{}) {
	fmt.Printf("  %s %v\n", paint(colorDim, key+":"), value)
}
