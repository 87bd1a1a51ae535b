package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
)

// stderr is where status output goes; tests swap it.
var stderr io.Writer = os.Stderr

func printSuccess(format string, args ...any) {
	green.Fprintln(stderr, "✓ "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	red.Fprintln(stderr, "✗ "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	yellow.Fprintln(stderr, "⚠ "+fmt.Sprintf(format, args...))
}

func printStatus(label string, format string, args ...any) {
	fmt.Fprintf(stderr, "  %s %s\n", bold.Sprint(label+":"), fmt.Sprintf(format, args...))
}

func printStep(format string, args ...any) {
	cyan.Fprintln(stderr, "→ "+fmt.Sprintf(format, args...))
}

// printProgress writes one pipeline progress line.
func printProgress(stage string, progress float64, message string) {
	pct := fmt.Sprintf("%3.0f%%", progress*100)
	fmt.Fprintf(stderr, "%s %s %s\n", cyan.Sprint(pct), bold.Sprint(stage), message)
}
