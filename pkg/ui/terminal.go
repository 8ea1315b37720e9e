// Package ui renders the colored console output of the mirror run: red "!"
// lines for failures, green "+" lines for new downloads, yellow "*" lines for
// content that was already on disk, and inverse headers per course.
package ui

import (
	"fmt"
	"strings"
)

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Inverse = colorize("\033[7m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

var quietMode bool

// SetQuietMode suppresses everything except error lines
func SetQuietMode(quiet bool) {
	quietMode = quiet
}

// IsQuietMode reports whether quiet mode is active
func IsQuietMode() bool {
	return quietMode
}

func pad(depth int) string {
	return strings.Repeat("  ", depth)
}

// PrintError prints a failure line: "! message" in red
func PrintError(depth int, msg string) {
	fmt.Println(Red(pad(depth) + "! " + msg))
}

// PrintNew prints a fresh-download line: "+ message" in green
func PrintNew(depth int, msg string) {
	if quietMode {
		return
	}
	fmt.Println(Green(pad(depth) + "+ " + msg))
}

// PrintExisting prints an already-present line: "* message" in yellow
func PrintExisting(depth int, msg string) {
	if quietMode {
		return
	}
	fmt.Println(Yellow(pad(depth) + "* " + msg))
}

// PrintGroup prints a group header in inverse video
func PrintGroup(depth int, msg string) {
	if quietMode {
		return
	}
	fmt.Println(Inverse(pad(depth) + msg))
}

// PrintItem prints a plain item line
func PrintItem(depth int, msg string) {
	if quietMode {
		return
	}
	fmt.Println(pad(depth) + msg)
}

// PrintInfo prints a labeled value in cyan/yellow
func PrintInfo(label, value string) {
	if quietMode {
		return
	}
	fmt.Printf("%s: %s\n", Cyan(label), Yellow(value))
}
