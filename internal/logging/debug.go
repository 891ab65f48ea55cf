package logging

import (
	"fmt"
	"io"
	"os"
)

// DebugOutput receives Debugf and Debugln output. Stdout is left to command
// output so JSON stays parseable.
var DebugOutput io.Writer = os.Stderr

// DebugEnabled returns true if debug mode is enabled via TK_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("TK_DEBUG") != ""
}

// Debugf prints a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintf(DebugOutput, format, args...)
	}
}

// Debugln prints a debug message followed by a newline only if debug mode is enabled
func Debugln(args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintln(DebugOutput, args...)
	}
}
