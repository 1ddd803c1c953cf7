// Package cashcolor renders cash's own diagnostics ("cash: ...") the way
// an interactive shell distinguishes its own messages from program
// output, grounded on the fatih/color usage in the pack's structured-log
// handlers (kazz187-taskguild/backend/pkg/clog).
package cashcolor

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	errorPrefix = color.New(color.FgRed, color.Bold).SprintFunc()
	warnPrefix  = color.New(color.FgYellow, color.Bold).SprintFunc()
)

// Errorf prints a "cash: " diagnostic to stderr in red.
func Errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorPrefix("cash:"), fmt.Sprintf(format, args...))
}

// Warnf prints a "cash: " diagnostic to stderr in yellow.
func Warnf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", warnPrefix("cash:"), fmt.Sprintf(format, args...))
}
