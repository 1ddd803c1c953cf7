// Package builtin implements cash's four in-process builtins: cd, exit,
// jobs, fg. Grounded on the teacher's internal/tools/builtin command-table
// pattern (a name-to-function map plus one file per command), adapted so
// each builtin mutates shell state directly instead of streaming
// stdin/stdout, per spec.md §4.5's "invoke it in the shell process
// directly so it can mutate shell state".
package builtin

import (
	"github.com/cash-shell/cash/internal/job"
	"github.com/cash-shell/cash/internal/shellstate"
)

// Context is the shell-state surface a builtin is allowed to mutate.
type Context struct {
	Shell *shellstate.Shell
	Jobs  *job.Manager
}

// Func is a builtin's entry point: argv[0] is the builtin's own name.
// It returns the process-style exit code the builtin reports.
type Func func(ctx *Context, argv []string) int

// Commands maps builtin names to their implementations.
var Commands = map[string]Func{
	"cd":   Cd,
	"exit": Exit,
	"jobs": Jobs,
	"fg":   Fg,
}

// IsBuiltin reports whether name names one of cash's builtins.
func IsBuiltin(name string) bool {
	_, ok := Commands[name]
	return ok
}

// Run dispatches to the named builtin. The caller must have already
// checked IsBuiltin.
func Run(ctx *Context, argv []string) int {
	fn, ok := Commands[argv[0]]
	if !ok {
		return 127
	}
	return fn(ctx, argv)
}
