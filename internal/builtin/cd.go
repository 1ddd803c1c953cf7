package builtin

import (
	"fmt"
	"os"

	"github.com/cash-shell/cash/internal/cashcolor"
)

// Cd implements "cd [dir|-]": at most one argument, bare cd goes to
// $HOME, "-" swaps to the old working directory and echoes it.
func Cd(ctx *Context, argv []string) int {
	args := argv[1:]
	if len(args) > 1 {
		cashcolor.Errorf("cd: too many arguments")
		return 255
	}

	dir := ctx.Shell.HomeDir
	echo := false
	if len(args) == 1 {
		if args[0] == "-" {
			dir = ctx.Shell.OldCWD
			echo = true
		} else {
			dir = args[0]
		}
	}

	if err := ctx.Shell.Chdir(dir); err != nil {
		cashcolor.Errorf("cd: %v", err)
		return 255
	}
	if echo {
		fmt.Fprintln(os.Stdout, ctx.Shell.CWD)
	}
	return 0
}
