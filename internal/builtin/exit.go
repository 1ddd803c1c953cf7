package builtin

import (
	"strconv"

	"github.com/cash-shell/cash/internal/cashcolor"
)

// Exit implements "exit [n]": sets exit_requested so the shell's main
// loop terminates after this statement, with previous_exit_code set to
// n (default 0), clamped to 0..=255.
func Exit(ctx *Context, argv []string) int {
	code := ctx.Shell.LastExitCode
	if len(argv) > 1 {
		n, err := strconv.Atoi(argv[1])
		if err != nil {
			cashcolor.Errorf("exit: %s: numeric argument required", argv[1])
			code = 255
		} else {
			code = n
		}
	} else {
		code = 0
	}
	ctx.Shell.ExitRequested = true
	return code & 0xFF
}
