// Command cash is the entry point for the shell: CLI argument handling
// (spec.md §6), grounded on the teacher's cmd/llmsh/main.go hand-rolled
// flag loop and stdin TTY-detection idiom.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cash-shell/cash/internal/builtin"
	"github.com/cash-shell/cash/internal/cashcolor"
	"github.com/cash-shell/cash/internal/job"
	"github.com/cash-shell/cash/internal/shell"
	"github.com/cash-shell/cash/internal/shellstate"
)

func main() {
	os.Exit(run(os.Args))
}

// selfPath resolves an absolute path to this executable for the
// self-re-exec forms (subshells, pipelined builtins), falling back to
// argv[0] the way the teacher's internal/tools/engine.go spawn path does
// when os.Executable is unavailable.
func selfPath(argv0 string) string {
	if p, err := os.Executable(); err == nil {
		return p
	}
	return argv0
}

func run(argv []string) int {
	args := argv[1:]

	// Hidden re-exec form used by the interpreter to run a builtin as a
	// forked pipeline stage: "cash -builtin <name> [arg...]".
	if len(args) >= 1 && args[0] == "-builtin" {
		return runBuiltin(args[1:])
	}

	if len(args) >= 1 && args[0] == "-c" {
		if len(args) < 2 {
			cashcolor.Errorf("-c requires an argument")
			return 1
		}
		text := args[1]
		shArgv := append([]string{"cash"}, args[2:]...)
		return runScript(selfPath(argv[0]), []byte(text), shArgv)
	}

	if len(args) >= 1 && !isFlag(args[0]) {
		path := args[0]
		content, err := os.ReadFile(path)
		if err != nil {
			cashcolor.Errorf("%v", err)
			return 1
		}
		shArgv := append([]string{path}, args[1:]...)
		return runScript(selfPath(argv[0]), content, shArgv)
	}

	if isTTY(os.Stdin) {
		return runInteractive(selfPath(argv[0]), argv)
	}

	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		cashcolor.Errorf("%v", err)
		return 1
	}
	return runScript(selfPath(argv[0]), content, argv)
}

func isFlag(s string) bool {
	return len(s) > 0 && s[0] == '-'
}

func isTTY(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

func newState(execPath string, shArgv []string, interactive bool) (*shellstate.Shell, *job.Manager) {
	st := shellstate.New(shArgv)
	st.ExecutablePath = execPath
	st.Interactive = interactive

	jm := job.NewManager(interactive, 0)
	return st, jm
}

func runScript(execPath string, source []byte, shArgv []string) int {
	st, jm := newState(execPath, shArgv, false)
	sh, err := shell.New(st, jm)
	if err != nil {
		cashcolor.Errorf("%v", err)
		return 1
	}
	return sh.RunScript(source)
}

func runInteractive(execPath string, shArgv []string) int {
	st, jm := newState(execPath, shArgv, true)
	sh, err := shell.New(st, jm)
	if err != nil {
		cashcolor.Errorf("%v", err)
		return 1
	}
	return sh.RunInteractive()
}

// runBuiltin runs a single builtin in this freshly forked process and
// returns its exit code, the counterpart to internal/interp's
// self-re-exec strategy for builtins used as pipeline stages.
func runBuiltin(argv []string) int {
	if len(argv) == 0 {
		cashcolor.Errorf("-builtin requires a command name")
		return 1
	}
	if !builtin.IsBuiltin(argv[0]) {
		fmt.Fprintf(os.Stderr, "cash: %s: not a builtin\n", argv[0])
		return 127
	}
	st := shellstate.New(argv)
	jm := job.NewManager(false, 0)
	ctx := &builtin.Context{Shell: st, Jobs: jm}
	return builtin.Run(ctx, argv)
}
