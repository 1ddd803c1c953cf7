package interp

import (
	"fmt"
	"os"
	"strings"

	"github.com/cash-shell/cash/internal/expand"
	"github.com/cash-shell/cash/internal/job"
	"github.com/cash-shell/cash/internal/parser"
	"github.com/cash-shell/cash/internal/shellstate"
	"golang.org/x/sys/unix"
)

// Materialize expands cmd's name, arguments, and redirection filenames
// into a job.RawCommand, resolving the command against PATH the way
// spec.md §4.5's materialization step describes. It does not decide
// whether cmd is a builtin; callers check that first.
func Materialize(cmd parser.Command, st *shellstate.Shell) (job.RawCommand, error) {
	var rc job.RawCommand

	name := ""
	if cmd.HasName {
		name = expand.Word(cmd.Name, st)
	}

	resolved, err := resolveCommand(name, st)
	if err != nil {
		return rc, err
	}
	rc.Name = resolved
	rc.Argv = expandArgv(name, cmd, st)
	rc.Redirs = expandRedirs(cmd, st)

	return rc, nil
}

// expandArgv expands a command's own arguments with argv[0] set to name,
// applying the "ls" cosmetic rewrite from spec.md §4.5 step 5.
func expandArgv(name string, cmd parser.Command, st *shellstate.Shell) []string {
	argv := make([]string, 0, len(cmd.Args)+2)
	argv = append(argv, name)
	for _, a := range cmd.Args {
		argv = append(argv, expand.Word(a, st))
	}
	if name == "ls" {
		argv = append(argv, "--color=auto")
	}
	return argv
}

// resolveCommand implements spec.md §4.5 step 1-2: a name containing '/'
// is checked directly for X_OK; otherwise PATH is searched, falling back
// to the bare name so execve produces the natural error.
func resolveCommand(name string, st *shellstate.Shell) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty command")
	}
	if strings.Contains(name, "/") {
		if isExecutable(name) {
			return name, nil
		}
		return "", fmt.Errorf("%s: is not an executable", name)
	}
	path := st.Getenv("PATH")
	for _, dir := range strings.Split(path, ":") {
		if dir == "" {
			continue
		}
		cand := dir + "/" + name
		if isExecutable(cand) {
			return cand, nil
		}
	}
	return name, nil
}

func isExecutable(path string) bool {
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}
