// Package shellstate implements C7, the process-wide shell state ("Vm" in
// spec.md's terminology). It is deliberately a plain struct constructed by
// the caller rather than a singleton, so tests can build fresh shells
// (spec.md §9 Design Notes).
package shellstate

import (
	"os"
	"os/user"
)

// Shell holds everything the executor, expander, and job manager thread
// through by pointer: cwd bookkeeping, the last exit status, positional
// parameters, and the terminal/process-group state set up once at
// startup.
type Shell struct {
	CWD    string
	OldCWD string

	UID      int
	Username string
	HomeDir  string

	LastExitCode   int
	ExitRequested  bool
	Argv           []string // Argv[0] is $0; Argv[1:] are positional params $1..
	Interactive    bool
	ShellPGID      int
	ExecutablePath string // used to re-exec self for subshells and pipelined builtins

	Prompt string
}

// New builds a Shell for the given argv (Argv[0] is $0, the rest are
// positional parameters), populating cwd and user info from the host the
// way spec.md §4.7 describes (getcwd/getpwuid are out-of-scope collaborators
// per spec.md §1, so the standard library stands in for them here).
func New(argv []string) *Shell {
	s := &Shell{Argv: argv}
	if wd, err := os.Getwd(); err == nil {
		s.CWD = wd
	}
	s.OldCWD = s.CWD
	if u, err := user.Current(); err == nil {
		s.Username = u.Username
		s.HomeDir = u.HomeDir
	} else {
		s.HomeDir = os.Getenv("HOME")
	}
	s.UID = os.Getuid()
	s.rebuildPrompt()
	return s
}

func (s *Shell) rebuildPrompt() {
	base := s.CWD
	if base == "" {
		base = "?"
	}
	s.Prompt = "cash:" + base + "$ "
}

// Chdir changes the working directory, updating CWD/OldCWD and the
// OLDPWD/PWD environment variables the way cd is specified to.
func (s *Shell) Chdir(dir string) error {
	if err := os.Chdir(dir); err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = dir
	}
	s.OldCWD = s.CWD
	s.CWD = wd
	os.Setenv("OLDPWD", s.OldCWD)
	os.Setenv("PWD", s.CWD)
	s.rebuildPrompt()
	return nil
}

// ClampExit clamps a raw exit status into the shell's [0,255] range
// (spec.md §3 invariant) and records it.
func (s *Shell) ClampExit(code int) {
	s.LastExitCode = code & 0xFF
}

// --- expand.Env ---

func (s *Shell) Getenv(name string) string { return os.Getenv(name) }
func (s *Shell) ExitStatus() int           { return s.LastExitCode }
func (s *Shell) ArgCount() int             { return len(s.Argv) - 1 }

func (s *Shell) Arg(n int) string {
	if n < 0 || n >= len(s.Argv) {
		return ""
	}
	return s.Argv[n]
}

func (s *Shell) Home() string   { return s.HomeDir }
func (s *Shell) Pwd() string    { return s.CWD }
func (s *Shell) OldPwd() string { return s.OldCWD }

func (s *Shell) LookupUser(name string) (string, bool) {
	u, err := user.Lookup(name)
	if err != nil {
		return "", false
	}
	return u.HomeDir, true
}
