// Package shell drives the REPL and script-execution loops that tie
// C1-C7 together: lex/parse a line or file, evaluate its statements, and
// flush job notifications between them. Grounded on the teacher's
// internal/llmsh/shell.go readline integration, adapted from its
// line-at-a-time virtual-shell loop to spec.md §4.7's interactive
// startup sequence and job-control discipline.
package shell

import (
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/cash-shell/cash/internal/cashcolor"
	"github.com/cash-shell/cash/internal/interp"
	"github.com/cash-shell/cash/internal/job"
	"github.com/cash-shell/cash/internal/parser"
	"github.com/cash-shell/cash/internal/shellstate"
	"github.com/cash-shell/cash/internal/term"
	"golang.org/x/sys/unix"
)

// Shell wires a shellstate.Shell and a job.Manager to the readline-backed
// interactive loop.
type Shell struct {
	State *shellstate.Shell
	Jobs  *job.Manager
}

// New constructs a Shell. If st.Interactive, StartInteractive is run
// immediately to claim the controlling terminal.
func New(st *shellstate.Shell, jm *job.Manager) (*Shell, error) {
	s := &Shell{State: st, Jobs: jm}
	if st.Interactive {
		if err := StartInteractive(st, jm); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// StartInteractive performs spec.md §4.7's one-time interactive setup:
// spin on SIGTTIN until foreground, ignore job-control signals, claim
// our own process group, take the terminal, and snapshot its settings.
func StartInteractive(st *shellstate.Shell, jm *job.Manager) error {
	ttyFd := jm.TTYFd

	for {
		fg, err := term.GetForegroundPGID(ttyFd)
		if err != nil {
			break
		}
		pgid, _ := unix.Getpgid(0)
		if fg == pgid {
			break
		}
		unix.Kill(-pgid, unix.SIGTTIN)
	}

	signal.Ignore(syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTTIN, syscall.SIGTTOU, syscall.SIGTSTP)
	signal.Reset(syscall.SIGCHLD)

	pid := os.Getpid()
	unix.Setpgid(pid, pid)
	term.SetForegroundPGID(ttyFd, pid)

	st.ShellPGID = pid
	jm.ShellPGID = pid

	if ts, err := term.GetAttr(ttyFd); err == nil {
		jm.ShellTermState = ts
	}

	os.Setenv("PWD", st.CWD)
	os.Setenv("OLDPWD", st.OldCWD)

	return nil
}

// RunScript parses source as a complete program and evaluates its
// statements in order, flushing job notifications after each one
// (spec.md §5's "job notifications are flushed after every top-level
// statement and never mid-statement"). It returns the final exit code.
func (s *Shell) RunScript(source []byte) int {
	prog, err := parser.Parse(source)
	if err != nil {
		cashcolor.Errorf("%v", err)
		s.State.ClampExit(1)
		return s.State.LastExitCode
	}
	s.runProgram(prog)
	return s.State.LastExitCode
}

func (s *Shell) runProgram(prog *parser.Program) {
	for i := range prog.Statements {
		stmt := &prog.Statements[i]
		foreground := !stmt.Expr.Background
		if _, err := interp.Evaluate(&stmt.Expr, s.State, s.Jobs, foreground); err != nil {
			cashcolor.Errorf("%v", err)
			s.State.ClampExit(1)
		}
		s.Jobs.DoJobNotification()
		if s.State.ExitRequested {
			return
		}
	}
}

// RunInteractive drives the readline-backed REPL until EOF, Ctrl-D, or
// "exit". Parse/lex errors discard the current line and reprompt rather
// than aborting the shell, per spec.md §7's interactive recovery policy.
func (s *Shell) RunInteractive() int {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.State.Prompt,
		HistoryFile:     os.ExpandEnv("$HOME/.cash_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		cashcolor.Errorf("%v", err)
		return 1
	}
	defer rl.Close()

	for {
		rl.SetPrompt(s.State.Prompt)
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				break
			}
			cashcolor.Errorf("%v", err)
			break
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		prog, perr := parser.Parse([]byte(line))
		if perr != nil {
			cashcolor.Errorf("%v", perr)
			s.State.ClampExit(1)
			continue
		}
		s.runProgram(prog)
		if s.State.ExitRequested {
			break
		}
	}

	return s.State.LastExitCode
}
