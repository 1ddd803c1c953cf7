// Package interp implements C5, the executor: it walks a parser.Expr tree,
// materializes commands into job.RawCommand, and drives internal/job to
// actually run them. Grounded on the teacher's internal/llmsh/executor.go
// dispatch-by-node-type shape, generalized from its virtual-filesystem
// command set to spec.md §4.5's Command/Subshell/Pipeline/And/Or/Not
// evaluation rules.
package interp

import (
	"fmt"

	"github.com/cash-shell/cash/internal/builtin"
	"github.com/cash-shell/cash/internal/cashcolor"
	"github.com/cash-shell/cash/internal/expand"
	"github.com/cash-shell/cash/internal/job"
	"github.com/cash-shell/cash/internal/parser"
	"github.com/cash-shell/cash/internal/shellstate"
)

// Evaluate runs e, returning its exit code and mutating st.LastExitCode.
// foreground is the effective foreground/background state inherited from
// the enclosing statement's trailing "&" (spec.md §4.3: the background
// flag belongs to the whole top-level expression, not to individual
// And/Or/Not/Pipeline nodes).
func Evaluate(e *parser.Expr, st *shellstate.Shell, jm *job.Manager, foreground bool) (int, error) {
	switch e.Kind {
	case parser.ExprCommand:
		return evalSingleCommand(e, st, jm, foreground)

	case parser.ExprSubshell:
		return evalSubshell(e, st, jm, foreground)

	case parser.ExprNot:
		code, err := Evaluate(e.Left, st, jm, foreground)
		if err != nil {
			return 0, err
		}
		if code == 0 {
			st.ClampExit(1)
		} else {
			st.ClampExit(0)
		}
		return st.LastExitCode, nil

	case parser.ExprAnd:
		code, err := Evaluate(e.Left, st, jm, foreground)
		if err != nil || code != 0 {
			return code, err
		}
		return Evaluate(e.Right, st, jm, foreground)

	case parser.ExprOr:
		code, err := Evaluate(e.Left, st, jm, foreground)
		if err != nil || code == 0 {
			return code, err
		}
		return Evaluate(e.Right, st, jm, foreground)

	case parser.ExprPipeline:
		return evalPipeline(e, st, jm, foreground)

	default:
		return 0, fmt.Errorf("interp: unknown expression kind %d", e.Kind)
	}
}

// evalSingleCommand implements spec.md §4.5's non-pipeline command
// execution: empty commands are no-ops (or /bin/true when they carry bare
// redirections), builtins run in-process, everything else becomes a
// single-process job.
func evalSingleCommand(e *parser.Expr, st *shellstate.Shell, jm *job.Manager, foreground bool) (int, error) {
	cmd := e.Command

	if !cmd.HasName && len(cmd.Redirs) == 0 {
		return st.LastExitCode, nil
	}

	var name string
	if cmd.HasName {
		name = expand.Word(cmd.Name, st)
	}

	if name == "" {
		rc := job.RawCommand{Name: "/bin/true", Argv: []string{"/bin/true"}}
		rc.Redirs = expandRedirs(cmd, st)
		return runSingleJob(rc, e.Text, foreground, st, jm)
	}

	if builtin.IsBuiltin(name) {
		argv := expandArgv(name, cmd, st)
		ctx := &builtin.Context{Shell: st, Jobs: jm}
		code := builtin.Run(ctx, argv)
		st.ClampExit(code)
		return st.LastExitCode, nil
	}

	rc, err := Materialize(cmd, st)
	if err != nil {
		return reportMaterializeError(st, err)
	}
	return runSingleJob(rc, e.Text, foreground, st, jm)
}

func reportMaterializeError(st *shellstate.Shell, err error) (int, error) {
	cashcolor.Errorf("%v", err)
	st.ClampExit(1)
	return st.LastExitCode, nil
}

func runSingleJob(rc job.RawCommand, text string, foreground bool, st *shellstate.Shell, jm *job.Manager) (int, error) {
	j := newJob(rc, text, !foreground, st)
	if err := jm.LaunchJob(j, foreground); err != nil {
		cashcolor.Errorf("%v", err)
		st.ClampExit(1)
		return st.LastExitCode, nil
	}
	if foreground {
		st.ClampExit(j.ExitCode())
	}
	return st.LastExitCode, nil
}

func newJob(rc job.RawCommand, text string, background bool, st *shellstate.Shell) *job.Job {
	return &job.Job{
		CommandText: text,
		Background:  background,
		StdinFD:     0,
		StdoutFD:    1,
		StderrFD:    2,
		Processes:   []*job.Process{{RawCommand: rc}},
	}
}

// evalSubshell forks the shell itself (re-exec with "-c" and the
// subshell's own source text) so the nested program runs in a fresh
// process and cannot mutate this shell's state, per spec.md §4.5's
// "Subshell(program) -> fork; child runs the program and exits with its
// last statement's code".
func evalSubshell(e *parser.Expr, st *shellstate.Shell, jm *job.Manager, foreground bool) (int, error) {
	rc := subshellRawCommand(e, st)
	j := newJob(rc, e.Text, !foreground, st)
	if err := jm.LaunchJob(j, foreground); err != nil {
		cashcolor.Errorf("%v", err)
		st.ClampExit(1)
		return st.LastExitCode, nil
	}
	if foreground {
		st.ClampExit(j.ExitCode())
	}
	return st.LastExitCode, nil
}

func subshellRawCommand(e *parser.Expr, st *shellstate.Shell) job.RawCommand {
	text := innerSubshellText(e.Text)
	return job.RawCommand{
		Name:       st.ExecutablePath,
		Argv:       []string{st.ExecutablePath, "-c", text},
		IsSubshell: true,
	}
}

// innerSubshellText strips the enclosing "(" ")" from a subshell
// expression's source text (Expr.Span covers the parentheses themselves).
func innerSubshellText(text string) string {
	if len(text) >= 2 && text[0] == '(' && text[len(text)-1] == ')' {
		return text[1 : len(text)-1]
	}
	return text
}

