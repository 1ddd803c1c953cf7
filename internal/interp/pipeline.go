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

// flattenPipeline unrolls the parser's left-associative Pipeline tree into
// an ordered list of stages. Per the grammar (terminal ::= "(" program
// ")" | command), a stage is either a Command or a Subshell — spec.md
// §4.5's "pipelines never contain subshells" assertion is contradicted by
// its own worked example `( echo a ; echo b ) | wc -l` (spec.md §8
// scenario 7), so subshell stages are accepted here (see DESIGN.md).
func flattenPipeline(e *parser.Expr) []*parser.Expr {
	if e.Kind == parser.ExprPipeline {
		return append(flattenPipeline(e.Left), e.Right)
	}
	return []*parser.Expr{e}
}

// evalPipeline builds one job.Job whose Processes mirror the flattened
// stage list and launches it. The pipeline's exit code is that of its
// last (right-most) process.
func evalPipeline(e *parser.Expr, st *shellstate.Shell, jm *job.Manager, foreground bool) (int, error) {
	stages := flattenPipeline(e)

	processes := make([]*job.Process, 0, len(stages))
	for i, stage := range stages {
		rc, err := stageRawCommand(stage, i, st)
		if err != nil {
			cashcolor.Errorf("%v", err)
			st.ClampExit(1)
			return st.LastExitCode, nil
		}
		processes = append(processes, &job.Process{RawCommand: rc})
	}

	j := &job.Job{
		CommandText: e.Text,
		Background:  !foreground,
		StdinFD:     0,
		StdoutFD:    1,
		StderrFD:    2,
		Processes:   processes,
	}
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

// stageRawCommand materializes one pipeline stage. A builtin used as any
// pipeline stage must run in a forked process (it
// shares its stdin/stdout with its pipeline neighbors), so it is
// re-launched via the shell's own "-builtin" re-exec entry point instead
// of builtin.Run, which only ever runs in the single live shell process.
func stageRawCommand(stage *parser.Expr, index int, st *shellstate.Shell) (job.RawCommand, error) {
	if stage.Kind == parser.ExprSubshell {
		return subshellRawCommand(stage, st), nil
	}

	cmd := stage.Command
	name := ""
	if cmd.HasName {
		name = expand.Word(cmd.Name, st)
	}

	if name == "" {
		if len(cmd.Redirs) == 0 {
			return job.RawCommand{}, fmt.Errorf("empty command in pipeline")
		}
		rc := job.RawCommand{Name: "/bin/true", Argv: []string{"/bin/true"}}
		rc.Redirs = expandRedirs(cmd, st)
		return rc, nil
	}

	if builtin.IsBuiltin(name) {
		return builtinRawCommand(name, cmd, st), nil
	}

	return Materialize(cmd, st)
}

// builtinRawCommand builds a self-re-exec RawCommand that runs a builtin
// in a fresh forked process, grounded on the teacher's
// internal/tools/engine.go spawn-by-resolved-self-path pattern.
func builtinRawCommand(name string, cmd parser.Command, st *shellstate.Shell) job.RawCommand {
	argv := expandArgv(name, cmd, st)
	rc := job.RawCommand{
		Name:      st.ExecutablePath,
		Argv:      append([]string{st.ExecutablePath, "-builtin"}, argv...),
		IsBuiltin: true,
	}
	rc.Redirs = expandRedirs(cmd, st)
	return rc
}

func expandRedirs(cmd parser.Command, st *shellstate.Shell) []job.RawRedirection {
	var redirs []job.RawRedirection
	for _, r := range cmd.Redirs {
		rr := job.RawRedirection{Kind: r.Kind, Left: r.LeftFD, Right: r.RightFD}
		if r.HasFile {
			rr.FileName = expand.Word(r.FileName, st)
		}
		redirs = append(redirs, rr)
	}
	return redirs
}
