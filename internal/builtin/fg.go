package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cash-shell/cash/internal/cashcolor"
	"github.com/cash-shell/cash/internal/job"
)

// Fg implements "fg [%n|n]": interactive-only, resumes the selected job
// (newest if no argument) in the foreground.
func Fg(ctx *Context, argv []string) int {
	if !ctx.Shell.Interactive {
		cashcolor.Errorf("fg: no job control")
		return 1
	}

	jobs := ctx.Jobs.Jobs()
	if len(argv) == 1 {
		if len(jobs) == 0 {
			cashcolor.Errorf("fg: no current job")
			return 1
		}
		return runFg(ctx, jobs[0])
	}

	spec := strings.TrimPrefix(argv[1], "%")
	id, err := strconv.Atoi(spec)
	if err != nil {
		cashcolor.Errorf("fg: %s: no such job", argv[1])
		return 1
	}
	j := ctx.Jobs.GetByID(id)
	if j == nil {
		cashcolor.Errorf("fg: %s: no such job", argv[1])
		return 1
	}
	return runFg(ctx, j)
}

func runFg(ctx *Context, j *job.Job) int {
	fmt.Println(j.CommandText)
	if err := ctx.Jobs.PutInForeground(j); err != nil {
		cashcolor.Errorf("fg: %v", err)
		return 1
	}
	ctx.Shell.ClampExit(j.ExitCode())
	return ctx.Shell.LastExitCode
}
