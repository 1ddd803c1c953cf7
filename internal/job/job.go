// Package job implements C6, the job/process manager: launching pipelines
// of OS processes under their own process groups, waiting on them with
// job-control semantics, and the foreground/background terminal handoff.
// It is grounded on original_source/src/shell/job_control.c, translated
// into direct golang.org/x/sys/unix calls because os/exec.Cmd cannot
// observe WIFSTOPPED or hand off the controlling terminal mid-flight.
package job

import (
	"fmt"

	"github.com/cash-shell/cash/internal/redir"
	"golang.org/x/sys/unix"
)

// RawRedirection is a fully-expanded redirection: no Word, just bytes and
// numbers, ready to apply via dup2/open in the child.
type RawRedirection struct {
	Kind     redir.Kind
	Left     int
	Right    int // target fd for DupOut; -1 otherwise
	FileName string
}

// RawCommand is a fully-expanded command: the path to execve (Name), argv,
// and redirections. For a PATH-resolved command Argv[0] is the name as
// written, not the resolved Name.
type RawCommand struct {
	Name       string
	Argv       []string
	Redirs     []RawRedirection
	IsBuiltin  bool
	IsSubshell bool // re-exec self with "-c" for a subshell stage
}

// Process is one forked child of a Job.
type Process struct {
	Pid        int
	Status     unix.WaitStatus
	Completed  bool
	Stopped    bool
	Terminated bool
	RawCommand RawCommand
}

// ExitCode interprets Status the way spec.md's "status & 0xFF" language is
// read in practice: a signal-terminated process reports 128+signal, a
// normally-exited one reports its exit status masked to a byte.
func (p *Process) ExitCode() int {
	switch {
	case p.Status.Signaled():
		return 128 + int(p.Status.Signal())
	case p.Status.Exited():
		return p.Status.ExitStatus() & 0xFF
	default:
		return 0
	}
}

// Job is one top-level command or pipeline tracked as a unit for terminal
// control and status reporting. Jobs are stored newest-first in a
// Manager; there is no back-pointer from Process to Job.
type Job struct {
	ID          int
	PGID        int
	CommandText string
	Background  bool
	Notified    bool
	Launched    bool // true once every process has been forked

	TermState *unix.Termios // this job's terminal settings, saved when preempted

	StdinFD, StdoutFD, StderrFD int

	Processes []*Process
}

// IsStopped reports whether every process of the job that has not
// completed is stopped, and at least one process is stopped (a job with
// no processes is never considered stopped).
func (j *Job) IsStopped() bool {
	anyStopped := false
	for _, p := range j.Processes {
		if !p.Completed && !p.Stopped {
			return false
		}
		if p.Stopped {
			anyStopped = true
		}
	}
	return anyStopped
}

// IsCompleted reports whether every process of the job has completed
// (exited or been killed by a signal).
func (j *Job) IsCompleted() bool {
	for _, p := range j.Processes {
		if !p.Completed {
			return false
		}
	}
	return true
}

// State renders the job's current state for the "jobs" builtin and
// notification lines, one of Running/Stopped/Completed/Terminated.
func (j *Job) State() string {
	switch {
	case j.IsCompleted():
		for _, p := range j.Processes {
			if p.Terminated {
				return "Terminated"
			}
		}
		return "Completed"
	case j.IsStopped():
		return "Stopped"
	default:
		return "Running"
	}
}

// ExitCode is the exit code of the job's last (right-most) process, the
// value a pipeline or single command reports to its caller.
func (j *Job) ExitCode() int {
	if len(j.Processes) == 0 {
		return 0
	}
	return j.Processes[len(j.Processes)-1].ExitCode()
}

// ListingLine renders the job's current state (Running/Stopped/Completed/
// Terminated) in the "jobs" builtin's display format.
func (j *Job) ListingLine() string {
	return j.stateLine(j.State())
}

// LaunchedLine renders the one-time "[n] (pgid)\tlaunched\t\ttext" line a
// backgrounded job prints at the moment it is launched, before it has ever
// been through do_job_notification. Matching original_source's
// job_control.c, this is a state the caller passes explicitly at the
// launch site rather than something ListingLine infers on every render —
// a later "jobs" or notification line for the same job reports its real
// state instead.
func (j *Job) LaunchedLine() string {
	return j.stateLine("launched")
}

func (j *Job) stateLine(state string) string {
	return fmt.Sprintf("[%d] (%d)\t%s\t\t%s\n", j.ID, j.PGID, state, j.CommandText)
}
