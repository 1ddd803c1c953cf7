package job

import (
	"testing"

	"golang.org/x/sys/unix"
)

func exitedStatus(t *testing.T, code int) unix.WaitStatus {
	t.Helper()
	// WaitStatus has no public constructor; encode it the way the kernel
	// would for a normally-exited process (low byte 0, high byte code).
	return unix.WaitStatus(code << 8)
}

func signaledStatus(t *testing.T, sig unix.Signal) unix.WaitStatus {
	t.Helper()
	return unix.WaitStatus(int(sig))
}

func TestProcessExitCodeNormalExit(t *testing.T) {
	p := &Process{Status: exitedStatus(t, 3)}
	p.Completed = true
	if got := p.ExitCode(); got != 3 {
		t.Fatalf("got %d, want 3", got)
	}
}

func TestProcessExitCodeSignaled(t *testing.T) {
	p := &Process{Status: signaledStatus(t, unix.SIGINT)}
	p.Completed = true
	p.Terminated = true
	want := 128 + int(unix.SIGINT)
	if got := p.ExitCode(); got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestJobIsCompletedRequiresAllProcesses(t *testing.T) {
	j := &Job{Processes: []*Process{
		{Completed: true},
		{Completed: false},
	}}
	if j.IsCompleted() {
		t.Fatalf("job should not be completed while one process is outstanding")
	}
	j.Processes[1].Completed = true
	if !j.IsCompleted() {
		t.Fatalf("job should be completed once every process is")
	}
}

func TestJobIsStoppedRequiresEveryUncompletedProcessStopped(t *testing.T) {
	j := &Job{Processes: []*Process{
		{Stopped: true},
		{Completed: true}, // completed counts as "not blocking a stop"
	}}
	if !j.IsStopped() {
		t.Fatalf("job should be considered stopped")
	}
}

func TestJobIsStoppedFalseWithNoProcesses(t *testing.T) {
	j := &Job{}
	if j.IsStopped() {
		t.Fatalf("a job with no processes should never be reported as stopped")
	}
}

func TestJobStateTransitions(t *testing.T) {
	j := &Job{Processes: []*Process{{}}}
	if j.State() != "Running" {
		t.Fatalf("got %q, want Running", j.State())
	}
	j.Processes[0].Stopped = true
	if j.State() != "Stopped" {
		t.Fatalf("got %q, want Stopped", j.State())
	}
	j.Processes[0].Stopped = false
	j.Processes[0].Completed = true
	if j.State() != "Completed" {
		t.Fatalf("got %q, want Completed", j.State())
	}
	j.Processes[0].Terminated = true
	if j.State() != "Terminated" {
		t.Fatalf("got %q, want Terminated", j.State())
	}
}

func TestJobExitCodeIsLastProcess(t *testing.T) {
	j := &Job{Processes: []*Process{
		{Status: exitedStatus(t, 1), Completed: true},
		{Status: exitedStatus(t, 9), Completed: true},
	}}
	if got := j.ExitCode(); got != 9 {
		t.Fatalf("got %d, want 9 (the last stage's exit code)", got)
	}
}

func TestJobExitCodeWithNoProcessesIsZero(t *testing.T) {
	j := &Job{}
	if got := j.ExitCode(); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestListingLineFormat(t *testing.T) {
	j := &Job{ID: 3, PGID: 1234, CommandText: "sleep 1 &", Processes: []*Process{{}}}
	line := j.ListingLine()
	want := "[3] (1234)\tRunning\t\tsleep 1 &\n"
	if line != want {
		t.Fatalf("got %q, want %q", line, want)
	}
}

func TestLaunchedLineShowsLaunchedRegardlessOfState(t *testing.T) {
	j := &Job{ID: 1, PGID: 99, CommandText: "sleep 5 &", Background: true, Launched: true, Processes: []*Process{{}}}
	line := j.LaunchedLine()
	want := "[1] (99)\tlaunched\t\tsleep 5 &\n"
	if line != want {
		t.Fatalf("got %q, want %q", line, want)
	}
}

func TestListingLineReportsRunningAfterLaunch(t *testing.T) {
	j := &Job{ID: 1, PGID: 99, CommandText: "sleep 5 &", Background: true, Launched: true, Processes: []*Process{{}}}
	line := j.ListingLine()
	want := "[1] (99)\tRunning\t\tsleep 5 &\n"
	if line != want {
		t.Fatalf("got %q, want %q (jobs should report real state, not launched, after the initial print)", line, want)
	}
}
