package job

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cash-shell/cash/internal/redir"
)

// These tests actually fork real processes (non-interactive Manager, so no
// terminal/process-group handoff is attempted), exercising the launch/wait
// protocol end to end the way spec.md §8's E2E scenarios describe.
//
// Job.StdinFD/StdoutFD/StderrFD are set explicitly to 0/1/2 throughout,
// mirroring what internal/interp always does when it builds a Job — the
// zero value of an unset int field is 0, which would otherwise be misread
// as "redirect stdout to fd 0".

func TestLaunchJobSingleCommandCapturesExitCode(t *testing.T) {
	m := NewManager(false, 0)
	j := &Job{
		CommandText: "true",
		StdinFD:     0,
		StdoutFD:    1,
		StderrFD:    2,
		Processes: []*Process{
			{RawCommand: RawCommand{Name: "/bin/true", Argv: []string{"/bin/true"}}},
		},
	}
	if err := m.LaunchJob(j, true); err != nil {
		t.Fatalf("LaunchJob: %v", err)
	}
	if j.ExitCode() != 0 {
		t.Fatalf("exit code = %d, want 0", j.ExitCode())
	}
}

func TestLaunchJobNonzeroExit(t *testing.T) {
	m := NewManager(false, 0)
	j := &Job{
		CommandText: "false",
		StdinFD:     0,
		StdoutFD:    1,
		StderrFD:    2,
		Processes: []*Process{
			{RawCommand: RawCommand{Name: "/bin/false", Argv: []string{"/bin/false"}}},
		},
	}
	if err := m.LaunchJob(j, true); err != nil {
		t.Fatalf("LaunchJob: %v", err)
	}
	if j.ExitCode() != 1 {
		t.Fatalf("exit code = %d, want 1", j.ExitCode())
	}
}

func TestLaunchJobAppliesOutputRedirection(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")

	m := NewManager(false, 0)
	j := &Job{
		CommandText: "echo hi > out.txt",
		StdinFD:     0,
		StdoutFD:    1,
		StderrFD:    2,
		Processes: []*Process{{
			RawCommand: RawCommand{
				Name: "/bin/echo",
				Argv: []string{"/bin/echo", "hi"},
				Redirs: []RawRedirection{
					{Kind: redir.Out, Left: 1, FileName: outPath},
				},
			},
		}},
	}
	if err := m.LaunchJob(j, true); err != nil {
		t.Fatalf("LaunchJob: %v", err)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hi\n" {
		t.Fatalf("got %q, want %q", got, "hi\n")
	}
}

func TestLaunchJobPipeline(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")
	tr := trPath(t)

	m := NewManager(false, 0)
	j := &Job{
		CommandText: "echo hi | tr a-z A-Z > out.txt",
		StdinFD:     0,
		StdoutFD:    1,
		StderrFD:    2,
		Processes: []*Process{
			{RawCommand: RawCommand{Name: "/bin/echo", Argv: []string{"/bin/echo", "hi"}}},
			{RawCommand: RawCommand{
				Name: tr,
				Argv: []string{tr, "a-z", "A-Z"},
				Redirs: []RawRedirection{
					{Kind: redir.Out, Left: 1, FileName: outPath},
				},
			}},
		},
	}
	if err := m.LaunchJob(j, true); err != nil {
		t.Fatalf("LaunchJob: %v", err)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "HI\n" {
		t.Fatalf("got %q, want %q", got, "HI\n")
	}
}

func TestLaunchJobOutErrMergesStdoutAndStderr(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")

	m := NewManager(false, 0)
	j := &Job{
		CommandText: "sh -c '...' &> out.txt",
		StdinFD:     0,
		StdoutFD:    1,
		StderrFD:    2,
		Processes: []*Process{{
			RawCommand: RawCommand{
				Name: "/bin/sh",
				Argv: []string{"/bin/sh", "-c", "echo out; echo err 1>&2"},
				Redirs: []RawRedirection{
					{Kind: redir.OutErr, Left: 1, FileName: outPath},
				},
			},
		}},
	}
	if err := m.LaunchJob(j, true); err != nil {
		t.Fatalf("LaunchJob: %v", err)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "out\nerr\n" {
		t.Fatalf("got %q, want both stdout and stderr interleaved into the same file", got)
	}
}

func TestLaunchJobDupOutRedirection(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")

	m := NewManager(false, 0)
	j := &Job{
		CommandText: "sh -c '...' > out.txt 2>&1",
		StdinFD:     0,
		StdoutFD:    1,
		StderrFD:    2,
		Processes: []*Process{{
			RawCommand: RawCommand{
				Name: "/bin/sh",
				Argv: []string{"/bin/sh", "-c", "echo out; echo err 1>&2"},
				Redirs: []RawRedirection{
					{Kind: redir.Out, Left: 1, FileName: outPath},
					{Kind: redir.DupOut, Left: 2, Right: 1},
				},
			},
		}},
	}
	if err := m.LaunchJob(j, true); err != nil {
		t.Fatalf("LaunchJob: %v", err)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "out\nerr\n" {
		t.Fatalf("got %q, want both stdout and stderr in out.txt", got)
	}
}

func TestLaunchJobEmptyCommandNameErrors(t *testing.T) {
	m := NewManager(false, 0)
	j := &Job{
		StdinFD:  0,
		StdoutFD: 1,
		StderrFD: 2,
		Processes: []*Process{
			{RawCommand: RawCommand{}},
		},
	}
	if err := m.LaunchJob(j, true); err == nil {
		t.Fatalf("expected an error launching a RawCommand with no name")
	}
}

func TestGetByIDAndPruneCompleted(t *testing.T) {
	m := NewManager(false, 0)
	j := &Job{
		CommandText: "true",
		StdinFD:     0,
		StdoutFD:    1,
		StderrFD:    2,
		Processes: []*Process{
			{RawCommand: RawCommand{Name: "/bin/true", Argv: []string{"/bin/true"}}},
		},
	}
	if err := m.LaunchJob(j, true); err != nil {
		t.Fatalf("LaunchJob: %v", err)
	}
	if m.GetByID(j.ID) != j {
		t.Fatalf("GetByID(%d) did not return the launched job", j.ID)
	}
	m.PruneCompleted()
	if m.GetByID(j.ID) != nil {
		t.Fatalf("expected the completed job to be pruned")
	}
}

func trPath(t *testing.T) string {
	t.Helper()
	for _, p := range []string{"/usr/bin/tr", "/bin/tr"} {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	t.Skip("no tr(1) found on this host")
	return ""
}
