package job

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/cash-shell/cash/internal/redir"
	"github.com/cash-shell/cash/internal/term"
	"golang.org/x/sys/unix"
)

// Manager owns the job list and the shell's terminal/process-group state.
// It is constructed once per Shell and threaded through the interpreter by
// pointer, same as shellstate.Shell (spec.md §4.7's "don't make it a
// singleton" rule).
type Manager struct {
	Interactive    bool
	TTYFd          int
	ShellPGID      int
	ShellTermState *unix.Termios

	Stdout io.Writer
	Stderr io.Writer

	jobs   []*Job
	nextID int
}

// NewManager builds a Manager. ttyFd is the controlling terminal's file
// descriptor (0 in practice); it is only touched when interactive is true.
func NewManager(interactive bool, ttyFd int) *Manager {
	return &Manager{
		Interactive: interactive,
		TTYFd:       ttyFd,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		nextID:      1,
	}
}

// AddJob pushes job onto the front of the job list, assigning the next id.
func (m *Manager) AddJob(j *Job) {
	j.ID = m.nextID
	m.nextID++
	m.jobs = append([]*Job{j}, m.jobs...)
}

// GetByID finds a job by its id, nil if absent.
func (m *Manager) GetByID(id int) *Job {
	for _, j := range m.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

// Jobs returns the job list, newest first.
func (m *Manager) Jobs() []*Job { return m.jobs }

// findProcess locates the process with the given pid across every job
// (mark_process_status searches "all jobs", spec.md §4.6).
func (m *Manager) findProcess(pid int) (*Job, *Process) {
	for _, j := range m.jobs {
		for _, p := range j.Processes {
			if p.Pid == pid {
				return j, p
			}
		}
	}
	return nil, nil
}

// markProcessStatus applies a waitpid status to the process it belongs
// to, per spec.md §4.6's mark_process_status.
func (m *Manager) markProcessStatus(pid int, ws unix.WaitStatus) {
	_, p := m.findProcess(pid)
	if p == nil {
		return
	}
	p.Status = ws
	switch {
	case ws.Exited():
		p.Completed = true
	case ws.Signaled():
		p.Completed = true
		p.Terminated = true
		fmt.Fprintf(m.Stderr, "Process %d terminated by signal %d\n", pid, ws.Signal())
	case ws.Stopped():
		p.Stopped = true
	}
}

// waitOnce issues one waitpid(-1, &status, options) call, applying the
// result via markProcessStatus. It reports whether a status was
// collected and whether there is nothing left to wait for (ECHILD).
func (m *Manager) waitOnce(options int) (collected bool, noChildren bool) {
	var ws unix.WaitStatus
	pid, err := unix.Wait4(-1, &ws, options, nil)
	if err != nil {
		if err == unix.ECHILD {
			return false, true
		}
		return false, false
	}
	if pid <= 0 {
		return false, false
	}
	m.markProcessStatus(pid, ws)
	return true, false
}

// WaitForJob blocks, reaping statuses via waitpid(WUNTRACED), until job
// is stopped or completed (spec.md §4.6's wait_for_job).
func (m *Manager) WaitForJob(j *Job) {
	for !j.IsStopped() && !j.IsCompleted() {
		_, noChildren := m.waitOnce(unix.WUNTRACED)
		if noChildren {
			return
		}
	}
}

// UpdateStatus performs one non-blocking sweep (waitpid(WUNTRACED|WNOHANG)
// in a loop) over all outstanding children, used by do_job_notification.
func (m *Manager) UpdateStatus() {
	for {
		collected, noChildren := m.waitOnce(unix.WUNTRACED | unix.WNOHANG)
		if noChildren || !collected {
			return
		}
	}
}

// DoJobNotification runs after every top-level statement: reap whatever
// is ready, then print and prune terminated/completed jobs, marking
// stopped-and-unnotified jobs as notified. Exactly one notification fires
// per state transition per job (spec.md §4.6).
func (m *Manager) DoJobNotification() {
	m.UpdateStatus()

	var kept []*Job
	for _, j := range m.jobs {
		switch {
		case j.IsCompleted():
			if j.Background && m.Interactive {
				fmt.Fprint(m.Stdout, j.ListingLine())
			}
			// unlinked: not appended to kept
		case j.IsStopped():
			if !j.Notified {
				if m.Interactive {
					fmt.Fprint(m.Stdout, j.ListingLine())
				}
				j.Notified = true
			}
			kept = append(kept, j)
		default:
			kept = append(kept, j)
		}
	}
	m.jobs = kept
}

// PruneCompleted drops every completed job from the list, used by the
// "jobs" builtin after it has printed the current listing.
func (m *Manager) PruneCompleted() {
	var kept []*Job
	for _, j := range m.jobs {
		if !j.IsCompleted() {
			kept = append(kept, j)
		}
	}
	m.jobs = kept
}

// devNull lazily opens /dev/null for gap file descriptors in a launched
// job's fd table.
func devNull() (*os.File, error) {
	return os.OpenFile(os.DevNull, os.O_RDWR, 0)
}

// LaunchJob forks every process in job.Processes (pipes wired between
// consecutive stages per spec.md §4.6's launch protocol), assigns them
// all to job's process group, and either waits for them (foreground or
// non-interactive) or prints the backgrounded-job line.
//
// Builtins that must run as a pipeline stage (as opposed to the sole
// top-level command, which the interpreter runs in-process) are forked
// like any external command: internal/interp has already built such a
// stage's Name/Argv as a self-re-exec ("<self> -builtin <name> ..." or
// "<self> -c <text>"), so LaunchJob itself only ever execve()s Name with
// Argv and does not consult RawCommand.IsBuiltin/IsSubshell.
func (m *Manager) LaunchJob(j *Job, foreground bool) error {
	m.AddJob(j)
	n := len(j.Processes)

	var prevReadEnd *os.File
	for i := 0; i < n; i++ {
		p := j.Processes[i]

		var pipeReadEnd, pipeWriteEnd *os.File
		if i < n-1 {
			r, w, err := os.Pipe()
			if err != nil {
				return fmt.Errorf("pipe: %w", err)
			}
			pipeReadEnd, pipeWriteEnd = r, w
		}

		stdin := os.Stdin
		if prevReadEnd != nil {
			stdin = prevReadEnd
		} else if j.StdinFD != 0 {
			stdin = os.NewFile(uintptr(j.StdinFD), "stdin")
		}

		stdout := os.Stdout
		if pipeWriteEnd != nil {
			stdout = pipeWriteEnd
		} else if j.StdoutFD != 1 {
			stdout = os.NewFile(uintptr(j.StdoutFD), "stdout")
		}

		stderr := os.Stderr
		if j.StderrFD != 2 {
			stderr = os.NewFile(uintptr(j.StderrFD), "stderr")
		}

		pid, err := m.forkProcess(p, stdin, stdout, stderr, j.PGID, foreground)

		if prevReadEnd != nil {
			prevReadEnd.Close()
		}
		if pipeWriteEnd != nil {
			pipeWriteEnd.Close()
		}
		if err != nil {
			return err
		}

		p.Pid = pid
		if j.PGID == 0 {
			j.PGID = pid
		}
		unix.Setpgid(pid, j.PGID)

		prevReadEnd = pipeReadEnd
	}
	j.Launched = true

	if !m.Interactive {
		if j.Background {
			fmt.Fprintln(m.Stderr, "cash: job control is disabled; running in the foreground")
		}
		m.WaitForJob(j)
		return nil
	}

	if foreground {
		term.SetForegroundPGID(m.TTYFd, j.PGID)
		m.WaitForJob(j)
		term.SetForegroundPGID(m.TTYFd, m.ShellPGID)
		if ts, err := term.GetAttr(m.TTYFd); err == nil {
			j.TermState = ts
		}
		if m.ShellTermState != nil {
			term.SetAttr(m.TTYFd, m.ShellTermState)
		}
		return nil
	}

	fmt.Fprint(m.Stdout, j.LaunchedLine())
	return nil
}

// forkProcess forks one child of a job. It applies the command's own
// redirections on top of the pipeline-assigned stdin/stdout/stderr by
// building an explicit fd table before forking (spec.md §4.6's
// launch_process: "redirect STDIN/STDOUT/STDERR from the given fds,
// then apply the command's own redirections"); the parent side returns
// the child's pid.
func (m *Manager) forkProcess(p *Process, stdin, stdout, stderr *os.File, pgid int, foreground bool) (int, error) {
	if p.RawCommand.Name == "" {
		return 0, fmt.Errorf("empty command")
	}

	fdTable := map[int]*os.File{0: stdin, 1: stdout, 2: stderr}
	var opened []*os.File
	closeOpened := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, r := range p.RawCommand.Redirs {
		if r.Kind == redir.DupOut {
			src, ok := fdTable[r.Right]
			if !ok {
				closeOpened()
				return 0, fmt.Errorf("%s: bad file descriptor %d", p.RawCommand.Name, r.Right)
			}
			fdTable[r.Left] = src
			continue
		}
		flag, perm, ok := redir.OpenFlags(r.Kind)
		if !ok {
			closeOpened()
			return 0, fmt.Errorf("%s: unsupported redirection", p.RawCommand.Name)
		}
		f, err := os.OpenFile(r.FileName, flag, perm)
		if err != nil {
			closeOpened()
			return 0, fmt.Errorf("%s: %w", r.FileName, err)
		}
		opened = append(opened, f)
		fdTable[r.Left] = f
		if r.Kind == redir.OutErr || r.Kind == redir.AppendOutErr {
			fdTable[2] = f
		}
	}

	maxFD := 2
	for fd := range fdTable {
		if fd > maxFD {
			maxFD = fd
		}
	}

	var null *os.File
	files := make([]uintptr, maxFD+1)
	for i := 0; i <= maxFD; i++ {
		if f, ok := fdTable[i]; ok {
			files[i] = f.Fd()
			continue
		}
		if null == nil {
			n, err := devNull()
			if err != nil {
				closeOpened()
				return 0, fmt.Errorf("/dev/null: %w", err)
			}
			null = n
			opened = append(opened, null)
		}
		files[i] = null.Fd()
	}

	attr := &syscall.ProcAttr{
		Env:   os.Environ(),
		Files: files,
		Sys: &syscall.SysProcAttr{
			Setpgid: true,
			Pgid:    pgid,
		},
	}

	pid, err := syscall.ForkExec(p.RawCommand.Name, p.RawCommand.Argv, attr)
	closeOpened()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", p.RawCommand.Name, err)
	}
	return pid, nil
}

// PutInForeground resumes a stopped background job in the foreground:
// restores its saved terminal settings, hands it the terminal, sends
// SIGCONT, waits, then returns the terminal to the shell (spec.md §4.6's
// "continue a stopped job").
func (m *Manager) PutInForeground(j *Job) error {
	for _, p := range j.Processes {
		p.Stopped = false
	}
	j.Notified = false

	if m.Interactive {
		if j.TermState != nil {
			term.SetAttr(m.TTYFd, j.TermState)
		}
		term.SetForegroundPGID(m.TTYFd, j.PGID)
	}
	if err := unix.Kill(-j.PGID, unix.SIGCONT); err != nil {
		return fmt.Errorf("fg: %w", err)
	}
	m.WaitForJob(j)
	if m.Interactive {
		term.SetForegroundPGID(m.TTYFd, m.ShellPGID)
		if ts, err := term.GetAttr(m.TTYFd); err == nil {
			j.TermState = ts
		}
		if m.ShellTermState != nil {
			term.SetAttr(m.TTYFd, m.ShellTermState)
		}
	}
	return nil
}

// PutInBackground resumes a stopped job without taking the terminal.
func (m *Manager) PutInBackground(j *Job) error {
	for _, p := range j.Processes {
		p.Stopped = false
	}
	j.Notified = false
	return unix.Kill(-j.PGID, unix.SIGCONT)
}
