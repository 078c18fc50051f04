package daemon

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotRunning is returned when no live process is recorded.
	ErrNotRunning = errors.New("not running")
	// ErrAlreadyRunning is returned by Start when a live process is recorded.
	ErrAlreadyRunning = errors.New("already running")
)

// Process tracks one background process through a PID file and a log file
// kept side by side in a state directory.
type Process struct {
	Name string
	Dir  string
}

// New returns a Process named name whose files live in dir.
func New(dir, name string) *Process {
	return &Process{Name: name, Dir: dir}
}

// PIDPath is the path of the PID file.
func (p *Process) PIDPath() string {
	return filepath.Join(p.Dir, p.Name+".pid")
}

// LogPath is the path the detached process writes its output to.
func (p *Process) LogPath() string {
	return filepath.Join(p.Dir, p.Name+".log")
}

// WritePID records pid.
func (p *Process) WritePID(pid int) error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	return os.WriteFile(p.PIDPath(), []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// ReadPID returns the recorded PID.
func (p *Process) ReadPID() (int, error) {
	data, err := os.ReadFile(p.PIDPath())
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file content: %w", err)
	}
	return pid, nil
}

// Release removes the PID file. A missing file is not an error.
func (p *Process) Release() error {
	if err := os.Remove(p.PIDPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Running reports the recorded PID and whether that process is alive.
func (p *Process) Running() (int, bool) {
	pid, err := p.ReadPID()
	if err != nil {
		return 0, false
	}
	return pid, alive(pid)
}

// Start launches exe with args detached from the terminal, appending its
// output to LogPath, and records the child's PID. If the PID cannot be
// recorded the child is killed and its PID returned with the error.
func (p *Process) Start(exe string, args ...string) (int, error) {
	if pid, ok := p.Running(); ok {
		return pid, fmt.Errorf("%s %w (pid %d)", p.Name, ErrAlreadyRunning, pid)
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return 0, fmt.Errorf("create state dir: %w", err)
	}

	logFile, err := os.OpenFile(p.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command(exe, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", p.Name, err)
	}

	pid := cmd.Process.Pid
	if err := p.WritePID(pid); err != nil {
		// Untracked children could never be stopped.
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return pid, fmt.Errorf("write PID file: %w", err)
	}
	_ = cmd.Process.Release()
	return pid, nil
}

// Stop asks the recorded process to terminate, escalating to a kill when it
// outlives timeout, and removes the PID file.
func (p *Process) Stop(timeout time.Duration) error {
	pid, ok := p.Running()
	if !ok {
		_ = p.Release()
		return fmt.Errorf("%s %w", p.Name, ErrNotRunning)
	}

	if err := terminate(pid); err != nil {
		return fmt.Errorf("signal %s (pid %d): %w", p.Name, pid, err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !alive(pid) {
			return p.Release()
		}
		time.Sleep(100 * time.Millisecond)
	}

	if err := kill(pid); err != nil && alive(pid) {
		return fmt.Errorf("kill %s (pid %d): %w", p.Name, pid, err)
	}
	return p.Release()
}
