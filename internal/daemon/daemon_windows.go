//go:build windows

package daemon

import (
	"os"
	"os/exec"
	"syscall"
)

func detach(_ *exec.Cmd) {}

func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// FindProcess always succeeds on Windows.
	return proc.Signal(syscall.Signal(0)) == nil
}

// terminate kills outright; Windows has no reliable SIGTERM delivery.
func terminate(pid int) error { return kill(pid) }

func kill(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}
