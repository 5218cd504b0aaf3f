//go:build unix

package gateways

import (
	"errors"
	"os/exec"
	"syscall"
)

// startInProcessGroup puts the child in its own process group so that
// cancellation reaches everything it spawned
func startInProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = waitDelay
}

// killProcessGroup sends SIGKILL to the child's process group
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
