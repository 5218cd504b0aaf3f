//go:build !unix

package gateways

import (
	"errors"
	"os"
	"os/exec"
)

// startInProcessGroup bounds Wait after cancellation; there are no process groups to kill
func startInProcessGroup(cmd *exec.Cmd) {
	cmd.WaitDelay = waitDelay
}

// killProcessGroup kills the direct child
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
