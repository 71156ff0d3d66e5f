//go:build windows

package copilot

import "os/exec"

func setupProcessGroup(*exec.Cmd) {}

// killProcessGroup kills the command only; WaitDelay stops Run from waiting
// on children that still hold its pipes.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
