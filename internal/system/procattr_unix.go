//go:build unix

package system

import (
	"os/exec"
	"syscall"
)

// detachedProcAttr puts the child in a new session so it has no controlling
// terminal and is not signalled with the caller's process group. No
// Pdeathsig: the child must keep running after the caller exits.
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setsid: true,
	}
}

// signalName returns the terminating signal of an exited process, if any.
func signalName(exitErr *exec.ExitError) string {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ws.Signal().String()
	}
	return ""
}
