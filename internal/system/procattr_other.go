//go:build !unix

package system

import (
	"os/exec"
	"syscall"
)

// detachedProcAttr returns default attributes where sessions are not
// available.
func detachedProcAttr() *syscall.SysProcAttr {
	return nil
}

func signalName(*exec.ExitError) string {
	return ""
}
