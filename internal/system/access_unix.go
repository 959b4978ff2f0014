//go:build unix

package system

import "golang.org/x/sys/unix"

// accessReadWrite checks read and write permission with access(2), which
// honours the real UID the way the kernel will when the file is opened.
func accessReadWrite(path string) error {
	return unix.Access(path, unix.R_OK|unix.W_OK)
}
