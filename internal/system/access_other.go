//go:build !unix

package system

import "os"

// accessReadWrite falls back to an existence check where access(2) is not
// available.
func accessReadWrite(path string) error {
	_, err := os.Stat(path)
	return err
}
