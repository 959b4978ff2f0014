// Package system provides abstractions for OS operations to enable testing.
package system

import (
	"context"
	"io"
	"io/fs"
	"os"
)

// FileSystem abstracts file system operations for testability.
type FileSystem interface {
	// ReadFile reads the named file and returns the contents.
	ReadFile(path string) ([]byte, error)

	// AppendFile appends data to the named file, creating it if necessary.
	AppendFile(path string, data []byte, perm fs.FileMode) error

	// Create creates or truncates the named file for streaming writes.
	Create(path string, perm fs.FileMode) (io.WriteCloser, error)

	// Chmod changes the mode of the named file.
	Chmod(path string, mode fs.FileMode) error

	// Mkdir creates a single directory. It fails if path already exists.
	Mkdir(path string, perm fs.FileMode) error

	// MkdirAll creates a directory named path, along with any necessary parents.
	MkdirAll(path string, perm fs.FileMode) error

	// Access reports whether path exists and is readable and writable by
	// the current process.
	Access(path string) error

	// ReadDir reads the named directory, returning all its directory entries.
	ReadDir(path string) ([]fs.DirEntry, error)
}

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Execute runs a command and returns its combined output.
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExitStatus describes how a detached process ended.
type ExitStatus struct {
	// Code is the exit code, or -1 when the process was killed by a signal.
	Code int

	// Signal names the terminating signal, empty on a normal exit.
	Signal string
}

// Observers are best-effort callbacks for a detached process. They run on a
// background goroutine and must not block.
type Observers struct {
	// OnExit is called once the process has exited.
	OnExit func(ExitStatus)

	// OnError is called if waiting on the process fails for a reason other
	// than a non-zero exit.
	OnError func(error)
}

// ProcessStarter launches processes that outlive the caller.
type ProcessStarter interface {
	// StartDetached starts path with args in its own session and returns its
	// PID without waiting for it. Observers fire asynchronously.
	StartDetached(path string, args []string, obs Observers) (int, error)
}

// Default instances using real OS operations.
var (
	defaultFS       FileSystem      = &osFileSystem{}
	defaultExecutor CommandExecutor = &osExecutor{}
	defaultStarter  ProcessStarter  = NewStarter(os.Stdout, os.Stderr)
)

// DefaultFS returns the default FileSystem implementation using real OS operations.
func DefaultFS() FileSystem {
	return defaultFS
}

// DefaultExecutor returns the default CommandExecutor implementation.
func DefaultExecutor() CommandExecutor {
	return defaultExecutor
}

// DefaultStarter returns the default ProcessStarter implementation.
func DefaultStarter() ProcessStarter {
	return defaultStarter
}

// osFileSystem implements FileSystem using real OS operations.
type osFileSystem struct{}

func (f *osFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (f *osFileSystem) AppendFile(path string, data []byte, perm fs.FileMode) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (f *osFileSystem) Create(path string, perm fs.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
}

func (f *osFileSystem) Chmod(path string, mode fs.FileMode) error {
	return os.Chmod(path, mode)
}

func (f *osFileSystem) Mkdir(path string, perm fs.FileMode) error {
	return os.Mkdir(path, perm)
}

func (f *osFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (f *osFileSystem) Access(path string) error {
	return accessReadWrite(path)
}

func (f *osFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}
