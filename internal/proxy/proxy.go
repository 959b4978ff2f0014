package proxy

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/errors"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/logging"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/system"
)

// DefaultSocketRoot is the directory passed to --unix-socket.
const DefaultSocketRoot = "/tmp/cloudsql"

// Options are the proxy settings that end up on its command line.
type Options struct {
	// InstanceConnectionName is "project:region:instance". Required.
	InstanceConnectionName string

	Address   string
	Port      string
	PrivateIP string

	// SocketRoot is the --unix-socket directory.
	SocketRoot string
}

// BuildArgs returns the proxy argv (without the executable). Blank optional
// values are left out entirely.
func BuildArgs(opts Options) []string {
	args := []string{opts.InstanceConnectionName, "--gcloud-auth"}

	for _, f := range []struct {
		flag  string
		value string
	}{
		{"--address", opts.Address},
		{"--port", opts.Port},
		{"--private-ip", opts.PrivateIP},
	} {
		if v := strings.TrimSpace(f.value); v != "" {
			args = append(args, f.flag, v)
		}
	}

	root := opts.SocketRoot
	if root == "" {
		root = DefaultSocketRoot
	}
	return append(args, "--unix-socket", root)
}

// PrepareSocketRoot creates the socket root. The directory must not exist
// yet so a stale socket from an earlier run is never picked up.
func PrepareSocketRoot(fs system.FileSystem, path string) error {
	if err := fs.Mkdir(path, 0o755); err != nil {
		return errors.InternalError(fmt.Sprintf("Failed to create socket directory %s", path), err)
	}
	logging.Debug("created socket root", "path", path)
	return nil
}

// Handle identifies a launched proxy process.
type Handle struct {
	// ID correlates log lines for this launch.
	ID             uuid.UUID
	ExecutablePath string
	PID            int
	Args           []string
}

// String returns the shell-quoted command line.
func (h *Handle) String() string {
	return shellquote.Join(append([]string{h.ExecutablePath}, h.Args...)...)
}

// Supervisor starts proxy processes without waiting on them.
type Supervisor struct {
	starter system.ProcessStarter
}

// NewSupervisor creates a Supervisor. A nil starter uses
// system.DefaultStarter().
func NewSupervisor(starter system.ProcessStarter) *Supervisor {
	if starter == nil {
		starter = system.DefaultStarter()
	}
	return &Supervisor{starter: starter}
}

// Launch starts path with args as a detached child and returns as soon as
// the process exists. It does not imply the proxy is ready.
func (s *Supervisor) Launch(path string, args []string) (*Handle, error) {
	h := &Handle{
		ID:             uuid.New(),
		ExecutablePath: path,
		Args:           append([]string(nil), args...),
	}
	log := logging.With("launch", h.ID.String())

	log.Info("starting Cloud SQL Proxy", "command", h.String())

	// Observers only log; the child is never waited on here.

	pid, err := s.starter.StartDetached(path, h.Args, system.Observers{
		OnExit: func(st system.ExitStatus) {
			if st.Signal != "" {
				log.Warn("Cloud SQL Proxy terminated", "signal", st.Signal)
				return
			}
			log.Warn("Cloud SQL Proxy exited", "code", st.Code)
		},
		OnError: func(err error) {
			log.Error("Cloud SQL Proxy process error", "error", err)
		},
	})
	if err != nil {
		return nil, errors.InternalError("Failed to start Cloud SQL Proxy", err)
	}
	h.PID = pid

	logging.UserInfo("Started Cloud SQL Proxy (pid %d)", pid)
	return h, nil
}
