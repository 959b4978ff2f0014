// Package setup runs the whole provisioning sequence: download the proxy,
// authenticate, launch it detached and wait for its socket.
package setup

import (
	"context"
	"time"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/actions"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/config"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/errors"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/logging"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/provision"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/proxy"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/socket"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/system"
)

// Exported names.
const (
	OutputSocketPath = "socket_path"
	OutputSocketFile = "socket_file"
	EnvSocketPath    = "CLOUDSQL_SOCKET_PATH"
	EnvSocketFile    = "CLOUDSQL_SOCKET_FILE"
)

// Provisioner downloads the proxy into a directory.
type Provisioner interface {
	Provision(ctx context.Context, dir string) (*provision.Binary, error)
}

// Gate reports whether credentials are available.
type Gate interface {
	Ensure(ctx context.Context) (bool, error)
}

// Launcher starts the proxy without waiting on it.
type Launcher interface {
	Launch(path string, args []string) (*proxy.Handle, error)
}

// Waiter blocks until the socket exists under root.
type Waiter interface {
	Wait(root string) (socket.Descriptor, error)
}

// Publisher hands results to later CI steps.
type Publisher interface {
	AddPath(dir string) error
	ExportVariables(entries ...actions.Entry) error
	SetOutputs(entries ...actions.Entry) error
}

// Runner sequences the components. All fields are required.
type Runner struct {
	Provisioner Provisioner
	Gate        Gate
	Launcher    Launcher
	Waiter      Waiter
	Publisher   Publisher
	FS          system.FileSystem
}

// Result is what a successful run produced.
type Result struct {
	Binary *provision.Binary
	Proxy  *proxy.Handle
	Socket socket.Descriptor
}

// Run executes every step in order and stops at the first failure. Outputs
// are published only after the socket is ready.
func (r *Runner) Run(ctx context.Context, in config.Inputs) (*Result, error) {
	start := time.Now()

	logging.UserInfo("Starting download")
	bin, err := r.Provisioner.Provision(ctx, in.BinPath)
	if err != nil {
		return nil, err
	}

	args := proxy.BuildArgs(proxy.Options{
		InstanceConnectionName: in.InstanceConnectionName,
		Address:                in.Address,
		Port:                   in.Port,
		PrivateIP:              in.PrivateIP,
		SocketRoot:             in.SocketRoot,
	})

	if err := proxy.PrepareSocketRoot(r.FS, in.SocketRoot); err != nil {
		return nil, err
	}

	ok, err := r.Gate.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	// A proxy started with --gcloud-auth and no active account never creates
	// its socket.
	if !ok {
		return nil, errors.AuthError("No active gcloud credentials found; authenticate before starting the proxy", nil)
	}

	handle, err := r.Launcher.Launch(bin.Path, args)
	if err != nil {
		return nil, err
	}

	logging.UserInfo("Waiting for socket in %s", in.SocketRoot)
	sock, err := r.Waiter.Wait(in.SocketRoot)
	if err != nil {
		return nil, err
	}
	logging.UserSuccess("Socket file exists, Cloud SQL Proxy is ready for connections")

	if err := r.publish(sock); err != nil {
		return nil, errors.InternalError("Failed to export socket location", err)
	}

	logging.Info("setup complete",
		"socket_dir", sock.Dir, "socket_file", sock.File, "pid", handle.PID, "elapsed", time.Since(start))

	return &Result{Binary: bin, Proxy: handle, Socket: sock}, nil
}

// publish writes step outputs last, each group in one write, so a failed
// run never leaves outputs behind.
func (r *Runner) publish(sock socket.Descriptor) error {
	if err := r.Publisher.AddPath(sock.Dir); err != nil {
		return err
	}
	if err := r.Publisher.ExportVariables(
		actions.Entry{Name: EnvSocketPath, Value: sock.Dir},
		actions.Entry{Name: EnvSocketFile, Value: sock.File},
	); err != nil {
		return err
	}
	return r.Publisher.SetOutputs(
		actions.Entry{Name: OutputSocketPath, Value: sock.Dir},
		actions.Entry{Name: OutputSocketFile, Value: sock.File},
	)
}
