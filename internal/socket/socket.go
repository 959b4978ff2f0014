// Package socket waits for the Cloud SQL Proxy to create its Unix socket.
//
// The proxy is detached, so there is no handshake: readiness is inferred by
// polling the socket root until a connection directory holding a socket file
// shows up, or until the timeout expires.
package socket

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/clock"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/errors"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/logging"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/system"
)

const (
	// DefaultTimeout bounds Wait.
	DefaultTimeout = 10 * time.Second

	// DefaultFileTimeout is the timeout used by the general-purpose wait command.
	DefaultFileTimeout = 20 * time.Second

	// DefaultInterval is the pause between polls.
	DefaultInterval = time.Second
)

// Descriptor locates the proxy's socket.
type Descriptor struct {
	// Dir is the connection directory under the socket root.
	Dir string
	// File is the socket file name inside Dir.
	File string
}

// State is the detector's position in the poll loop.
type State int

const (
	Waiting State = iota
	Ready
	TimedOut
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Ready:
		return "ready"
	case TimedOut:
		return "timed-out"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Lister returns the names of the entries directly under dir.
type Lister func(dir string) ([]string, error)

// ListDir returns a Lister backed by fsys.
func ListDir(fsys system.FileSystem) Lister {
	return func(dir string) ([]string, error) {
		entries, err := fsys.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		return names, nil
	}
}

// Detector polls a directory until the expected entries appear.
type Detector struct {
	List     Lister
	Clock    clock.Clock
	Timeout  time.Duration
	Interval time.Duration
}

// NewDetector returns a Detector reading fsys with the default timeout and
// interval on the real clock.
func NewDetector(fsys system.FileSystem) *Detector {
	return &Detector{
		List:     ListDir(fsys),
		Clock:    clock.Real(),
		Timeout:  DefaultTimeout,
		Interval: DefaultInterval,
	}
}

// Poll inspects root once. It reports Waiting while root is empty or the
// connection directory has no socket yet. More than one entry at either
// level is an error.
func (d *Detector) Poll(root string) (State, Descriptor, error) {
	conns, err := d.List(root)
	if err != nil {
		return Waiting, Descriptor{}, errors.InternalError("Error reading directory", err)
	}
	switch len(conns) {
	case 0:
		return Waiting, Descriptor{}, nil
	case 1:
	default:
		return Waiting, Descriptor{}, errors.InternalError(
			fmt.Sprintf("expected exactly one connection directory in %s", root),
			fmt.Errorf("found %v", conns))
	}

	// Listed names are single path elements; a symlinked entry is reported
	// under root, not at its target.
	dir := filepath.Join(root, conns[0])

	files, err := d.List(dir)
	if err != nil {
		return Waiting, Descriptor{}, errors.InternalError("Error reading directory", err)
	}
	switch len(files) {
	case 0:
		return Waiting, Descriptor{}, nil
	case 1:
		return Ready, Descriptor{Dir: dir, File: files[0]}, nil
	default:
		return Waiting, Descriptor{}, errors.InternalError(
			fmt.Sprintf("expected exactly one socket file in %s", dir),
			fmt.Errorf("found %v", files))
	}
}

// Wait polls root until the proxy socket exists. The deadline is fixed when
// Wait is entered.
func (d *Detector) Wait(root string) (Descriptor, error) {
	var desc Descriptor
	err := d.loop(root, "Timeout reached waiting for socket file", func() (bool, error) {
		state, got, err := d.Poll(root)
		if err != nil {
			return false, err
		}
		desc = got
		return state == Ready, nil
	})
	if err != nil {
		return Descriptor{}, err
	}
	logging.Debug("socket ready", "dir", desc.Dir, "file", desc.File)
	return desc, nil
}

// WaitFile polls dir until it has at least one entry and returns the first
// entry's name.
func (d *Detector) WaitFile(dir string) (string, error) {
	var name string
	err := d.loop(dir, "Timeout reached waiting for file", func() (bool, error) {
		names, err := d.List(dir)
		if err != nil {
			return false, errors.InternalError("Error reading directory", err)
		}
		if len(names) == 0 {
			return false, nil
		}
		name = names[0]
		return true, nil
	})
	return name, err
}

// loop runs check until it reports done, fails, or the timeout expires.
// The last sleep is clamped to the deadline.
func (d *Detector) loop(dir, timeoutMsg string, check func() (bool, error)) error {
	clk := d.Clock
	if clk == nil {
		clk = clock.Real()
	}
	interval := d.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	start := clk.Now()
	deadline := start.Add(d.Timeout)
	log := logging.With("dir", dir, "timeout", d.Timeout)

	for attempt := 1; ; attempt++ {
		done, err := check()
		if err != nil {
			return err
		}
		if done {
			log.Debug("poll finished", "state", Ready, "attempt", attempt, "elapsed", clk.Now().Sub(start))
			return nil
		}

		now := clk.Now()
		if !now.Before(deadline) {
			log.Debug("poll finished", "state", TimedOut, "attempt", attempt, "elapsed", now.Sub(start))
			return errors.Timeout(timeoutMsg)
		}

		log.Debug("polling", "state", Waiting, "attempt", attempt)
		clk.Sleep(min(interval, deadline.Sub(now)))
	}
}
