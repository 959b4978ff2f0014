package system

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

// osExecutor implements CommandExecutor using real OS operations.
type osExecutor struct{}

func (e *osExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// osStarter implements ProcessStarter using os/exec.
type osStarter struct {
	stdout io.Writer
	stderr io.Writer
}

// NewStarter returns a ProcessStarter whose children write to the given
// streams. Children never share the caller's stdin.
func NewStarter(stdout, stderr io.Writer) ProcessStarter {
	return &osStarter{stdout: stdout, stderr: stderr}
}

func (s *osStarter) StartDetached(path string, args []string, obs Observers) (int, error) {
	// Not CommandContext: the child must survive the caller's context.
	cmd := exec.Command(path, args...)
	cmd.Stdin = nil
	cmd.Stdout = s.stdout
	cmd.Stderr = s.stderr
	cmd.SysProcAttr = detachedProcAttr()

	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid

	// Reap in the background so exit telemetry reaches the log while this
	// process is still alive. Nothing blocks on this goroutine.
	go func() {
		err := cmd.Wait()
		if err == nil {
			if obs.OnExit != nil {
				obs.OnExit(ExitStatus{Code: 0})
			}
			return
		}

		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			if obs.OnError != nil {
				obs.OnError(err)
			}
			return
		}

		status := ExitStatus{Code: exitErr.ExitCode(), Signal: signalName(exitErr)}
		if obs.OnExit != nil {
			obs.OnExit(status)
		}
	}()

	return pid, nil
}
