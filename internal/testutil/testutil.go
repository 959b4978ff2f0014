// Package testutil provides test utilities for end-to-end tests
package testutil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/actions"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/app"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/clock"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/config"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/system"
)

// Epoch is the fake clock's starting time.
var Epoch = time.Date(2024, 10, 23, 12, 0, 0, 0, time.UTC)

// Runner file locations inside the mock filesystem.
var RunnerFiles = actions.Files{
	Output: "/runner/_temp/github_output",
	Env:    "/runner/_temp/github_env",
	Path:   "/runner/_temp/github_path",
}

// TestEnv holds the test environment
type TestEnv struct {
	T        *testing.T
	FS       *system.MockFS
	Executor *system.MockExecutor
	Starter  *system.MockStarter
	Clock    *clock.FakeClock
	Server   *httptest.Server
	App      *app.App

	// Binary is served for every download request.
	Binary []byte

	// DownloadStatus, when non-zero, replaces the binary with an empty
	// response of that status.
	DownloadStatus int

	// Stdout captures runner annotations.
	Stdout *bytes.Buffer

	mu       sync.Mutex
	env      map[string]string
	requests []string
}

// NewTestEnv creates a test environment with a fake release server,
// mock host primitives and an active gcloud account. The environment is
// installed as app.Default until the test ends.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	mockFS := system.NewMockFS()
	mockFS.AddDir("/tmp")
	mockFS.AddDir("/runner/_temp")

	exec := system.NewMockExecutor()
	exec.AddResponse("gcloud auth", []byte(`[{"account":"ci@proj.iam.gserviceaccount.com","status":"ACTIVE"}]`), nil)

	env := &TestEnv{
		T:        t,
		FS:       mockFS,
		Executor: exec,
		Starter:  system.NewMockStarter(),
		Clock:    clock.Fake(Epoch),
		Binary:   []byte("\x7fELF cloud-sql-proxy test build"),
		Stdout:   &bytes.Buffer{},
		env: map[string]string{
			"PATH":          "/usr/bin:/bin",
			"GITHUB_OUTPUT": RunnerFiles.Output,
			"GITHUB_ENV":    RunnerFiles.Env,
			"GITHUB_PATH":   RunnerFiles.Path,
		},
	}

	env.Server = httptest.NewServer(http.HandlerFunc(env.serve))
	t.Cleanup(env.Server.Close)

	env.App = app.New(
		app.WithFS(mockFS),
		app.WithExecutor(exec),
		app.WithStarter(env.Starter),
		app.WithClock(env.Clock),
		app.WithHTTPClient(env.Server.Client()),
		app.WithEnv(env.Getenv, env.Setenv),
		app.WithStdout(env.Stdout),
	)

	original := app.Default
	app.SetDefault(env.App)
	t.Cleanup(func() { app.SetDefault(original) })

	return env
}

func (e *TestEnv) serve(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	e.requests = append(e.requests, r.URL.Path)
	e.mu.Unlock()

	switch {
	case r.URL.Path == "/releases/latest":
		w.Header().Set("Content-Type", "application/json")
		w.Write(ReleaseLatest())
	case strings.HasPrefix(r.URL.Path, "/download/"):
		e.mu.Lock()
		status := e.DownloadStatus
		e.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		w.Write(e.Binary)
	default:
		http.NotFound(w, r)
	}
}

// FailDownloads makes every binary request return status.
func (e *TestEnv) FailDownloads(status int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.DownloadStatus = status
}

// Inputs returns inputs that point at the fake server.
func (e *TestEnv) Inputs() config.Inputs {
	return config.Inputs{
		InstanceConnectionName: "proj:region:db",
		Port:                   "5432",
		BinPath:                "/runner/_temp/bin",
		SocketRoot:             config.DefaultSocketRoot,
		SocketTimeout:          config.DefaultSocketTimeout,
		GcloudPath:             "gcloud",
		ReleaseURL:             e.Server.URL + "/releases/latest",
		DownloadURLTemplate:    e.Server.URL + "/download/{version}/cloud-sql-proxy.{os}.{arch}",
	}
}

// SocketAppearsAfter makes the proxy create root/conn/file once the
// detector has slept polls times.
func (e *TestEnv) SocketAppearsAfter(polls int, root, conn, file string) {
	e.Clock.OnSleep = func(n int) {
		if n == polls {
			e.FS.AddFile(path.Join(root, conn, file), nil, 0o777|os.ModeSocket)
		}
	}
}

// Getenv reads the fake process environment.
func (e *TestEnv) Getenv(key string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.env[key]
}

// Setenv writes the fake process environment.
func (e *TestEnv) Setenv(key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.env[key] = value
	return nil
}

// Requests returns the paths requested from the fake server.
func (e *TestEnv) Requests() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.requests...)
}

// RunnerFile returns the contents of a runner command file, or "" if it
// was never written.
func (e *TestEnv) RunnerFile(name string) string {
	data, _ := e.FS.GetFile(name)
	return string(data)
}

// ParseRunnerFile decodes name<<delim entries from a runner file.
func ParseRunnerFile(content string) map[string]string {
	out := make(map[string]string)
	lines := strings.Split(content, "\n")
	for i := 0; i < len(lines); i++ {
		name, delim, ok := strings.Cut(lines[i], "<<")
		if !ok {
			continue
		}
		var value []string
		for i++; i < len(lines) && lines[i] != delim; i++ {
			value = append(value, lines[i])
		}
		out[name] = strings.Join(value, "\n")
	}
	return out
}
