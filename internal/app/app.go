// Package app holds the process-wide dependencies of setup-cloudsql-proxy.
// It allows dependency injection for testing.
package app

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/actions"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/auth"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/clock"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/config"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/provision"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/proxy"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/release"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/setup"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/socket"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/system"
)

// App holds the application dependencies
type App struct {
	FS         system.FileSystem
	Executor   system.CommandExecutor
	Starter    system.ProcessStarter
	Clock      clock.Clock
	HTTPClient *http.Client

	// Getenv and Setenv reach the process environment.
	Getenv func(string) string
	Setenv func(string, string) error

	// Stdout receives runner annotations.
	Stdout io.Writer
}

// Option is a function that configures the App
type Option func(*App)

// WithFS sets the filesystem
func WithFS(fs system.FileSystem) Option {
	return func(a *App) {
		a.FS = fs
	}
}

// WithExecutor sets the command executor
func WithExecutor(e system.CommandExecutor) Option {
	return func(a *App) {
		a.Executor = e
	}
}

// WithStarter sets the process starter
func WithStarter(s system.ProcessStarter) Option {
	return func(a *App) {
		a.Starter = s
	}
}

// WithClock sets the clock used for polling
func WithClock(c clock.Clock) Option {
	return func(a *App) {
		a.Clock = c
	}
}

// WithHTTPClient sets the HTTP client for release lookups and downloads
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) {
		a.HTTPClient = c
	}
}

// WithEnv replaces process environment access
func WithEnv(getenv func(string) string, setenv func(string, string) error) Option {
	return func(a *App) {
		a.Getenv = getenv
		a.Setenv = setenv
	}
}

// WithStdout sets where annotations are written
func WithStdout(w io.Writer) Option {
	return func(a *App) {
		a.Stdout = w
	}
}

// New creates a new App with the given options.
func New(opts ...Option) *App {
	app := &App{
		FS:         system.DefaultFS(),
		Executor:   system.DefaultExecutor(),
		Starter:    system.DefaultStarter(),
		Clock:      clock.Real(),
		HTTPClient: &http.Client{Timeout: provision.DownloadTimeout},
		Getenv:     os.Getenv,
		Setenv:     os.Setenv,
		Stdout:     os.Stdout,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// Loader returns a config loader reading this app's environment.
func (a *App) Loader() *config.Loader {
	return &config.Loader{Getenv: a.Getenv, FS: a.FS}
}

// Resolver returns a release resolver for in.ReleaseURL.
func (a *App) Resolver(in config.Inputs) *release.Resolver {
	return release.NewResolver(a.HTTPClient, in.ReleaseURL)
}

// Provisioner returns a provisioner configured from in.
func (a *App) Provisioner(in config.Inputs) *provision.Provisioner {
	return provision.New(provision.Options{
		Resolver:    a.Resolver(in),
		Client:      a.HTTPClient,
		FS:          a.FS,
		URLTemplate: in.DownloadURLTemplate,
	})
}

// Gate returns the auth gate configured from in.
func (a *App) Gate(in config.Inputs) *auth.Gate {
	return auth.NewGate(
		auth.WithExecutor(a.Executor),
		auth.WithCredentialsFile(in.CredentialsFile),
		auth.WithGcloud(in.GcloudPath),
	)
}

// Supervisor returns a proxy supervisor using the app's starter.
func (a *App) Supervisor() *proxy.Supervisor {
	return proxy.NewSupervisor(a.Starter)
}

// Detector returns a socket detector with the given timeout.
func (a *App) Detector(timeout time.Duration) *socket.Detector {
	d := socket.NewDetector(a.FS)
	d.Clock = a.Clock
	d.Timeout = timeout
	return d
}

// Actions returns a runner-file writer for the current step.
func (a *App) Actions() *actions.Runner {
	r := actions.New(a.FS, actions.FilesFromEnv(a.Getenv), a.Stdout)
	r.Getenv = a.Getenv
	r.Setenv = a.Setenv
	return r
}

// Runner wires every component for a full run.
func (a *App) Runner(in config.Inputs) *setup.Runner {
	return &setup.Runner{
		Provisioner: a.Provisioner(in),
		Gate:        a.Gate(in),
		Launcher:    a.Supervisor(),
		Waiter:      a.Detector(in.SocketTimeout),
		Publisher:   a.Actions(),
		FS:          a.FS,
	}
}

// Default is the default application instance
var Default = New()

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault resets to the default application instance
func ResetDefault() {
	Default = New()
}
