package app

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/clock"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/config"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/system"
)

func TestNew(t *testing.T) {
	app := New()

	if app == nil {
		t.Fatal("New() returned nil")
	}
	if app.FS == nil || app.Executor == nil || app.Starter == nil {
		t.Error("system dependencies should default to the host")
	}
	if app.Clock == nil || app.HTTPClient == nil {
		t.Error("Clock and HTTPClient should not be nil")
	}
	if app.Getenv == nil || app.Setenv == nil || app.Stdout == nil {
		t.Error("environment access should not be nil")
	}
}

func TestNew_MultipleOptions(t *testing.T) {
	mockFS := system.NewMockFS()
	mockExec := system.NewMockExecutor()
	starter := system.NewMockStarter()
	clk := clock.Fake(time.Unix(0, 0))
	client := &http.Client{}
	var out bytes.Buffer

	app := New(
		WithFS(mockFS),
		WithExecutor(mockExec),
		WithStarter(starter),
		WithClock(clk),
		WithHTTPClient(client),
		WithStdout(&out),
	)

	if app.FS != mockFS {
		t.Error("FS not set correctly")
	}
	if app.Executor != mockExec {
		t.Error("Executor not set correctly")
	}
	if app.Starter != starter {
		t.Error("Starter not set correctly")
	}
	if app.Clock != clk {
		t.Error("Clock not set correctly")
	}
	if app.HTTPClient != client {
		t.Error("HTTPClient not set correctly")
	}
	if app.Stdout != &out {
		t.Error("Stdout not set correctly")
	}
}

func TestWithEnv(t *testing.T) {
	env := map[string]string{"GITHUB_OUTPUT": "/runner/output"}
	app := New(WithEnv(
		func(k string) string { return env[k] },
		func(k, v string) error { env[k] = v; return nil },
	))

	if got := app.Getenv("GITHUB_OUTPUT"); got != "/runner/output" {
		t.Errorf("Getenv() = %q", got)
	}
	if err := app.Setenv("X", "1"); err != nil || env["X"] != "1" {
		t.Error("Setenv not wired")
	}
}

func TestRunner(t *testing.T) {
	mockFS := system.NewMockFS()
	clk := clock.Fake(time.Unix(0, 0))
	app := New(WithFS(mockFS), WithClock(clk))

	in := config.Inputs{SocketTimeout: 3 * time.Second, ReleaseURL: config.DefaultReleaseURL}
	r := app.Runner(in)

	if r.Provisioner == nil || r.Gate == nil || r.Launcher == nil || r.Waiter == nil || r.Publisher == nil {
		t.Fatalf("Runner() left a component nil: %+v", r)
	}
	if r.FS != mockFS {
		t.Error("Runner FS not wired")
	}

	d := app.Detector(in.SocketTimeout)
	if d.Timeout != 3*time.Second || d.Clock != clk {
		t.Errorf("Detector() = %+v", d)
	}
}

func TestSetDefault(t *testing.T) {
	// Save original default
	original := Default
	defer func() { Default = original }()

	customApp := New(WithFS(system.NewMockFS()))
	SetDefault(customApp)

	if Default != customApp {
		t.Error("SetDefault did not update Default")
	}
}

func TestResetDefault(t *testing.T) {
	// Save original default
	original := Default
	defer func() { Default = original }()

	customApp := New(WithFS(system.NewMockFS()))
	SetDefault(customApp)

	ResetDefault()

	if Default == customApp {
		t.Error("ResetDefault did not create new Default")
	}
	if Default.FS == nil {
		t.Error("ResetDefault should create app with host filesystem")
	}
}
