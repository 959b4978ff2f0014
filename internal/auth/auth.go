// Package auth checks or establishes gcloud credentials before the proxy
// is started.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/errors"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/logging"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/system"
)

// DefaultGcloud is the gcloud binary looked up on PATH.
const DefaultGcloud = "gcloud"

// Hint is logged when the ambient credential check fails.
const Hint = "Failed to check authentication status. " +
	"Add the google-github-actions/auth step before this one so that credentials are available."

// Gate verifies that the environment holds usable Google Cloud credentials.
// It never obtains credentials interactively.
type Gate struct {
	executor        system.CommandExecutor
	credentialsFile string
	gcloud          string
}

// Option configures a Gate.
type Option func(*Gate)

// WithExecutor sets the command executor.
func WithExecutor(e system.CommandExecutor) Option {
	return func(g *Gate) {
		g.executor = e
	}
}

// WithCredentialsFile sets the credentials file used for login. An empty
// path means "use whatever is already active".
func WithCredentialsFile(path string) Option {
	return func(g *Gate) {
		g.credentialsFile = path
	}
}

// WithGcloud overrides the gcloud binary.
func WithGcloud(path string) Option {
	return func(g *Gate) {
		if path != "" {
			g.gcloud = path
		}
	}
}

// NewGate creates a Gate.
func NewGate(opts ...Option) *Gate {
	g := &Gate{
		executor: system.DefaultExecutor(),
		gcloud:   DefaultGcloud,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Ensure logs in with the credentials file when one is configured and
// reports true. Otherwise it reports whether gcloud already has an active
// account.
func (g *Gate) Ensure(ctx context.Context) (bool, error) {
	if g.credentialsFile != "" {
		return g.login(ctx)
	}
	return g.active(ctx)
}

func (g *Gate) login(ctx context.Context) (bool, error) {
	logging.Debug("authenticating with credentials file", "path", g.credentialsFile)

	out, err := g.executor.Execute(ctx, g.gcloud, "--quiet", "auth", "login", "--cred-file", g.credentialsFile)
	if err != nil {
		return false, errors.AuthError("gcloud auth login failed", commandError(err, out))
	}

	logging.UserSuccess("Authenticated with %s", g.credentialsFile)
	return true, nil
}

func (g *Gate) active(ctx context.Context) (bool, error) {
	logging.Debug("checking for active gcloud credentials")

	out, err := g.executor.Execute(ctx, g.gcloud, "auth", "list", "--filter=status:ACTIVE", "--format=json")
	if err != nil {
		logging.UserError("%s", Hint)
		return false, errors.AuthError("gcloud auth list failed", commandError(err, out))
	}

	var accounts []json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(out), &accounts); err != nil {
		logging.UserError("%s", Hint)
		return false, errors.AuthError("unexpected gcloud auth list output", err)
	}

	logging.Debug("active gcloud accounts", "count", len(accounts))
	return len(accounts) > 0, nil
}

func commandError(err error, out []byte) error {
	if msg := bytes.TrimSpace(out); len(msg) > 0 {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}
