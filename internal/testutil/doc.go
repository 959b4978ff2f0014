// Package testutil provides test fixtures and an end-to-end test
// environment.
//
// # Fixtures
//
// Fixtures are embedded using go:embed:
//
//	fixtures/release_latest.json    GitHub "latest release" response
//	fixtures/release_tag_only.json  release with an empty name
//	fixtures/inputs.toml            complete inputs config file
//
// # Test Environment
//
// NewTestEnv wires an app.App to mocks: a MockFS with the runner's temp
// directory, a MockExecutor reporting an active gcloud account, a
// MockStarter, a fake clock and an httptest server that serves both the
// release index and the binary.
//
//	env := testutil.NewTestEnv(t)
//	env.SocketAppearsAfter(2, "/tmp/cloudsql", "conn1", "sock0")
//
//	result, err := env.App.Runner(env.Inputs()).Run(ctx, env.Inputs())
//
//	outputs := testutil.ParseRunnerFile(env.RunnerFile(testutil.RunnerFiles.Output))
package testutil
