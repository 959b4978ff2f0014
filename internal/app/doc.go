// Package app provides the application context for setup-cloudsql-proxy.
//
// This package manages application-wide dependencies using the functional
// options pattern, enabling easy testing through dependency injection.
//
// # App Context
//
// The App struct holds the host primitives every component needs:
//
//	type App struct {
//	    FS         system.FileSystem      // downloads, socket root, runner files
//	    Executor   system.CommandExecutor // gcloud
//	    Starter    system.ProcessStarter  // detached proxy launch
//	    Clock      clock.Clock            // socket polling
//	    HTTPClient *http.Client           // release index and binary storage
//	}
//
// # Creating an App
//
//	// Production usage
//	a := app.New()
//
//	// Testing with custom dependencies
//	a := app.New(
//	    app.WithFS(system.NewMockFS()),
//	    app.WithStarter(system.NewMockStarter()),
//	    app.WithClock(clock.Fake(start)),
//	)
//
// # Building Components
//
// App constructs each component from the resolved config.Inputs:
//
//	runner := a.Runner(in)
//	result, err := runner.Run(ctx, in)
package app
