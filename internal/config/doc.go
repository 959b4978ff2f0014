// Package config resolves the action inputs for a run.
//
// # Schema
//
// The inputs are declared in an embedded action.yml, the same metadata
// file a GitHub Action ships. Each input has a description, a required
// flag and an optional default.
//
// # Sources
//
// Each input is resolved from the first source that has a value:
//
//   - a command-line flag that was set explicitly (--port, --bin-path, ...)
//   - the INPUT_<NAME> variable the Actions runner exports
//   - a TOML file named by --config or SETUP_CLOUDSQL_PROXY_CONFIG
//   - the schema default
//
// Values are trimmed, and a blank value counts as absent.
//
// # Loading
//
//	loader := &config.Loader{Flags: cmd.Flags(), Getenv: os.Getenv}
//	in, err := loader.Load()
//	if err != nil {
//	    return err
//	}
//
// The resulting Inputs is the only place environment values enter the
// program; it is passed by value to the components that need it.
package config
