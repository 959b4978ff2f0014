package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/app"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/config"
)

// loadInputs resolves inputs for cmd. With no names, every input the
// schema marks required must be set.
func loadInputs(cmd *cobra.Command, required ...string) (config.Inputs, error) {
	loader := app.Default.Loader()
	loader.Flags = cmd.Flags()
	loader.ConfigFile = configFile

	if len(required) == 0 {
		return loader.Load()
	}
	return loader.LoadRequiring(required...)
}

// fail reports err as a runner error annotation, which marks the step
// failed, and returns it.
func fail(err error) error {
	app.Default.Actions().Error(err.Error())
	return err
}
