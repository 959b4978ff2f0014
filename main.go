package main

import (
	"os"

	"github.com/firefly-engineering/setup-cloudsql-proxy/cmd"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
