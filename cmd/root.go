package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "setup-cloudsql-proxy",
	Short: "Start the Cloud SQL Proxy in a CI job",
	Long: `setup-cloudsql-proxy prepares a Cloud SQL Proxy for the rest of a CI job.

The run command:
  - downloads the latest proxy release for this host
  - checks for (or logs in with) gcloud credentials
  - starts the proxy in the background with a Unix socket
  - waits for the socket and exports its location

Inputs come from flags, INPUT_* variables set by GitHub Actions,
or a TOML file given with --config.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose || os.Getenv("RUNNER_DEBUG") == "1", jsonOutput, os.Stderr)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "TOML file of inputs (default $SETUP_CLOUDSQL_PROXY_CONFIG)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	_          = logging.UserError // errors are printed by cobra
)
