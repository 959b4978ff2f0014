package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/app"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download, authenticate, start the proxy and wait for its socket",
	Long: `Run the full setup sequence.

On success socket_path and socket_file are set as step outputs,
CLOUDSQL_SOCKET_PATH and CLOUDSQL_SOCKET_FILE are exported, and the
socket directory is added to PATH. On failure nothing is exported.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	config.DefaultSchema().RegisterFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	in, err := loadInputs(cmd)
	if err != nil {
		return fail(err)
	}

	result, err := app.Default.Runner(in).Run(cmd.Context(), in)
	if err != nil {
		return fail(err)
	}

	logSuccess("Cloud SQL Proxy %s is ready at %s", result.Binary.Tag,
		filepath.Join(result.Socket.Dir, result.Socket.File))
	return nil
}
