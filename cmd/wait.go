package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/app"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/socket"
)

var (
	waitTimeout  time.Duration
	waitInterval time.Duration
)

var waitCmd = &cobra.Command{
	Use:   "wait <dir>",
	Short: "Wait for a file to appear in a directory and print its name",
	Args:  cobra.ExactArgs(1),
	RunE:  runWait,
}

func init() {
	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", socket.DefaultFileTimeout, "How long to wait")
	waitCmd.Flags().DurationVar(&waitInterval, "interval", socket.DefaultInterval, "Pause between checks")
	rootCmd.AddCommand(waitCmd)
}

func runWait(cmd *cobra.Command, args []string) error {
	d := app.Default.Detector(waitTimeout)
	d.Interval = waitInterval

	logInfo("Waiting for a file in %s", args[0])
	name, err := d.WaitFile(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), name)
	return nil
}
