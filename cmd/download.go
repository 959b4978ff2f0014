package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/app"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/config"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the latest proxy binary and print its path",
	Args:  cobra.NoArgs,
	RunE:  runDownload,
}

func init() {
	config.DefaultSchema().RegisterFlags(downloadCmd.Flags(), "bin_path", "release_url", "download_url_template")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	in, err := loadInputs(cmd, "bin_path")
	if err != nil {
		return err
	}

	bin, err := app.Default.Provisioner(in).Provision(cmd.Context(), in.BinPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), bin.Path)
	return nil
}
