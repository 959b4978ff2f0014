package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/app"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/config"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/platform"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/release"
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Show the latest proxy release and its download URL for this host",
	Args:  cobra.NoArgs,
	RunE:  runRelease,
}

func init() {
	config.DefaultSchema().RegisterFlags(releaseCmd.Flags(), "release_url", "download_url_template")
	rootCmd.AddCommand(releaseCmd)
}

func runRelease(cmd *cobra.Command, args []string) error {
	in, err := loadInputs(cmd, "release_url")
	if err != nil {
		return err
	}

	tag, err := app.Default.Resolver(in).Latest(cmd.Context())
	if err != nil {
		return err
	}

	host := platform.Detect()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TAG\t%s\n", tag)
	fmt.Fprintf(w, "PLATFORM\t%s\n", host)
	fmt.Fprintf(w, "URL\t%s\n", release.DownloadURL(in.DownloadURLTemplate, tag, host))
	return w.Flush()
}
