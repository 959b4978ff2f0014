package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/config"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/proxy"
)

var argsList bool

var argsCmd = &cobra.Command{
	Use:   "args",
	Short: "Print the arguments run would pass to the proxy",
	Args:  cobra.NoArgs,
	RunE:  runArgs,
}

func init() {
	config.DefaultSchema().RegisterFlags(argsCmd.Flags(),
		"instance_connection_name", "address", "port", "private_ip", "socket_root")
	argsCmd.Flags().BoolVar(&argsList, "list", false, "Print one argument per line")
	rootCmd.AddCommand(argsCmd)
}

func runArgs(cmd *cobra.Command, args []string) error {
	in, err := loadInputs(cmd, "instance_connection_name")
	if err != nil {
		return err
	}

	argv := proxy.BuildArgs(proxy.Options{
		InstanceConnectionName: in.InstanceConnectionName,
		Address:                in.Address,
		Port:                   in.Port,
		PrivateIP:              in.PrivateIP,
		SocketRoot:             in.SocketRoot,
	})

	if !argsList {
		fmt.Fprintln(cmd.OutOrStdout(), shellquote.Join(argv...))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tARG")
	fmt.Fprintln(w, "-\t---")
	for i, a := range argv {
		fmt.Fprintf(w, "%d\t%s\n", i, a)
	}
	return w.Flush()
}
