// cmd/opsbench/list.go
package opsbench

import (
	"github.com/spf13/cobra"
)

// listCmd groups the read-only listings: the workload catalogue and the
// command tree.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Group commands for listing workloads and commands",
	Long:  `The 'list' command groups subcommands that print what opsbench knows about without measuring anything. Run 'opsbench list workloads' for the built-in kernels.`,
	Args:  cobra.NoArgs,
}

func init() {
	rootCmd.AddCommand(listCmd)
}
