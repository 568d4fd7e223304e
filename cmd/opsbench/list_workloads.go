// cmd/opsbench/list_workloads.go
package opsbench

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mwiater/opsbench/internal/workloads"
)

// listWorkloadsCmd implements 'list workloads', which prints the built-in
// kernel catalogue with default sizes.
var listWorkloadsCmd = &cobra.Command{
	Use:   "workloads",
	Short: "List the built-in workload kernels",
	Long:  `The 'workloads' subcommand lists every built-in kernel that 'run --workload' and suite files can name, with its default size and a short description.`,
	Run: func(cmd *cobra.Command, args []string) {
		listWorkloads(cmd.OutOrStdout())
	},
}

func init() {
	listCmd.AddCommand(listWorkloadsCmd)
}

func listWorkloads(w io.Writer) {
	kernelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	sizeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	kernels := workloads.All()
	nameWidth, sizeWidth := 0, 0
	for _, k := range kernels {
		nameWidth = max(nameWidth, len(k.Name))
		sizeWidth = max(sizeWidth, len(strconv.Itoa(k.DefaultSize)))
	}

	fmt.Fprintln(w, "Workloads:")
	for _, k := range kernels {
		name := kernelStyle.Render(fmt.Sprintf("%-*s", nameWidth, k.Name))
		size := sizeStyle.Render(fmt.Sprintf("%*d", sizeWidth, k.DefaultSize))
		fmt.Fprintf(w, "  %s  %s  %s\n", name, size, k.Description)
	}
}
