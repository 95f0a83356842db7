package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"forkserver-go/internal/archregs"
	"forkserver-go/internal/filter"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Print the seccomp-BPF program the preload module installs",
	Long: `filter disassembles the seccomp-BPF program the preload module builds
for the current architecture, without installing it anywhere. Useful
for confirming the inspected syscall set and instruction budget before
driving a real host.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := filter.Disassemble(archregs.Inspected)
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
}
