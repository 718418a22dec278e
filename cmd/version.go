package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saltyorg/nix-options-doc/internal/runtime"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version, git commit, and build time of nix-options-doc.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), runtime.VersionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
