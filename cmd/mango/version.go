package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slipstream/mango"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mango",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mango version %s\n", mango.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
