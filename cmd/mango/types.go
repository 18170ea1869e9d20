package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slipstream/mango/pkg/registry"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the node types",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range registry.CatalogTypes() {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
