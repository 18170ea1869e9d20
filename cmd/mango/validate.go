package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slipstream/mango/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check the graph for consistency",
	Long:  `Loads the graph and reports dangling connections and cycles.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := options(cmd)
		if err != nil {
			return err
		}
		ed, err := cli.LoadFile(opts, args[0], strings.NewReader(""))
		if err != nil {
			return err
		}
		if err := ed.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Graph is valid!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
