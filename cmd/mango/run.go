package main

import (
	"github.com/spf13/cobra"

	"github.com/slipstream/mango/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Evaluate a graph file",
	Long: `Loads the graph and pulls every terminal node (a node without outgoing
connections) in ascending id order. Results of terminals other than
standard-out are printed; an Error result makes the command fail.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := options(cmd)
		if err != nil {
			return err
		}
		return cli.RunFile(opts, args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
