package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slipstream/mango/internal/cli"
	"github.com/slipstream/mango/internal/presentation/diagram"
)

var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export the graph as a Mermaid diagram",
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
		fmt.Fprint(cmd.OutOrStdout(), diagram.GenerateMermaid(ed.Graph(), nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
