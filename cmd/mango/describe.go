package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/slipstream/mango/internal/cli"
	"github.com/slipstream/mango/internal/presentation/tui"
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Print a report of the graph with evaluated outputs",
	Long: `Renders a markdown table of the nodes, their attributes and the value each
one produces, followed by the Mermaid diagram. Standard-in nodes read --input
only.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := options(cmd)
		if err != nil {
			return err
		}
		stdin, closeInput, err := opts.OpenInput(strings.NewReader(""))
		if err != nil {
			return err
		}
		defer closeInput()

		ed, err := cli.LoadFile(opts, args[0], stdin)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))

		render := tui.Plain
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if render, err = tui.NewRenderer(); err != nil {
				return err
			}
		}
		out, err := render(tui.DescribeGraph(name, ed))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
