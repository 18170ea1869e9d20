package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/slipstream/mango/internal/cli"
	"github.com/slipstream/mango/internal/presentation/tui"
)

var editCmd = &cobra.Command{
	Use:   "edit [name]",
	Short: "Edit a stored graph with ex commands",
	Long: `Opens the stored graph (default "main") and reads ex commands from stdin:

  n <type> [label]   new node          a <type>   insert after selection
  i <type>           insert before      s <type>   substitute selection
  c <from> <to> [n]  connect            dc <f> <t> disconnect
  d [id]             delete             set <id> <field> <value>
  sel <id>  p [id]  ls  run  u  r  w [name]  e <name>  q`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "main"
		if len(args) > 0 {
			name = args[0]
		}
		interactive := term.IsTerminal(int(os.Stdin.Fd()))
		if interactive {
			tui.PrintBanner(cmd.OutOrStdout())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		opts, err := options(cmd)
		if err != nil {
			return err
		}
		return cli.Edit(ctx, opts, name, cmd.InOrStdin(), interactive)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
