package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slipstream/mango/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "mango",
	Short: "Mango is a node graph editor for text pipelines",
	Long: `Mango builds data pipelines out of small nodes (read stdin, split lines,
filter, parse JSON, sum...) wired into a graph stored as YAML.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("dir", ".mango/graphs", "Directory holding stored graphs")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().Bool("lenient", false, "Skip dangling connections when loading")
	rootCmd.PersistentFlags().String("redis", "", "Redis address; stores graphs in redis instead of --dir")
	rootCmd.PersistentFlags().String("input", "", "File read by standard-in nodes instead of stdin")
	rootCmd.PersistentFlags().String("encryption-key", "", "Hex AES-256 key encrypting stored graphs (env MANGO_ENCRYPTION_KEY)")
}

// options resolves the persistent flags.
func options(cmd *cobra.Command) (cli.Options, error) {
	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")
	debug, _ := flags.GetBool("debug")
	lenient, _ := flags.GetBool("lenient")
	redisAddr, _ := flags.GetString("redis")
	input, _ := flags.GetString("input")
	keyHex, _ := flags.GetString("encryption-key")
	if keyHex == "" {
		keyHex = os.Getenv("MANGO_ENCRYPTION_KEY")
	}
	var key []byte
	if keyHex != "" {
		var err error
		if key, err = hex.DecodeString(keyHex); err != nil {
			return cli.Options{}, fmt.Errorf("invalid --encryption-key: %w", err)
		}
	}
	return cli.Options{
		Dir:           dir,
		RedisAddr:     redisAddr,
		Input:         input,
		Debug:         debug,
		Lenient:       lenient,
		EncryptionKey: key,
		Stdout:        cmd.OutOrStdout(),
		Stderr:        cmd.ErrOrStderr(),
	}, nil
}
