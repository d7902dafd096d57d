package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFile string

// rootCmd is the operator CLI for the earnings service.
var rootCmd = &cobra.Command{
	Use:   "earningsctl",
	Short: "Operate the guide earnings service",
	Long: `earningsctl runs one-shot operations against the same backends the
earnings service uses.

Available commands:
  stats   - Compute a guide's payment statistics
  storage - Inspect avatar storage
  token   - Issue a bearer token for local testing`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")
	rootCmd.AddCommand(statsCmd, storageCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
