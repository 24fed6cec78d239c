package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trendpulse",
		Short: "trendpulse builds ranked snapshots of trending AI keywords",
		Long: `trendpulse collects AI news from feeds, GitHub, Hacker News, GDELT and
YouTube, extracts trending keywords with an LLM, ranks them, enriches the
top keywords with search sources and summaries, and persists immutable
snapshots to PostgreSQL.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.trendpulse.yaml)")

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewMigrateCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
