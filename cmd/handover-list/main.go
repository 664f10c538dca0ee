package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "handover-list",
		Short:        "Generate ward handover lists for medical teams",
		SilenceUsage: true,
	}

	root.AddCommand(generateCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(snapshotCmd())
	root.AddCommand(teamsCmd())
	root.AddCommand(wardsCmd())
	return root
}
