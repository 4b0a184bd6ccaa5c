package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dreamtrack/dreamtrack/cmd/dreamctl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dreamctl",
		Short: "Operational tools for dreamtrack",
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.RolloverCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
