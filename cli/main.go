package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/divhit/cobs-bread-research/cli/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "research-cli",
		Short: "Command line client for the research service",
	}

	cmd.RegisterCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
