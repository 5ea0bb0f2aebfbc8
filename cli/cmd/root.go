package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

// RegisterCommands adds all available commands to the root command
func RegisterCommands(rootCmd *cobra.Command) {
	defaultServer := os.Getenv("RESEARCH_SERVER_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", defaultServer, "Base URL of the research server")

	rootCmd.AddCommand(NewStartCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewDownloadCommand())
}
