package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "jellylink",
	Short: "CLI client for the jellylink add-on server",
	Long: `jellylink - CLI client for the jellylink add-on server

Browse the Jellyfin catalog the way streaming clients see it, inspect
stream decisions, and follow Jellyseerr requests.

Run 'jellylinkd' to start the server daemon.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:60421", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("jellylink {{.Version}}\n")
}
