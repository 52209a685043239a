package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the server and show its manifest",
	Args:  cobra.NoArgs,
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	client := NewClient(serverURL)
	out := cmd.OutOrStdout()

	if err := client.Health(); err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}
	m, err := client.Manifest()
	if err != nil {
		return fmt.Errorf("manifest fetch failed: %w", err)
	}

	if jsonOutput {
		printJSON(out, m)
		return nil
	}

	fmt.Fprintf(out, "Server:    %s (healthy)\n", serverURL)
	fmt.Fprintf(out, "Add-on:    %s %s (%s)\n", m.Name, m.Version, m.ID)
	fmt.Fprintf(out, "Resources: %s\n", strings.Join(m.Resources, ", "))
	catalogs := make([]string, 0, len(m.Catalogs))
	for _, c := range m.Catalogs {
		catalogs = append(catalogs, c.Type+"/"+c.ID)
	}
	fmt.Fprintf(out, "Catalogs:  %s\n", strings.Join(catalogs, ", "))
	return nil
}
