package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/jellylink/internal/stream"
)

var streamsCmd = &cobra.Command{
	Use:   "streams <movie|series> <id>",
	Short: "Show the stream decision for a title",
	Long: `Ask the server what a streaming client would be offered for a title.

Examples:
  jellylink streams movie tt0133093
  jellylink streams series tt0436992:1:1`,
	Args: cobra.ExactArgs(2),
	RunE: runStreamsCmd,
}

func init() {
	rootCmd.AddCommand(streamsCmd)
}

func runStreamsCmd(cmd *cobra.Command, args []string) error {
	streams, err := NewClient(serverURL).Streams(args[0], args[1])
	if err != nil {
		return fmt.Errorf("stream fetch failed: %w", err)
	}

	if jsonOutput {
		printJSON(cmd.OutOrStdout(), stream.Result{Streams: streams})
		return nil
	}
	printStreams(cmd.OutOrStdout(), streams)
	return nil
}

func printStreams(w io.Writer, streams []stream.Stream) {
	if len(streams) == 0 {
		fmt.Fprintln(w, "No streams: not in the library and no request possible")
		return
	}

	for _, s := range streams {
		fmt.Fprintf(w, "%s\n", s.Name)
		if s.Description != "" {
			for _, line := range strings.Split(s.Description, "\n") {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
		switch {
		case s.URL != "":
			fmt.Fprintf(w, "  play:    %s\n", s.URL)
		case s.ExternalURL != "":
			fmt.Fprintf(w, "  open:    %s\n", s.ExternalURL)
		}
	}
}
