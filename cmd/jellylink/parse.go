package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vmunix/jellylink/pkg/catalogid"
)

// ParseResult is the JSON form of a parsed catalog id.
type ParseResult struct {
	Input   string         `json:"input"`
	Valid   bool           `json:"valid"`
	Error   string         `json:"error,omitempty"`
	TitleID string         `json:"title_id,omitempty"`
	Kind    catalogid.Kind `json:"kind,omitempty"`
	Season  *int           `json:"season,omitempty"`
	Episode *int           `json:"episode,omitempty"`
}

var parseCmd = &cobra.Command{
	Use:   "parse <id>...",
	Short: "Parse catalog ids (local, no server needed)",
	Long: `Parse catalog ids the way the server does.

Examples:
  jellylink parse tt0133093
  jellylink parse tt0436992:1:1 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func parseID(raw string) ParseResult {
	id, err := catalogid.Parse(raw)
	if err != nil {
		return ParseResult{Input: raw, Error: err.Error()}
	}

	r := ParseResult{Input: raw, Valid: true, TitleID: id.TitleID, Kind: id.Kind()}
	if n, ok := id.SeasonNumber(); ok {
		r.Season = &n
	}
	if n, ok := id.EpisodeNumber(); ok {
		r.Episode = &n
	}
	return r
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	results := make([]ParseResult, 0, len(args))
	for _, raw := range args {
		results = append(results, parseID(raw))
	}

	if jsonOutput {
		if len(results) == 1 {
			printJSON(cmd.OutOrStdout(), results[0])
		} else {
			printJSON(cmd.OutOrStdout(), results)
		}
		return nil
	}

	for _, r := range results {
		printParseResult(cmd.OutOrStdout(), r)
	}
	return nil
}

func printParseResult(w io.Writer, r ParseResult) {
	fmt.Fprintf(w, "%s\n", r.Input)
	if !r.Valid {
		fmt.Fprintf(w, "  invalid: %s\n", r.Error)
		return
	}
	fmt.Fprintf(w, "  Title:   %s\n", r.TitleID)
	fmt.Fprintf(w, "  Kind:    %s\n", r.Kind)
	if r.Kind == catalogid.KindSeries {
		fmt.Fprintf(w, "  Season:  %s\n", ordinalOrInvalid(r.Season))
		fmt.Fprintf(w, "  Episode: %s\n", ordinalOrInvalid(r.Episode))
	}
}

func ordinalOrInvalid(n *int) string {
	if n == nil {
		return "(not a number, never matches)"
	}
	return fmt.Sprint(*n)
}
