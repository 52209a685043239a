package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

var requestCmd = &cobra.Command{
	Use:   "request <tmdb-id>",
	Short: "Show or create a Jellyseerr request",
	Long: `Show download progress of the Jellyseerr request for a TMDB id,
or create one with --create.

Examples:
  jellylink request 603
  jellylink request 1399 --type tv
  jellylink request 1399 --type tv --season 2 --create`,
	Args: cobra.ExactArgs(1),
	RunE: runRequestCmd,
}

func init() {
	rootCmd.AddCommand(requestCmd)
	requestCmd.Flags().StringP("type", "t", "", "Media type (movie or tv)")
	requestCmd.Flags().Int("season", 0, "Season to request (tv only)")
	requestCmd.Flags().Bool("create", false, "Create the request if it does not exist")
}

func runRequestCmd(cmd *cobra.Command, args []string) error {
	mediaType, _ := cmd.Flags().GetString("type")
	season, _ := cmd.Flags().GetInt("season")
	create, _ := cmd.Flags().GetBool("create")
	out := cmd.OutOrStdout()

	tmdbID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || tmdbID <= 0 {
		return fmt.Errorf("invalid TMDB id: %s", args[0])
	}

	client := NewClient(serverURL)

	if create {
		if mediaType == "" {
			mediaType = "movie"
		}
		loc, err := client.CreateRequest(tmdbID, mediaType, season)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		if jsonOutput {
			printJSON(out, map[string]string{"location": loc})
			return nil
		}
		fmt.Fprintf(out, "Requested. Progress: %s\n", loc)
		return nil
	}

	detail, err := client.RequestDetail(tmdbID, mediaType)
	if err != nil {
		return fmt.Errorf("request lookup failed: %w", err)
	}
	if jsonOutput {
		printJSON(out, detail)
		return nil
	}
	printRequestDetail(out, detail)
	return nil
}

func printRequestDetail(w io.Writer, d *RequestDetail) {
	title := d.Title
	if title == "" {
		title = fmt.Sprintf("TMDB %d", d.TMDBID)
	}
	if d.ReleaseYear > 0 {
		title = fmt.Sprintf("%s (%d)", title, d.ReleaseYear)
	}

	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintf(w, "  Request:   #%d (%s)\n", d.RequestID, d.MediaType)
	fmt.Fprintf(w, "  Status:    %s\n", valueOrDash(d.Status))
	fmt.Fprintf(w, "  Progress:  %s %d%%\n", progressBar(d.Percent, 20), d.Percent)
	if d.Size > 0 {
		fmt.Fprintf(w, "  Size:      %s (%s left)\n", formatSize(d.Size), formatSize(d.SizeLeft))
	}
	if d.TimeLeft != "" {
		fmt.Fprintf(w, "  Time left: %s\n", d.TimeLeft)
	}
	if d.ETA != "" {
		fmt.Fprintf(w, "  ETA:       %s\n", d.ETA)
	}
}
