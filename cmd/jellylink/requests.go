package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sourcegraph/conc/iter"
	"github.com/spf13/cobra"

	"github.com/vmunix/jellylink/internal/progress"
	"github.com/vmunix/jellylink/pkg/jellyseerr"
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List Jellyseerr requests with download progress",
	Long: `List current Jellyseerr requests straight from Jellyseerr, with the
same progress figures streaming clients see.

Examples:
  jellylink requests
  jellylink requests --config /etc/jellylink/config.toml --json`,
	Args: cobra.NoArgs,
	RunE: runRequestsCmd,
}

func init() {
	rootCmd.AddCommand(requestsCmd)
	requestsCmd.Flags().String("config", "", "Path to config file (default: discovered)")
}

// RequestLister reads requests from Jellyseerr.
type RequestLister interface {
	ListRequests(ctx context.Context) ([]jellyseerr.Request, error)
	GetRequest(ctx context.Context, id int64) (*jellyseerr.RequestDetail, error)
}

// RequestRow is one line of the requests table.
type RequestRow struct {
	ID         int64                `json:"id"`
	TMDBID     int64                `json:"tmdb_id"`
	MediaType  jellyseerr.MediaType `json:"media_type"`
	Status     string               `json:"status"`
	Percent    int                  `json:"percent"`
	Downloaded string               `json:"downloaded,omitempty"`
	TimeLeft   string               `json:"time_left,omitempty"`
	ETA        string               `json:"eta,omitempty"`
}

func runRequestsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Jellyseerr.Enabled {
		return errors.New("jellyseerr is disabled in the config")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := collectRequests(ctx, jellyseerr.New(cfg.Jellyseerr.URL, cfg.Jellyseerr.APIKey))
	if err != nil {
		return fmt.Errorf("list requests: %w", err)
	}

	if jsonOutput {
		printJSON(cmd.OutOrStdout(), rows)
		return nil
	}
	printRequests(cmd.OutOrStdout(), rows)
	return nil
}

// collectRequests fetches the detail of every request, a few at a time.
// A request whose detail cannot be read keeps its row with status "unknown".
func collectRequests(ctx context.Context, l RequestLister) ([]RequestRow, error) {
	list, err := l.ListRequests(ctx)
	if err != nil {
		return nil, err
	}

	mapper := iter.Mapper[jellyseerr.Request, RequestRow]{MaxGoroutines: 4}
	return mapper.Map(list, func(r *jellyseerr.Request) RequestRow {
		row := RequestRow{ID: r.ID, TMDBID: r.Media.TMDBID, MediaType: r.Media.MediaType, Status: "unknown"}

		detail, err := l.GetRequest(ctx, r.ID)
		if err != nil || detail == nil {
			return row
		}
		rec := progress.Normalize(*detail)
		if rec.Status != "" {
			row.Status = rec.Status
		}
		row.Percent = rec.Percent()
		row.Downloaded = rec.Downloaded()
		row.TimeLeft = rec.TimeLeft
		row.ETA = rec.ETA
		return row
	}), nil
}

func printRequests(w io.Writer, rows []RequestRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No requests")
		return
	}

	t := newTable(w, "ID", "TMDB", "TYPE", "STATUS", "PROGRESS", "DOWNLOADED", "TIME LEFT")
	for _, r := range rows {
		t.AppendRow([]any{
			r.ID, r.TMDBID, r.MediaType, r.Status,
			fmt.Sprintf("%s %3d%%", progressBar(r.Percent, 10), r.Percent),
			valueOrDash(r.Downloaded), valueOrDash(r.TimeLeft),
		})
	}
	t.Render()
}
