package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/jellylink/internal/addon"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog <movie|series>",
	Short: "List the library catalog",
	Long: `List the catalog the server publishes to streaming clients.

Examples:
  jellylink catalog movie
  jellylink catalog series --search "doctor who"
  jellylink catalog movie --skip 20`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"movie", "series"},
	RunE:      runCatalogCmd,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().StringP("search", "q", "", "Search term")
	catalogCmd.Flags().Int("skip", 0, "Number of items to skip")
}

func catalogIDFor(kind string) (string, error) {
	switch kind {
	case "movie":
		return addon.CatalogMovies, nil
	case "series":
		return addon.CatalogSeries, nil
	}
	return "", fmt.Errorf("unknown type %q (want movie or series)", kind)
}

func runCatalogCmd(cmd *cobra.Command, args []string) error {
	search, _ := cmd.Flags().GetString("search")
	skip, _ := cmd.Flags().GetInt("skip")

	catalogID, err := catalogIDFor(args[0])
	if err != nil {
		return err
	}

	metas, err := NewClient(serverURL).Catalog(args[0], catalogID, search, skip)
	if err != nil {
		return fmt.Errorf("catalog fetch failed: %w", err)
	}

	if jsonOutput {
		printJSON(cmd.OutOrStdout(), metas)
		return nil
	}
	printCatalog(cmd.OutOrStdout(), metas)
	return nil
}

func printCatalog(w io.Writer, metas []addon.MetaPreview) {
	if len(metas) == 0 {
		fmt.Fprintln(w, "No items")
		return
	}

	t := newTable(w, "ID", "NAME", "YEAR", "GENRES")
	for _, m := range metas {
		t.AppendRow([]any{m.ID, truncate(m.Name, 40), valueOrDash(m.ReleaseInfo), truncate(strings.Join(m.Genres, ", "), 30)})
	}
	t.AppendFooter([]any{"", "", "", strconv.Itoa(len(metas)) + " items"})
	t.Render()
}
