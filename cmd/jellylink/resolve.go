package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vmunix/jellylink/internal/app"
	"github.com/vmunix/jellylink/internal/config"
	"github.com/vmunix/jellylink/internal/stream"
	"github.com/vmunix/jellylink/pkg/catalogid"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <movie|series> <id>",
	Short: "Run the stream pipeline locally against the configured services",
	Long: `Resolve a catalog id without a running server: look it up on TMDB,
find it in Jellyfin and decide between a playable stream and a request.

Examples:
  jellylink resolve movie tt0133093
  jellylink resolve series tt0436992:1:1 --debug`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"movie", "series"},
	RunE:      runResolveCmd,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().String("config", "", "Path to config file (default: discovered)")
	resolveCmd.Flags().Bool("debug", false, "Log pipeline steps to stderr")
}

func parseKindArg(s string) (catalogid.Kind, error) {
	switch k := catalogid.Kind(s); k {
	case catalogid.KindMovie, catalogid.KindSeries:
		return k, nil
	}
	return "", fmt.Errorf("unknown type %q (want movie or series)", s)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return nil, err
		}
		path = found
	}
	return config.Load(path)
}

func runResolveCmd(cmd *cobra.Command, args []string) error {
	kind, err := parseKindArg(args[0])
	if err != nil {
		return err
	}
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	level := "warn"
	if debug {
		level = "debug"
	}
	logger, closeLog, err := app.NewLogger(cmd.ErrOrStderr(), level, "")
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, cfg, version, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	if err := a.Connect(ctx, 1); err != nil {
		return err
	}

	res := a.Addon.Streams(ctx, kind, args[1])
	if jsonOutput {
		printJSON(cmd.OutOrStdout(), res)
		return nil
	}
	printResolution(cmd.OutOrStdout(), res)
	return nil
}

func printResolution(w io.Writer, res stream.Result) {
	fmt.Fprintf(w, "Outcome: %s\n\n", valueOrDash(res.Outcome))
	printStreams(w, res.Streams)
}
