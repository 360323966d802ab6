package main

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orbital-group/meteor-cli/internal/catalog"
	"github.com/orbital-group/meteor-cli/internal/dataset"
	"github.com/orbital-group/meteor-cli/internal/reconcile"
	"github.com/orbital-group/meteor-cli/internal/synclog"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Backfill missing Bulletin ids from a paginated scrape",
	Long: `Crawl the Meteoritical Bulletin name index newest-first, build a
name-to-id lookup for the session, and fill unresolved ids on the local
dataset. The crawl stops on an empty page, when the oldest year on a page
drops below the year floor, or at the page ceiling.

Progress is checkpointed to the output file every few pages, so an
interrupted run keeps everything already written. Re-running is safe:
already-resolved ids are never touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "reconcile"))

		opts := reconcile.Options{
			InputPath:       flagOr(cmd, "input", cfg.Dataset.Input),
			OutputPath:      flagOr(cmd, "output", cfg.Dataset.Output),
			StartPage:       intFlagOr(cmd, "start-page", cfg.Crawl.StartPage),
			MaxPages:        intFlagOr(cmd, "max-pages", cfg.Crawl.MaxPages),
			YearFloor:       intFlagOr(cmd, "year-floor", cfg.Crawl.YearFloor),
			CheckpointEvery: intFlagOr(cmd, "checkpoint-every", cfg.Crawl.CheckpointEvery),
		}

		client := catalog.NewClient(catalog.ClientOptions{
			BaseURL:   cfg.Catalog.BaseURL,
			UserAgent: cfg.Catalog.UserAgent,
			PageSize:  cfg.Catalog.PageSize,
			Timeout:   cfg.Catalog.Timeout(),
			Delay:     cfg.Catalog.Delay(),
		})

		slog, err := synclog.Open(cfg.Dataset.SessionLog)
		if err != nil {
			log.Warn("session log unavailable, continuing without it", zap.Error(err))
			slog = nil
		} else {
			defer slog.Close() //nolint:errcheck
		}

		sessionID := ""
		if slog != nil {
			sessionID, err = slog.Start(ctx, "reconcile")
			if err != nil {
				log.Warn("session log start failed", zap.Error(err))
			}
		}
		opts.Session = sessionID

		sum, err := reconcile.NewPipeline(client, opts).Run(ctx)
		if err != nil {
			if slog != nil && sessionID != "" {
				_ = slog.Fail(ctx, sessionID, err.Error())
			}
			if errors.Is(err, dataset.ErrMissing) {
				fmt.Println("Input dataset not found. Run the cleaning step first.")
				return nil
			}
			return eris.Wrap(err, "reconcile")
		}

		if slog != nil && sessionID != "" {
			if cerr := slog.Complete(ctx, sessionID, int64(sum.PagesScanned), int64(sum.Filled)); cerr != nil {
				log.Warn("session log complete failed", zap.Error(cerr))
			}
		}

		fmt.Printf("Scanned %d pages (%d failed), indexed %d names.\n", sum.PagesScanned, sum.PagesFailed, sum.Indexed)
		fmt.Printf("Filled %d ids; %d still missing. Stop: %s.\n", sum.Filled, sum.Remaining, sum.Stop)
		if sum.NoData {
			fmt.Println("Warning: no page yielded any data this session.")
		}
		return nil
	},
}

func init() {
	reconcileCmd.Flags().String("input", "", "input dataset CSV (default from config)")
	reconcileCmd.Flags().String("output", "", "output dataset CSV (default from config)")
	reconcileCmd.Flags().Int("start-page", -1, "zero-based first page to scan")
	reconcileCmd.Flags().Int("max-pages", -1, "maximum pages to scan")
	reconcileCmd.Flags().Int("year-floor", -1, "stop once page years drop below this (0 disables)")
	reconcileCmd.Flags().Int("checkpoint-every", -1, "apply and save every N pages (0 disables)")
	rootCmd.AddCommand(reconcileCmd)
}

// flagOr returns the flag value when the user set it, else the fallback.
func flagOr(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

func intFlagOr(cmd *cobra.Command, name string, fallback int) int {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return fallback
}
