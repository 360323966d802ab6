package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/orbital-group/meteor-cli/internal/dataset"
	"github.com/orbital-group/meteor-cli/internal/synclog"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report unresolved ids and past crawl sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		input := flagOr(cmd, "input", cfg.Dataset.Output)
		records, err := dataset.Load(ctx, input)
		if err != nil {
			if errors.Is(err, dataset.ErrMissing) {
				fmt.Printf("Dataset %s not found.\n", input)
				return nil
			}
			return eris.Wrap(err, "status")
		}

		missing := 0
		byYear := map[string]int{}
		var sample []string
		for i := range records {
			if records[i].ID.Resolved() {
				continue
			}
			missing++
			byYear[records[i].Year]++
			if len(sample) < 10 {
				sample = append(sample, records[i].Name)
			}
		}

		fmt.Printf("%d of %d records missing ids.\n", missing, len(records))
		if missing > 0 {
			fmt.Println("Sample:")
			for _, name := range sample {
				fmt.Printf("  %s\n", name)
			}

			years := make([]string, 0, len(byYear))
			for y := range byYear {
				years = append(years, y)
			}
			sort.Strings(years)
			fmt.Println("Missing by year:")
			for _, y := range years {
				label := y
				if label == "" {
					label = "(unknown)"
				}
				fmt.Printf("  %s: %d\n", label, byYear[y])
			}
		}

		showSessions, _ := cmd.Flags().GetBool("sessions")
		if !showSessions {
			return nil
		}

		slog, err := synclog.Open(cfg.Dataset.SessionLog)
		if err != nil {
			return eris.Wrap(err, "status: open session log")
		}
		defer slog.Close() //nolint:errcheck

		sessions, err := slog.List(ctx)
		if err != nil {
			return eris.Wrap(err, "status: list sessions")
		}

		fmt.Printf("\n%d recorded sessions:\n", len(sessions))
		for _, s := range sessions {
			fmt.Printf("  %s  %-9s %-8s pages=%-4d resolved=%-5d %s\n",
				s.StartedAt.Format("2006-01-02 15:04"), s.Kind, s.Status, s.PagesScanned, s.IDsResolved, s.Error)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().String("input", "", "dataset CSV to inspect (default: configured output)")
	statusCmd.Flags().Bool("sessions", false, "also list recorded crawl sessions")
	rootCmd.AddCommand(statusCmd)
}
