package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/orbital-group/meteor-cli/internal/dataset"
	"github.com/orbital-group/meteor-cli/internal/merge"
	"github.com/orbital-group/meteor-cli/internal/model"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge an incoming snapshot into the base dataset",
	Long: `Combine two dataset CSVs into one, keeping exactly one record per
meteorite name. A record carrying coordinates survives over one without;
remaining ties resolve deterministically, so the result is independent of
which file a duplicate came from.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		basePath, _ := cmd.Flags().GetString("base")
		incomingPath, _ := cmd.Flags().GetString("incoming")
		outputPath, _ := cmd.Flags().GetString("output")

		var base, incoming []model.CatalogRecord
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			base, err = dataset.Load(gctx, basePath)
			return err
		})
		g.Go(func() error {
			var err error
			incoming, err = dataset.Load(gctx, incomingPath)
			return err
		})
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "merge: load snapshots")
		}

		res := merge.Merge(base, incoming)
		if err := dataset.Save(outputPath, res.Records); err != nil {
			return eris.Wrap(err, "merge: save")
		}

		fmt.Printf("Merged %d + %d records into %d (%d duplicates collapsed).\n",
			res.Base, res.Incoming, len(res.Records), res.Duplicates)
		fmt.Printf("Saved to %s\n", outputPath)
		return nil
	},
}

func init() {
	mergeCmd.Flags().String("base", "", "base dataset CSV")
	mergeCmd.Flags().String("incoming", "", "incoming snapshot CSV")
	mergeCmd.Flags().String("output", "", "merged output CSV")
	_ = mergeCmd.MarkFlagRequired("base")
	_ = mergeCmd.MarkFlagRequired("incoming")
	_ = mergeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(mergeCmd)
}
