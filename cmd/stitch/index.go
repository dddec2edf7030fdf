package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/stitch/internal/dataset"
	"github.com/dusk-indust/stitch/internal/graph"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Write the final scene graph of every source dialog into the scene index",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			input, _ := cmd.Flags().GetString("input")
			dbPath, _ := cmd.Flags().GetString("db")

			images, err := dataset.LoadImages(input)
			if err != nil {
				return err
			}
			store, err := graph.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer store.Close()

			ctx, stop := interruptible(cmd.Context())
			defer stop()

			rep, err := graph.IndexImages(ctx, store, images, e.cfg.SegmentOptions(), e.logger)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			stats, err := store.Stats(ctx)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "backend:   %s %s\n", graph.Backend, dbPath)
			fmt.Fprintf(out, "indexed:   %d (skipped %d, already indexed %d)\n", rep.Indexed, rep.Skipped, rep.Existing)
			fmt.Fprintf(out, "dialogs:   %d\n", stats.DialogCount)
			fmt.Fprintf(out, "objects:   %d\n", stats.ObjectCount)
			fmt.Fprintf(out, "relations: %d\n", stats.RelationCount)
			return nil
		},
	}

	cmd.Flags().String("input", "", "source dialogs (JSON array of images)")
	cmd.Flags().String("db", ".stitch/index", "KuzuDB directory (ignored without cgo)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
