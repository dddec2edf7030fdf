package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/stitch/internal/dataset"
	"github.com/dusk-indust/stitch/internal/orchestrator"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the val, test and train splits of a stitched dataset",
		Long: `Generate the three splits of a stitched dataset:

  val   the first --val-images images of --train
  test  every image of --val
  train the remaining images of --train

Each split asks for images*dialogs_per_image/group_size merged dialogs and
is written to --save-root as deep_dialog_<split>.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			trainPath, _ := cmd.Flags().GetString("train")
			valPath, _ := cmd.Flags().GetString("val")
			saveRoot, _ := cmd.Flags().GetString("save-root")

			cfg := e.cfg.Orchestrator()
			if err := applyRunFlags(cmd, &cfg); err != nil {
				return err
			}
			valImages := e.cfg.ValImages
			if cmd.Flags().Changed("val-images") {
				valImages, _ = cmd.Flags().GetInt("val-images")
			}

			train, err := dataset.LoadImages(trainPath)
			if err != nil {
				return err
			}
			val, err := dataset.LoadImages(valPath)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(saveRoot, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", saveRoot, err)
			}

			ctx, stop := interruptible(cmd.Context())
			defer stop()

			splits := dataset.Splits(train, val, valImages, cfg.DialogsPerImage, cfg.GroupSize)
			results, err := dataset.Generate(ctx, splits, saveRoot, cfg, e.logger)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%-5s %s\n      %s\n", r.Split, r.Path, orchestrator.FormatSummary(r.Result))
			}
			return nil
		},
	}

	cmd.Flags().String("train", "", "train split source dialogs")
	cmd.Flags().String("val", "", "val split source dialogs")
	cmd.Flags().String("save-root", "", "directory to write the splits to")
	cmd.Flags().Int("val-images", dataset.DefaultValImages, "train images held out for validation")
	addRunFlags(cmd)
	_ = cmd.MarkFlagRequired("train")
	_ = cmd.MarkFlagRequired("val")
	_ = cmd.MarkFlagRequired("save-root")
	return cmd
}
