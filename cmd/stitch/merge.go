package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/stitch/internal/dataset"
	"github.com/dusk-indust/stitch/internal/orchestrator"
	"github.com/dusk-indust/stitch/internal/stitch"
)

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Stitch dialogs from one source file into a merged dataset",
		Long: `Sample compatible groups of dialogs from --input, stitch each group and
write --count merged dialogs (fewer if some samples repeat) to --output.

Sampling runs on --workers parallel workers, each with its own seed drawn
from --seed. The seed is printed so a run can be repeated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			input, _ := cmd.Flags().GetString("input")
			output, _ := cmd.Flags().GetString("output")
			showProgress, _ := cmd.Flags().GetBool("progress")

			cfg := e.cfg.Orchestrator()
			cfg.Count, _ = cmd.Flags().GetInt("count")
			if err := applyRunFlags(cmd, &cfg); err != nil {
				return err
			}

			images, err := dataset.LoadImages(input)
			if err != nil {
				return err
			}

			ctx, stop := interruptible(cmd.Context())
			defer stop()

			opts := []orchestrator.Option{orchestrator.WithLogger(e.logger)}
			var wg sync.WaitGroup
			if showProgress {
				reporter := orchestrator.NewProgressReporter()
				wg.Add(1)
				go func() {
					defer wg.Done()
					for ev := range reporter.Subscribe() {
						fmt.Fprintln(cmd.ErrOrStderr(), orchestrator.FormatProgress(ev))
					}
				}()
				defer func() {
					reporter.Close()
					wg.Wait()
				}()
				opts = append(opts, orchestrator.WithProgress(reporter.Emit))
			}

			res, err := orchestrator.Run(ctx, images, cfg, opts...)
			if err != nil {
				return fmt.Errorf("merge: %w", err)
			}
			if err := dataset.SaveMerged(output, res.Dialogs); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), orchestrator.FormatSummary(res))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().String("input", "", "source dialogs (JSON array of images)")
	cmd.Flags().String("output", "", "file to write merged dialogs to")
	cmd.Flags().Int("count", 0, "number of merged dialogs to sample")
	cmd.Flags().Bool("progress", false, "print per-worker progress to stderr")
	addRunFlags(cmd)
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	_ = cmd.MarkFlagRequired("count")
	return cmd
}

// addRunFlags registers the sampling flags shared by merge and generate.
// They override the config file only when set.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int("workers", 0, "parallel sampling workers")
	cmd.Flags().Int("group-size", 0, "dialogs per merge: 2 or 3")
	cmd.Flags().String("pattern", "", "two-dialog pattern: ABA or ABAB")
	cmd.Flags().Uint64("seed", 0, "run seed (0 draws a random seed)")
	cmd.Flags().Bool("strict", false, "abort on the first corrupt dialog instead of skipping it")
}

func applyRunFlags(cmd *cobra.Command, cfg *orchestrator.Config) error {
	f := cmd.Flags()
	if f.Changed("workers") {
		cfg.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("group-size") {
		cfg.GroupSize, _ = f.GetInt("group-size")
	}
	if f.Changed("pattern") {
		s, _ := f.GetString("pattern")
		p, err := stitch.ParsePattern(s)
		if err != nil {
			return err
		}
		cfg.Pattern = p
	}
	if f.Changed("seed") {
		cfg.Seed, _ = f.GetUint64("seed")
	}
	if f.Changed("strict") {
		cfg.Strict, _ = f.GetBool("strict")
	}
	return cfg.Validate()
}

// interruptible returns a context cancelled on Ctrl-C.
func interruptible(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}
