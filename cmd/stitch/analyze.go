package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/stitch/internal/dataset"
	"github.com/dusk-indust/stitch/internal/dependence"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare dependency distances before and after stitching",
		Long: `For every stitched turn that depends on an earlier turn, measure how many
turns back the dependency lies in its source dialog and in the stitched
dialog, and report the means and maxima.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			sourcePath, _ := cmd.Flags().GetString("source")
			stitchedPath, _ := cmd.Flags().GetString("stitched")
			jsonOut, _ := cmd.Flags().GetBool("json")

			images, err := dataset.LoadImages(sourcePath)
			if err != nil {
				return err
			}
			sources, err := dataset.Dialogs(images)
			if err != nil {
				return err
			}
			merged, err := dataset.LoadMerged(stitchedPath)
			if err != nil {
				return err
			}

			report, err := dependence.Analyze(sources, merged)
			if err != nil {
				return err
			}
			e.logger.Debug().Int("dialogs", report.Dialogs).Int("dependent", report.Count).Msg("analysis done")

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			fmt.Fprintf(out, "dialogs:         %d\n", report.Dialogs)
			fmt.Fprintf(out, "dependent turns: %d\n", report.Count)
			fmt.Fprintf(out, "source:          mean %.2f, max %d\n", report.SourceMean, report.SourceMax)
			fmt.Fprintf(out, "stitched:        mean %.2f, max %d\n", report.StitchedMean, report.StitchedMax)
			return nil
		},
	}

	cmd.Flags().String("source", "", "source dialogs the stitched file was built from")
	cmd.Flags().String("stitched", "", "merged dialogs to analyze")
	cmd.Flags().Bool("json", false, "print the report as JSON")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("stitched")
	return cmd
}
