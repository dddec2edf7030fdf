package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/stitch/internal/dataset"
	"github.com/dusk-indust/stitch/internal/dialog"
	"github.com/dusk-indust/stitch/internal/export"
	"github.com/dusk-indust/stitch/internal/graph"
	"github.com/dusk-indust/stitch/internal/segment"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render merged dialogs or a single source dialog",
		Long: `With --merged, render stitched dialogs as transcripts or Mermaid diagrams.
--index selects one dialog; by default all are shown.

With --input and --dialog IMAGE:DIALOG, render one source dialog with its
recall points (text), its final scene (mermaid) or its indexed scene (json).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			mergedPath, _ := cmd.Flags().GetString("merged")
			input, _ := cmd.Flags().GetString("input")
			key, _ := cmd.Flags().GetString("dialog")
			format, _ := cmd.Flags().GetString("format")
			out := cmd.OutOrStdout()

			switch {
			case mergedPath != "":
				index, _ := cmd.Flags().GetInt("index")
				return showMerged(out, mergedPath, index, format)
			case input != "" && key != "":
				history, _ := cmd.Flags().GetBool("history")
				return showSource(cmd, out, input, key, format, history, e.cfg.SegmentOptions())
			default:
				return fmt.Errorf("show needs --merged, or --input with --dialog")
			}
		},
	}

	cmd.Flags().String("merged", "", "merged dialogs file")
	cmd.Flags().Int("index", -1, "position of the merged dialog to show (-1 shows all)")
	cmd.Flags().String("input", "", "source dialogs file")
	cmd.Flags().String("dialog", "", "source dialog as IMAGE_INDEX:DIALOG_INDEX")
	cmd.Flags().Bool("history", false, "print each turn's scene graph update")
	cmd.Flags().String("format", "text", "output format: text, mermaid or json")
	return cmd
}

func showMerged(out io.Writer, path string, index int, format string) error {
	merged, err := dataset.LoadMerged(path)
	if err != nil {
		return err
	}
	if index >= 0 {
		if index >= len(merged) {
			return fmt.Errorf("index %d out of range: %s holds %d dialogs", index, path, len(merged))
		}
		merged = merged[index : index+1]
	}
	for _, md := range merged {
		switch format {
		case "text":
			fmt.Fprint(out, export.FormatMerged(md))
		case "mermaid":
			fmt.Fprintln(out, export.MergedMermaid(md))
		case "json":
			if err := writeJSON(out, md); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown format %q", format)
		}
	}
	return nil
}

func showSource(cmd *cobra.Command, out io.Writer, input, key, format string, history bool, opts segment.Options) error {
	imageIndex, dialogIndex, err := parseKey(key)
	if err != nil {
		return err
	}
	images, err := dataset.LoadImages(input)
	if err != nil {
		return err
	}
	var d *dialog.Dialog
	for _, img := range images {
		if img.ImageIndex == imageIndex {
			if d, err = img.Dialog(dialogIndex); err != nil {
				return err
			}
			break
		}
	}
	if d == nil {
		return fmt.Errorf("no image %d in %s", imageIndex, input)
	}

	seg, err := segment.Segment(d, opts)
	if err != nil {
		return err
	}
	if format == "text" {
		fmt.Fprint(out, export.FormatDialog(seg, history))
		return nil
	}

	ctx := cmd.Context()
	store := graph.NewMemStore()
	if err := graph.IndexDialog(ctx, store, seg); err != nil {
		return err
	}
	switch format {
	case "mermaid":
		diagram, err := export.SceneMermaid(ctx, store, d.Key())
		if err != nil {
			return err
		}
		fmt.Fprint(out, diagram)
		return nil
	case "json":
		doc, err := export.ExportScene(ctx, store, d.Key())
		if err != nil {
			return err
		}
		return writeJSON(out, doc)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// parseKey splits "IMAGE_INDEX:DIALOG_INDEX".
func parseKey(key string) (int, int, error) {
	img, dlg, ok := strings.Cut(key, ":")
	if !ok {
		return 0, 0, fmt.Errorf("dialog %q: want IMAGE_INDEX:DIALOG_INDEX", key)
	}
	i, err := strconv.Atoi(img)
	if err != nil {
		return 0, 0, fmt.Errorf("dialog %q: %w", key, err)
	}
	j, err := strconv.Atoi(dlg)
	if err != nil {
		return 0, 0, fmt.Errorf("dialog %q: %w", key, err)
	}
	return i, j, nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
