package dataset

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/dusk-indust/stitch/internal/dialog"
	"github.com/dusk-indust/stitch/internal/orchestrator"
)

// DefaultValImages is how many train images are held out for validation.
const DefaultValImages = 500

// Split is one output split: its source images and how many merged
// dialogs to draw from them.
type Split struct {
	Name   string
	Source []dialog.Image
	Count  int
}

// Splits lays out val, test and train. Validation takes the first
// valImages train images, test takes all of val, train takes the rest of
// train. Each split asks for as many merged dialogs as its source dialogs
// can fill when every merge consumes groupSize of them.
func Splits(train, val []dialog.Image, valImages, dialogsPerImage, groupSize int) []Split {
	valImages = min(max(valImages, 0), len(train))
	quota := func(images []dialog.Image) int {
		return len(images) * dialogsPerImage / groupSize
	}
	return []Split{
		{Name: "val", Source: train[:valImages], Count: quota(train[:valImages])},
		{Name: "test", Source: val, Count: quota(val)},
		{Name: "train", Source: train[valImages:], Count: quota(train[valImages:])},
	}
}

// FileName is the output file for a split.
func FileName(split string) string {
	return fmt.Sprintf("deep_dialog_%s.json", split)
}

// SplitResult reports where a split was written.
type SplitResult struct {
	Split  string
	Path   string
	Result *orchestrator.Result
}

// Generate runs every split through the orchestrator and writes each to
// saveRoot. cfg.Count is replaced by each split's quota.
func Generate(ctx context.Context, splits []Split, saveRoot string, cfg orchestrator.Config, logger zerolog.Logger) ([]SplitResult, error) {
	out := make([]SplitResult, 0, len(splits))
	for _, s := range splits {
		cfg := cfg
		cfg.Count = s.Count
		log := logger.With().Str("split", s.Name).Logger()
		log.Info().Int("images", len(s.Source)).Int("count", s.Count).Msg("generating split")

		res, err := orchestrator.Run(ctx, s.Source, cfg, orchestrator.WithLogger(log))
		if err != nil {
			return out, fmt.Errorf("dataset: split %s: %w", s.Name, err)
		}
		path := filepath.Join(saveRoot, FileName(s.Name))
		if err := SaveMerged(path, res.Dialogs); err != nil {
			return out, err
		}
		log.Info().Str("path", path).Int("unique", res.Unique).Msg("split saved")
		out = append(out, SplitResult{Split: s.Name, Path: path, Result: res})
	}
	return out, nil
}
