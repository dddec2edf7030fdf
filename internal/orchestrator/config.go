package orchestrator

import (
	"fmt"

	"github.com/dusk-indust/stitch/internal/segment"
	"github.com/dusk-indust/stitch/internal/stitch"
)

// Config holds the settings for one merge run.
type Config struct {
	// Count is the total number of merged dialogs to produce.
	Count int

	// Workers is the number of parallel sampling workers.
	Workers int

	// GroupSize is the number of dialogs per merge (2 or 3).
	GroupSize int

	// Pattern is the interleaving used when GroupSize is 2.
	Pattern stitch.Pattern

	// Seed seeds the run. Zero draws a random seed, which is reported in
	// the Result so the run can be repeated.
	Seed uint64

	// MaxRejections bounds consecutive rejected candidates per worker.
	MaxRejections int

	// DialogsPerImage is how many dialogs of each image enter the pool.
	DialogsPerImage int

	// Markers select the recall turns.
	Markers segment.Options

	// Strict aborts the run on the first dialog that fails segmentation
	// instead of excluding it.
	Strict bool
}

// DefaultConfig returns the settings the published stitched dataset was built with.
func DefaultConfig() Config {
	return Config{
		Workers:         4,
		GroupSize:       3,
		Pattern:         stitch.PatternABAB,
		MaxRejections:   100000,
		DialogsPerImage: 5,
		Markers:         segment.DefaultOptions(),
	}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	switch {
	case c.Count < 0:
		return fmt.Errorf("%w: count must not be negative, got %d", ErrConfig, c.Count)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrConfig, c.Workers)
	case c.GroupSize != 2 && c.GroupSize != 3:
		return fmt.Errorf("%w: group size must be 2 or 3, got %d", ErrConfig, c.GroupSize)
	case c.MaxRejections < 1:
		return fmt.Errorf("%w: max rejections must be at least 1, got %d", ErrConfig, c.MaxRejections)
	case c.DialogsPerImage < 1:
		return fmt.Errorf("%w: dialogs per image must be at least 1, got %d", ErrConfig, c.DialogsPerImage)
	case c.Markers.RecallMarker == "":
		return fmt.Errorf("%w: recall marker is empty", ErrConfig)
	}
	if c.GroupSize == 2 {
		if _, err := stitch.ParsePattern(string(c.Pattern)); err != nil {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}
	return nil
}

// pattern returns the configured pattern in canonical form.
func (c Config) pattern() stitch.Pattern {
	if p, err := stitch.ParsePattern(string(c.Pattern)); err == nil {
		return p
	}
	return c.Pattern
}

// quotas splits count across workers; the first count%workers workers
// take one extra.
func quotas(count, workers int) []int {
	out := make([]int, workers)
	for w := range out {
		out[w] = count / workers
		if w < count%workers {
			out[w]++
		}
	}
	return out
}
