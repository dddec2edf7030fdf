package orchestrator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/rs/zerolog"

	"github.com/dusk-indust/stitch/internal/dialog"
	"github.com/dusk-indust/stitch/internal/segment"
	"github.com/dusk-indust/stitch/internal/stitch"
)

// PoolStats summarises how a pool was built.
type PoolStats struct {
	Dialogs   int `json:"dialogs"`
	Corrupt   int `json:"corrupt"`
	NoRecall  int `json:"noRecall"`
	Candidate int `json:"candidate"`
}

// BuildPool segments the first cfg.DialogsPerImage dialogs of every image
// and keeps those with at least one recall point. Dialogs whose scene
// graph fails an integrity check are logged and skipped, or abort the
// build when cfg.Strict is set.
func BuildPool(images []dialog.Image, cfg Config, logger zerolog.Logger) ([]*segment.Segmented, PoolStats, error) {
	var stats PoolStats
	pool := make([]*segment.Segmented, 0, len(images)*cfg.DialogsPerImage)
	for _, img := range images {
		if len(img.Dialogs) < cfg.DialogsPerImage {
			return nil, stats, fmt.Errorf("%w: image %d has %d, want %d",
				ErrShortImage, img.ImageIndex, len(img.Dialogs), cfg.DialogsPerImage)
		}
		for i := 0; i < cfg.DialogsPerImage; i++ {
			stats.Dialogs++
			d, err := img.Dialog(i)
			if err != nil {
				return nil, stats, err
			}
			seg, err := segment.Segment(d, cfg.Markers)
			if err != nil {
				if cfg.Strict || !segment.IsCorrupt(err) {
					return nil, stats, fmt.Errorf("segment %s: %w", d.Key(), err)
				}
				stats.Corrupt++
				logger.Warn().Err(err).Str("dialog", d.Key()).Msg("skipping dialog")
				continue
			}
			if !seg.HasRecall() {
				stats.NoRecall++
				continue
			}
			pool = append(pool, seg)
		}
	}
	stats.Candidate = len(pool)
	return pool, stats, nil
}

// Sampler draws random groups from a pool, rejects incompatible and
// already-produced groups, and merges the rest. It is not safe for
// concurrent use; each worker owns one.
type Sampler struct {
	pool          []*segment.Segmented
	groupSize     int
	maxRejections int
	rng           *rand.Rand
	merger        *stitch.Merger
	seen          map[string]struct{}
	stats         SampleStats
}

// NewSampler returns a Sampler over pool drawing from rng.
func NewSampler(pool []*segment.Segmented, cfg Config, rng *rand.Rand) (*Sampler, error) {
	if len(pool) < cfg.GroupSize {
		return nil, fmt.Errorf("%w: %d candidates, group size %d", ErrPoolTooSmall, len(pool), cfg.GroupSize)
	}
	return &Sampler{
		pool:          pool,
		groupSize:     cfg.GroupSize,
		maxRejections: cfg.MaxRejections,
		rng:           rng,
		merger:        stitch.NewMerger(rng, stitch.WithPattern(cfg.pattern())),
		seen:          make(map[string]struct{}),
	}, nil
}

// Next returns the next accepted merge. It fails with ErrSamplingExhausted
// after maxRejections consecutive rejections.
func (s *Sampler) Next(ctx context.Context) (*dialog.MergedDialog, error) {
	for rejections := 0; ; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if rejections >= s.maxRejections {
			return nil, fmt.Errorf("%w: %d in a row", ErrSamplingExhausted, rejections)
		}

		group := s.draw()
		s.stats.Attempts++

		ok, err := stitch.Compatible(group)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.stats.Incompatible++
			rejections++
			continue
		}

		label := dialog.GroupLabel(sources(group))
		if _, dup := s.seen[label]; dup {
			s.stats.Duplicates++
			rejections++
			continue
		}

		md, err := s.merger.Merge(group)
		if err != nil {
			return nil, err
		}
		s.seen[label] = struct{}{}
		s.stats.Accepted++
		return md, nil
	}
}

// Fill collects quota merges. onAccept, if non-nil, is called with the
// running total after each one.
func (s *Sampler) Fill(ctx context.Context, quota int, onAccept func(int)) ([]*dialog.MergedDialog, error) {
	out := make([]*dialog.MergedDialog, 0, quota)
	for len(out) < quota {
		md, err := s.Next(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, md)
		if onAccept != nil {
			onAccept(len(out))
		}
	}
	return out, nil
}

// Stats returns the counters accumulated so far.
func (s *Sampler) Stats() SampleStats {
	return s.stats
}

// draw picks groupSize distinct pool members uniformly.
func (s *Sampler) draw() []*segment.Segmented {
	picked := make([]int, 0, s.groupSize)
	for len(picked) < s.groupSize {
		i := s.rng.IntN(len(s.pool))
		if slices.Contains(picked, i) {
			continue
		}
		picked = append(picked, i)
	}
	group := make([]*segment.Segmented, len(picked))
	for j, i := range picked {
		group[j] = s.pool[i]
	}
	return group
}

func sources(group []*segment.Segmented) []*dialog.Dialog {
	out := make([]*dialog.Dialog, len(group))
	for i, s := range group {
		out[i] = s.Dialog
	}
	return out
}
