package orchestrator

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/stitch/internal/dialog"
)

// Option configures Run.
type Option func(*runner)

// WithLogger sets the logger used for pool building and worker summaries.
func WithLogger(l zerolog.Logger) Option {
	return func(r *runner) { r.logger = l }
}

// WithProgress registers a callback for worker progress. It is called
// synchronously from each worker goroutine.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(r *runner) { r.onProgress = fn }
}

type runner struct {
	cfg        Config
	images     []dialog.Image
	logger     zerolog.Logger
	onProgress func(ProgressEvent)
}

// workerResult is one worker's isolated output slot.
type workerResult struct {
	dialogs []*dialog.MergedDialog
	stats   WorkerStats
}

// Run produces cfg.Count merged dialogs from images. The count is split
// across cfg.Workers workers, each with its own seed, its own pool built
// from images and its own result slot. Slots are combined only after every
// worker returns; the combined output is deduplicated by label.
//
// The first worker failure cancels the others.
func Run(ctx context.Context, images []dialog.Image, cfg Config, opts ...Option) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &runner{cfg: cfg, images: images, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}

	// Built once up front to report data problems and size the pool.
	pool, pstats, err := BuildPool(images, cfg, r.logger)
	if err != nil {
		return nil, err
	}
	r.logger.Info().
		Int("dialogs", pstats.Dialogs).
		Int("corrupt", pstats.Corrupt).
		Int("no_recall", pstats.NoRecall).
		Int("candidates", pstats.Candidate).
		Msg("pool built")
	if len(pool) < cfg.GroupSize {
		return nil, fmt.Errorf("%w: %d candidates, group size %d", ErrPoolTooSmall, len(pool), cfg.GroupSize)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	master := rand.New(rand.NewPCG(seed, seed))
	quota := quotas(cfg.Count, cfg.Workers)
	seeds := make([]uint64, cfg.Workers)
	for w := range seeds {
		seeds[w] = master.Uint64()
	}

	results := make([]workerResult, cfg.Workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		r.emit(ProgressEvent{Worker: w, Status: ProgressPending, Quota: quota[w]})
		g.Go(func() error {
			res, err := r.work(gctx, w, seeds[w], quota[w])
			results[w] = res
			if err != nil {
				r.emit(ProgressEvent{Worker: w, Status: ProgressFailed, Accepted: res.stats.Accepted, Quota: quota[w], Message: err.Error()})
				return fmt.Errorf("worker %d: %w", w, err)
			}
			r.emit(ProgressEvent{Worker: w, Status: ProgressComplete, Accepted: res.stats.Accepted, Quota: quota[w]})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := aggregate(results)
	out.RunID = uuid.NewString()
	out.Seed = seed
	r.logger.Info().
		Str("run", out.RunID).
		Uint64("seed", seed).
		Int("generated", out.Generated).
		Int("unique", out.Unique).
		Float64("overlap_pct", out.OverlapPercent).
		Msg("run complete")
	return out, nil
}

func (r *runner) work(ctx context.Context, w int, seed uint64, quota int) (workerResult, error) {
	res := workerResult{stats: WorkerStats{Worker: w, Seed: seed, Quota: quota}}

	pool, _, err := BuildPool(r.images, r.cfg, zerolog.Nop())
	if err != nil {
		return res, err
	}
	s, err := NewSampler(pool, r.cfg, rand.New(rand.NewPCG(seed, uint64(w))))
	if err != nil {
		return res, err
	}

	r.emit(ProgressEvent{Worker: w, Status: ProgressWorking, Quota: quota})
	res.dialogs, err = s.Fill(ctx, quota, func(n int) {
		r.emit(ProgressEvent{Worker: w, Status: ProgressWorking, Accepted: n, Quota: quota})
	})
	res.stats.SampleStats = s.Stats()
	r.logger.Debug().
		Int("worker", w).
		Int("accepted", res.stats.Accepted).
		Int("incompatible", res.stats.Incompatible).
		Int("duplicates", res.stats.Duplicates).
		Msg("worker done")
	return res, err
}

// aggregate combines the worker slots in worker order, keeping the first
// dialog seen for each label.
func aggregate(results []workerResult) *Result {
	out := &Result{PerWorker: make([]WorkerStats, 0, len(results))}
	seen := make(map[string]struct{})
	for _, wr := range results {
		out.PerWorker = append(out.PerWorker, wr.stats)
		for _, md := range wr.dialogs {
			out.Generated++
			label := md.Label()
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}
			out.Dialogs = append(out.Dialogs, md)
		}
	}
	out.Unique = len(out.Dialogs)
	out.OverlapPercent = overlapPercent(out.Generated, out.Unique)
	return out
}

// overlapPercent is the share of generated dialogs lost to cross-worker
// duplicates.
func overlapPercent(generated, unique int) float64 {
	if generated == 0 {
		return 0
	}
	return 100 * float64(generated-unique) / float64(generated)
}

func (r *runner) emit(ev ProgressEvent) {
	if r.onProgress != nil {
		r.onProgress(ev)
	}
}
