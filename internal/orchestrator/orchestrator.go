// Package orchestrator draws merge groups from a pool of segmented dialogs,
// fans the sampling out across workers and aggregates their output.
package orchestrator

import (
	"errors"

	"github.com/dusk-indust/stitch/internal/dialog"
)

// Sentinel errors.
var (
	ErrConfig            = errors.New("orchestrator: invalid config")
	ErrPoolTooSmall      = errors.New("orchestrator: pool smaller than group size")
	ErrSamplingExhausted = errors.New("orchestrator: too many rejected candidates")
	ErrShortImage        = errors.New("orchestrator: image has too few dialogs")
)

// ProgressEvent reports a worker's state during a run.
type ProgressEvent struct {
	Worker   int
	Status   ProgressStatus
	Accepted int
	Quota    int
	Message  string
}

// ProgressStatus is the state of a worker.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// SampleStats counts what a sampler did while filling its quota.
type SampleStats struct {
	Attempts     int `json:"attempts"`
	Accepted     int `json:"accepted"`
	Incompatible int `json:"incompatible"`
	Duplicates   int `json:"duplicates"`
}

// WorkerStats is one worker's contribution to a run.
type WorkerStats struct {
	Worker int    `json:"worker"`
	Seed   uint64 `json:"seed"`
	Quota  int    `json:"quota"`
	SampleStats
}

// Result is the aggregated output of a run.
type Result struct {
	RunID string `json:"runId"`
	Seed  uint64 `json:"seed"`

	// Dialogs holds the merged dialogs, deduplicated by label, in worker
	// order.
	Dialogs []*dialog.MergedDialog `json:"-"`

	// Generated counts dialogs produced across all workers before
	// deduplication; Unique counts distinct labels.
	Generated      int     `json:"generated"`
	Unique         int     `json:"unique"`
	OverlapPercent float64 `json:"overlapPercent"`

	PerWorker []WorkerStats `json:"perWorker"`
}
