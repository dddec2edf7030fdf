package orchestrator

import "fmt"

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event without blocking. If the channel is full the
// event is dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ worker %d (pending, quota %d)", event.Worker, event.Quota)
	case ProgressWorking:
		return fmt.Sprintf("  ● worker %d %d/%d", event.Worker, event.Accepted, event.Quota)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ worker %d complete (%d)", event.Worker, event.Accepted)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ worker %d failed: %s", event.Worker, event.Message)
	default:
		return fmt.Sprintf("  ? worker %d (unknown status)", event.Worker)
	}
}

// FormatSummary formats the totals of a finished run.
func FormatSummary(res *Result) string {
	return fmt.Sprintf("[%s] seed %d: %d generated, %d unique, %.2f%% overlap",
		res.RunID, res.Seed, res.Generated, res.Unique, res.OverlapPercent)
}
