// Package segment finds the context recall points of a dialog: the turns
// at which another dialog may be spliced in without breaking coreference.
package segment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dusk-indust/stitch/internal/dialog"
	"github.com/dusk-indust/stitch/internal/scenegraph"
)

// ErrHistoryLength is returned when a dialog does not carry exactly one
// graph update per caption and turn.
var ErrHistoryLength = errors.New("segment: history length mismatch")

// Default template markers.
const (
	DefaultRecallMarker       = "early"
	DefaultSimultaneousMarker = "sim"
)

// Options controls which templates count as context recall.
type Options struct {
	// RecallMarker must appear in the template name.
	RecallMarker string
	// SimultaneousMarker must not appear in the template name.
	SimultaneousMarker string
}

// DefaultOptions returns the markers used by the dialog generator.
func DefaultOptions() Options {
	return Options{
		RecallMarker:       DefaultRecallMarker,
		SimultaneousMarker: DefaultSimultaneousMarker,
	}
}

// IsRecall reports whether template marks a context recall turn.
func (o Options) IsRecall(template string) bool {
	if !strings.Contains(template, o.RecallMarker) {
		return false
	}
	return o.SimultaneousMarker == "" || !strings.Contains(template, o.SimultaneousMarker)
}

// RecallPoint is a legal split round together with what is known and what
// is focused on up to that round.
type RecallPoint struct {
	Round     int                `json:"round_id"`
	Known     scenegraph.AttrSet `json:"known_attrs"`
	Focus     scenegraph.AttrSet `json:"focus_attrs"`
	TurnFocus *dialog.FocusDesc  `json:"turn_focus_attrs"`
}

// Segmented is a dialog together with its snapshot arena and recall points.
// It is built once by Segment and not modified afterwards.
type Segmented struct {
	Dialog    *dialog.Dialog
	Snapshots []*scenegraph.Graph
	Points    []RecallPoint
}

// Segment replays the dialog's graph history and collects a RecallPoint for
// every recall turn after the first round.
//
// The returned value owns its state; segmenting the same dialog twice gives
// two independent results.
func Segment(d *dialog.Dialog, opts Options) (*Segmented, error) {
	if len(d.History) != len(d.Turns)+1 {
		return nil, fmt.Errorf("%w: dialog %s has %d turns and %d history records",
			ErrHistoryLength, d.Key(), len(d.Turns), len(d.History))
	}

	builder := scenegraph.NewBuilder()
	for i, item := range d.History {
		if _, err := builder.Merge(item); err != nil {
			return nil, fmt.Errorf("segment: dialog %s history %d: %w", d.Key(), i, err)
		}
	}
	snapshots := builder.Snapshots()

	seg := &Segmented{Dialog: d, Snapshots: snapshots}
	for r, turn := range d.Turns {
		if r == 0 || !opts.IsRecall(turn.Template) {
			continue
		}
		seg.Points = append(seg.Points, RecallPoint{
			Round:     r,
			Known:     scenegraph.KnownAttributes(snapshots[r+1]),
			Focus:     focusUpTo(d.History, r+1),
			TurnFocus: d.TurnFocus(r),
		})
	}
	return seg, nil
}

// focusUpTo unions the required focus values of history[0..last].
func focusUpTo(history []dialog.GraphItem, last int) scenegraph.AttrSet {
	focus := make(scenegraph.AttrSet)
	for _, item := range history[:last+1] {
		for _, v := range item.FocusDesc.RequiredValues() {
			focus.Add(v)
		}
	}
	return focus
}

// HasRecall reports whether the dialog has at least one recall point.
func (s *Segmented) HasRecall() bool {
	return len(s.Points) > 0
}

// Last returns the most recently discovered recall point.
func (s *Segmented) Last() (RecallPoint, bool) {
	if len(s.Points) == 0 {
		return RecallPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Splits returns the rounds of all recall points, in order.
func (s *Segmented) Splits() []int {
	out := make([]int, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Round
	}
	return out
}

// IsCorrupt reports whether err from Segment was caused by the dialog's
// data rather than by the caller: an integrity violation, an object
// without an id, or a history that does not match the turns.
func IsCorrupt(err error) bool {
	return errors.Is(err, scenegraph.ErrIntegrity) ||
		errors.Is(err, dialog.ErrObjectID) ||
		errors.Is(err, ErrHistoryLength)
}
