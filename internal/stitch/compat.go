// Package stitch decides which dialogs may be interleaved and interleaves
// them into one deep dialog.
package stitch

import (
	"errors"
	"fmt"

	"github.com/dusk-indust/stitch/internal/segment"
)

// Sentinel errors.
var (
	ErrArity          = errors.New("stitch: merge group must hold 2 or 3 dialogs")
	ErrNoRecallPoints = errors.New("stitch: dialog has no recall points")
	ErrPattern        = errors.New("stitch: unknown merge pattern")
	ErrSplit          = errors.New("stitch: split round out of range")
	ErrVisits         = errors.New("stitch: invalid visit plan")
)

// Conflict records that dialog Known has already revealed values that
// dialog Focus's recall turns depend on.
type Conflict struct {
	Known  int      `json:"known"`
	Focus  int      `json:"focus"`
	Values []string `json:"values"`
}

// checkGroup validates arity and that every dialog can be split.
func checkGroup(group []*segment.Segmented) error {
	if len(group) != 2 && len(group) != 3 {
		return fmt.Errorf("%w: got %d", ErrArity, len(group))
	}
	for _, s := range group {
		if !s.HasRecall() {
			return fmt.Errorf("%w: %s", ErrNoRecallPoints, s.Dialog.Key())
		}
	}
	return nil
}

// Conflicts checks every ordered pair (i, j), i != j, using each dialog's
// last recall point, and reports each pair whose known values of i meet
// the focus values of j. The input is not modified.
func Conflicts(group []*segment.Segmented) ([]Conflict, error) {
	if err := checkGroup(group); err != nil {
		return nil, err
	}
	last := make([]segment.RecallPoint, len(group))
	for i, s := range group {
		last[i], _ = s.Last()
	}

	var conflicts []Conflict
	for i := range group {
		for j := range group {
			if i == j {
				continue
			}
			if shared := last[i].Known.Intersect(last[j].Focus); len(shared) > 0 {
				conflicts = append(conflicts, Conflict{Known: i, Focus: j, Values: shared})
			}
		}
	}
	return conflicts, nil
}

// Compatible reports whether the group can be merged: no dialog's known
// values may collide with another dialog's focus values, in either
// direction. An incompatible group is not an error.
func Compatible(group []*segment.Segmented) (bool, error) {
	conflicts, err := Conflicts(group)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}
