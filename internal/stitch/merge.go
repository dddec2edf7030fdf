package stitch

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/dusk-indust/stitch/internal/dialog"
	"github.com/dusk-indust/stitch/internal/segment"
)

// Pattern selects how two dialogs are interleaved.
type Pattern string

const (
	// PatternABA puts all of B between A's two halves.
	PatternABA Pattern = "ABA"
	// PatternABAB splits both dialogs and alternates the halves.
	PatternABAB Pattern = "ABAB"
)

// ParsePattern accepts "ABA" or "ABAB", case-insensitively.
func ParsePattern(s string) (Pattern, error) {
	switch p := Pattern(strings.ToUpper(s)); p {
	case PatternABA, PatternABAB:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrPattern, s)
	}
}

// visitsPerDialog is how many segments each dialog contributes to a
// three-way merge: the part before its split and the part after.
const visitsPerDialog = 2

// Merger interleaves compatible dialogs. It draws split rounds and visit
// orders from its own random source and is not safe for concurrent use.
type Merger struct {
	rng     *rand.Rand
	pattern Pattern
}

// MergerOption configures a Merger.
type MergerOption func(*Merger)

// WithPattern sets the pattern Merge uses for two-dialog groups.
func WithPattern(p Pattern) MergerOption {
	return func(m *Merger) { m.pattern = p }
}

// NewMerger returns a Merger drawing from rng. Two-dialog groups default
// to PatternABAB.
func NewMerger(rng *rand.Rand, opts ...MergerOption) *Merger {
	m := &Merger{rng: rng, pattern: PatternABAB}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge interleaves a group of two or three dialogs and wraps the result
// with the identity of each source, in group order.
func (m *Merger) Merge(group []*segment.Segmented) (*dialog.MergedDialog, error) {
	var (
		data []dialog.Entry
		err  error
	)
	switch len(group) {
	case 2:
		data, err = m.MergeTwo(group[0], group[1], m.pattern)
	case 3:
		data, err = m.MergeThree(group[0], group[1], group[2])
	default:
		return nil, fmt.Errorf("%w: got %d", ErrArity, len(group))
	}
	if err != nil {
		return nil, err
	}

	sources := make([]*dialog.Dialog, len(group))
	for i, s := range group {
		sources[i] = s.Dialog
	}
	return dialog.NewMergedDialog(data, sources), nil
}

// pickSplit draws one recall round uniformly.
func (m *Merger) pickSplit(s *segment.Segmented) (int, error) {
	if !s.HasRecall() {
		return 0, fmt.Errorf("%w: %s", ErrNoRecallPoints, s.Dialog.Key())
	}
	return s.Points[m.rng.IntN(len(s.Points))].Round, nil
}

// MergeTwo interleaves a (context 0) and b (context 1) with a random split
// for a and, for ABAB, a random split for b.
func (m *Merger) MergeTwo(a, b *segment.Segmented, p Pattern) ([]dialog.Entry, error) {
	if p != PatternABA && p != PatternABAB {
		return nil, fmt.Errorf("%w: %q", ErrPattern, p)
	}
	splitA, err := m.pickSplit(a)
	if err != nil {
		return nil, err
	}
	splitB := len(b.Dialog.Turns)
	if p == PatternABAB {
		if splitB, err = m.pickSplit(b); err != nil {
			return nil, err
		}
	}
	return AssembleTwo(a.Dialog, b.Dialog, p, splitA, splitB)
}

// AssembleTwo builds the two-dialog sequence for fixed splits:
//
//	caption A, A[:splitA], caption B, B[:splitB] (ABAB) or B (ABA),
//	A[splitA:], then B[splitB:] for ABAB.
//
// splitB is ignored for ABA.
func AssembleTwo(a, b *dialog.Dialog, p Pattern, splitA, splitB int) ([]dialog.Entry, error) {
	if p != PatternABA && p != PatternABAB {
		return nil, fmt.Errorf("%w: %q", ErrPattern, p)
	}
	if p == PatternABA {
		splitB = len(b.Turns)
	}
	if err := checkSplit(a, splitA); err != nil {
		return nil, err
	}
	if err := checkSplit(b, splitB); err != nil {
		return nil, err
	}

	out := make([]dialog.Entry, 0, len(a.Turns)+len(b.Turns)+2)
	out = append(out, dialog.CaptionEntry(0, a.Caption))
	out = appendTurns(out, 0, a.Turns[:splitA])
	out = append(out, dialog.CaptionEntry(1, b.Caption))
	out = appendTurns(out, 1, b.Turns[:splitB])
	out = appendTurns(out, 0, a.Turns[splitA:])
	if p == PatternABAB {
		out = appendTurns(out, 1, b.Turns[splitB:])
	}
	return out, nil
}

// MergeThree interleaves three dialogs: one random split per dialog and a
// random visit plan from PlanVisits.
func (m *Merger) MergeThree(a, b, c *segment.Segmented) ([]dialog.Entry, error) {
	group := []*segment.Segmented{a, b, c}
	splits := make([]int, len(group))
	sources := make([]*dialog.Dialog, len(group))
	for i, s := range group {
		split, err := m.pickSplit(s)
		if err != nil {
			return nil, err
		}
		splits[i] = split
		sources[i] = s.Dialog
	}
	return AssembleThree(sources, splits, m.PlanVisits(len(group)))
}

// PlanVisits orders the segments of an n-way merge. Each dialog is visited
// twice and, while any other dialog still has a visit left, never twice in
// a row.
func (m *Merger) PlanVisits(n int) []int {
	counts := make([]int, n)
	visits := make([]int, 0, n*visitsPerDialog)
	current := -1
	candidates := make([]int, 0, n)
	for len(visits) < n*visitsPerDialog {
		candidates = candidates[:0]
		for i := 0; i < n; i++ {
			if i != current && counts[i] < visitsPerDialog {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) > 0 {
			current = candidates[m.rng.IntN(len(candidates))]
		}
		counts[current]++
		visits = append(visits, current)
	}
	return visits
}

// AssembleThree builds the three-dialog sequence for fixed splits and a
// visit plan. A dialog's first visit emits its caption and the turns before
// its split; its second visit emits the remaining turns.
func AssembleThree(dialogs []*dialog.Dialog, splits, visits []int) ([]dialog.Entry, error) {
	if len(dialogs) != 3 || len(splits) != len(dialogs) {
		return nil, fmt.Errorf("%w: got %d dialogs and %d splits", ErrArity, len(dialogs), len(splits))
	}
	if err := checkVisits(visits, len(dialogs)); err != nil {
		return nil, err
	}
	total := len(dialogs)
	for i, d := range dialogs {
		if err := checkSplit(d, splits[i]); err != nil {
			return nil, err
		}
		total += len(d.Turns)
	}

	seen := make([]bool, len(dialogs))
	out := make([]dialog.Entry, 0, total)
	for _, i := range visits {
		d := dialogs[i]
		if !seen[i] {
			seen[i] = true
			out = append(out, dialog.CaptionEntry(i, d.Caption))
			out = appendTurns(out, i, d.Turns[:splits[i]])
			continue
		}
		out = appendTurns(out, i, d.Turns[splits[i]:])
	}
	return out, nil
}

func checkVisits(visits []int, n int) error {
	if len(visits) != n*visitsPerDialog {
		return fmt.Errorf("%w: %d visits, want %d", ErrVisits, len(visits), n*visitsPerDialog)
	}
	counts := make([]int, n)
	for _, i := range visits {
		if i < 0 || i >= n {
			return fmt.Errorf("%w: dialog %d out of range", ErrVisits, i)
		}
		counts[i]++
	}
	for i, c := range counts {
		if c != visitsPerDialog {
			return fmt.Errorf("%w: dialog %d visited %d times", ErrVisits, i, c)
		}
	}
	return nil
}

func checkSplit(d *dialog.Dialog, split int) error {
	if split < 0 || split > len(d.Turns) {
		return fmt.Errorf("%w: dialog %s round %d, %d turns", ErrSplit, d.Key(), split, len(d.Turns))
	}
	return nil
}

func appendTurns(out []dialog.Entry, ctx int, turns []dialog.Turn) []dialog.Entry {
	for _, t := range turns {
		out = append(out, dialog.TurnEntry(ctx, t))
	}
	return out
}
