package segment

import (
	"errors"
	"testing"

	"github.com/dusk-indust/stitch/internal/dialog"
	"github.com/dusk-indust/stitch/internal/dialog/dialogtest"
	"github.com/dusk-indust/stitch/internal/scenegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recallDialog is a five-turn dialog with recall turns at rounds 0, 2 and 4
// and a simultaneous recall at round 3.
func recallDialog() *dialog.Dialog {
	return dialogtest.New(1, 0,
		[]dialog.Object{dialogtest.Obj(0, "shape", "cube"), dialogtest.Obj(9, "color", "N/A")},
		dialogtest.TurnSpec{Template: "count-attribute-early"},
		dialogtest.TurnSpec{
			Template: "seek-attr-imm",
			Objects:  []dialog.Object{dialogtest.Obj(0, "color", "red")},
			Focus:    dialogtest.Focus([]string{"shape"}, "shape", "cube", "size", "small"),
		},
		dialogtest.TurnSpec{
			Template: "exist-attribute-early",
			Objects:  []dialog.Object{dialogtest.Obj(1, "material", "metal")},
			Focus:    dialogtest.Focus([]string{"color", "material"}, "color", "red", "material", "metal"),
		},
		dialogtest.TurnSpec{Template: "count-obj-early-sim"},
		dialogtest.TurnSpec{
			Template: "seek-attr-early",
			Objects:  []dialog.Object{dialogtest.Obj(2, "size", "large")},
		},
	)
}

func TestSegment_SnapshotPerTurnPlusCaption(t *testing.T) {
	d := recallDialog()
	seg, err := Segment(d, DefaultOptions())
	require.NoError(t, err)

	assert.Len(t, seg.Snapshots, len(d.Turns)+1)
	assert.Same(t, d, seg.Dialog)
}

func TestSegment_RecallPoints(t *testing.T) {
	seg, err := Segment(recallDialog(), DefaultOptions())
	require.NoError(t, err)

	// Round 0 is never eligible, round 3 is simultaneous.
	assert.Equal(t, []int{2, 4}, seg.Splits())
	for _, p := range seg.Points {
		assert.GreaterOrEqual(t, p.Round, 1)
	}

	p2 := seg.Points[0]
	// Snapshot 3 includes turn 2's own update.
	assert.Equal(t, []string{"cube", "metal", "red"}, p2.Known.Sorted())
	assert.Equal(t, []string{"cube", "metal", "red"}, p2.Focus.Sorted(),
		"focus unions required values of rounds 1 and 2 only")
	require.NotNil(t, p2.TurnFocus)
	assert.Equal(t, []string{"color", "material"}, p2.TurnFocus.Required)

	p4 := seg.Points[1]
	assert.Equal(t, []string{"cube", "large", "metal", "red"}, p4.Known.Sorted())
	assert.Equal(t, p2.Focus, p4.Focus)
	assert.Nil(t, p4.TurnFocus)

	last, ok := seg.Last()
	require.True(t, ok)
	assert.Equal(t, 4, last.Round)
	assert.True(t, seg.HasRecall())
}

func TestSegment_KnownNeverHoldsUnknown(t *testing.T) {
	seg, err := Segment(recallDialog(), DefaultOptions())
	require.NoError(t, err)
	for _, p := range seg.Points {
		assert.False(t, p.Known.Has(scenegraph.Unknown))
	}
}

func TestSegment_NoRecallTurns(t *testing.T) {
	d := dialogtest.Templates(2, 1, "count-all", "seek-attr-imm", "exist-obj")
	seg, err := Segment(d, DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, seg.Points)
	assert.False(t, seg.HasRecall())
	_, ok := seg.Last()
	assert.False(t, ok)
	assert.Len(t, seg.Snapshots, 4)
}

func TestSegment_CustomMarkers(t *testing.T) {
	d := dialogtest.Templates(2, 2, "a", "recall-x", "recall-both", "early")
	seg, err := Segment(d, Options{RecallMarker: "recall", SimultaneousMarker: "both"})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, seg.Splits())

	seg, err = Segment(d, Options{RecallMarker: "recall"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, seg.Splits(), "empty simultaneous marker excludes nothing")
}

func TestSegment_IntegrityViolationAbortsDialog(t *testing.T) {
	d := dialogtest.New(3, 0,
		[]dialog.Object{dialogtest.Obj(0, "color", "red")},
		dialogtest.TurnSpec{Template: "count-all"},
		dialogtest.TurnSpec{
			Template: "seek-attr-early",
			Objects:  []dialog.Object{dialogtest.Obj(0, "color", "green")},
		},
	)
	_, err := Segment(d, DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, scenegraph.ErrIntegrity)
	assert.Contains(t, err.Error(), "3:0")
}

func TestSegment_HistoryLengthMismatch(t *testing.T) {
	d := dialogtest.Templates(4, 0, "count-all", "seek-attr-early")
	d.History = d.History[:2]
	_, err := Segment(d, DefaultOptions())
	assert.ErrorIs(t, err, ErrHistoryLength)
}

func TestSegment_RepeatedCallsAreIndependent(t *testing.T) {
	d := recallDialog()
	first, err := Segment(d, DefaultOptions())
	require.NoError(t, err)
	second, err := Segment(d, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first.Splits(), second.Splits())
	assert.Len(t, second.Snapshots, len(d.Turns)+1)

	first.Points[0].Known.Add("mutated")
	assert.False(t, second.Points[0].Known.Has("mutated"))
}

func TestIsCorrupt(t *testing.T) {
	conflict := dialogtest.New(1, 0, []dialog.Object{dialogtest.Obj(0, "color", "red")},
		dialogtest.TurnSpec{Template: "count-all", Objects: []dialog.Object{dialogtest.Obj(0, "color", "blue")}},
	)
	_, err := Segment(conflict, DefaultOptions())
	require.Error(t, err)
	assert.True(t, IsCorrupt(err))

	short := dialogtest.Templates(1, 1, "count-all")
	short.History = short.History[:1]
	_, err = Segment(short, DefaultOptions())
	assert.True(t, IsCorrupt(err))

	assert.False(t, IsCorrupt(errors.New("disk on fire")))
	assert.False(t, IsCorrupt(nil))
}
