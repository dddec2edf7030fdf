package mcptools

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/stitch/internal/dataset"
	"github.com/dusk-indust/stitch/internal/graph"
	"github.com/dusk-indust/stitch/internal/segment"
	"github.com/dusk-indust/stitch/internal/stitch"
)

// newTestService loads the shared dialog fixture into a MemStore-backed
// service. Tests run from internal/mcptools/, so the fixture lives at
// ../../testdata/dialogs.json.
func newTestService(t *testing.T) *StitchService {
	t.Helper()
	images, err := dataset.LoadImages("../../testdata/dialogs.json")
	require.NoError(t, err)
	svc, err := NewStitchService(context.Background(), images, segment.DefaultOptions(), graph.NewMemStore(), zerolog.Nop())
	require.NoError(t, err)
	return svc
}

func refs(keys ...[2]int) []DialogRef {
	out := make([]DialogRef, 0, len(keys))
	for _, k := range keys {
		out = append(out, DialogRef{ImageIndex: k[0], DialogIndex: k[1]})
	}
	return out
}

func TestSegmentDialog(t *testing.T) {
	svc := newTestService(t)

	_, out, err := svc.SegmentDialog(context.Background(), nil, SegmentDialogInput{ImageIndex: 0, DialogIndex: 0})
	require.NoError(t, err)
	assert.Equal(t, "0:0", out.Key)
	assert.Equal(t, 4, out.Turns)
	require.Len(t, out.RecallPoints, 1)
	assert.Equal(t, RecallPointView{
		Round: 1,
		Known: []string{"cube", "gray", "large", "rubber"},
		Focus: []string{"gray"},
	}, out.RecallPoints[0])
	assert.Contains(t, out.Transcript, "*Q-1: what about the earlier gray thing")
}

func TestSegmentDialog_Unknown(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.SegmentDialog(context.Background(), nil, SegmentDialogInput{ImageIndex: 7, DialogIndex: 0})
	assert.ErrorIs(t, err, ErrUnknownDialog)
}

func TestCheckCompatibility(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("compatible", func(t *testing.T) {
		_, out, err := svc.CheckCompatibility(ctx, nil, CheckCompatibilityInput{Dialogs: refs([2]int{0, 0}, [2]int{0, 1}, [2]int{0, 2})})
		require.NoError(t, err)
		assert.True(t, out.Compatible)
		assert.Empty(t, out.Conflicts)
	})

	t.Run("both directions collide", func(t *testing.T) {
		_, out, err := svc.CheckCompatibility(ctx, nil, CheckCompatibilityInput{Dialogs: refs([2]int{0, 0}, [2]int{1, 3})})
		require.NoError(t, err)
		assert.False(t, out.Compatible)
		assert.Equal(t, []stitch.Conflict{
			{Known: 0, Focus: 1, Values: []string{"gray"}},
			{Known: 1, Focus: 0, Values: []string{"gray"}},
		}, out.Conflicts)
	})

	t.Run("arity", func(t *testing.T) {
		_, _, err := svc.CheckCompatibility(ctx, nil, CheckCompatibilityInput{Dialogs: refs([2]int{0, 0})})
		assert.ErrorIs(t, err, stitch.ErrArity)
	})
}

func TestMergeDialogs(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	in := MergeDialogsInput{Dialogs: refs([2]int{0, 0}, [2]int{0, 1}), Seed: 7, Pattern: "aba"}

	_, out, err := svc.MergeDialogs(ctx, nil, in)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), out.Seed)
	assert.Equal(t, []int{0, 0}, out.Merged.ImageIndex)
	assert.Equal(t, []int{0, 1}, out.Merged.DialogIndex)
	assert.Len(t, out.Merged.Data, 10, "two captions plus eight turns")
	assert.Equal(t, out.Merged.Label(), out.Label)
	assert.Contains(t, out.Transcript, "(1) C: There is a small red rubber sphere.")

	_, again, err := svc.MergeDialogs(ctx, nil, in)
	require.NoError(t, err)
	assert.Equal(t, out.Merged, again.Merged, "same seed, same stitch")
}

func TestMergeDialogs_Rejects(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.MergeDialogs(ctx, nil, MergeDialogsInput{Dialogs: refs([2]int{0, 0}, [2]int{1, 3})})
	assert.ErrorIs(t, err, ErrIncompatible)

	_, _, err = svc.MergeDialogs(ctx, nil, MergeDialogsInput{Dialogs: refs([2]int{0, 0}, [2]int{0, 1}), Pattern: "BAB"})
	assert.ErrorIs(t, err, stitch.ErrPattern)

	_, _, err = svc.MergeDialogs(ctx, nil, MergeDialogsInput{Dialogs: refs([2]int{0, 0}, [2]int{9, 9})})
	assert.ErrorIs(t, err, ErrUnknownDialog)
}

func TestSceneGraph(t *testing.T) {
	svc := newTestService(t)

	_, out, err := svc.SceneGraph(context.Background(), nil, SceneGraphInput{ImageIndex: 1, DialogIndex: 3})
	require.NoError(t, err)
	assert.Equal(t, "There is a large gray rubber cylinder.", out.Scene.Dialog.Caption)
	assert.Len(t, out.Scene.Objects, 2)
	assert.Equal(t, []graph.RelationEdge{{DialogKey: "1:3", Relation: "left", From: 0, To: 1}}, out.Scene.Relations)
	assert.Contains(t, out.Mermaid, `O0["#0 large gray rubber cylinder"]`)
	assert.Contains(t, out.Mermaid, `O1["#1 green metal"]`)

	_, _, err = svc.SceneGraph(context.Background(), nil, SceneGraphInput{ImageIndex: 4, DialogIndex: 0})
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestFindDialogs(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, out, err := svc.FindDialogs(ctx, nil, FindDialogsInput{Value: "green"})
	require.NoError(t, err)
	require.Equal(t, 3, out.Total)
	keys := make([]string, 0, len(out.Dialogs))
	for _, d := range out.Dialogs {
		keys = append(keys, d.Key)
	}
	assert.Equal(t, []string{"0:0", "0:3", "1:3"}, keys)

	_, out, err = svc.FindDialogs(ctx, nil, FindDialogsInput{Value: "green", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Total)

	_, _, err = svc.FindDialogs(ctx, nil, FindDialogsInput{})
	assert.Error(t, err)
}

func TestRelatedObjects(t *testing.T) {
	svc := newTestService(t)

	_, out, err := svc.RelatedObjects(context.Background(), nil, RelatedObjectsInput{ImageIndex: 0, DialogIndex: 2, ObjectID: 0})
	require.NoError(t, err)
	assert.Equal(t, []graph.Chain{{Objects: []int{0, 1}, Depth: 1}}, out.Chains)

	_, out, err = svc.RelatedObjects(context.Background(), nil, RelatedObjectsInput{ImageIndex: 0, DialogIndex: 2, ObjectID: 1})
	require.NoError(t, err)
	assert.Empty(t, out.Chains)
}
