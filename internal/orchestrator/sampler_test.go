package orchestrator

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/stitch/internal/dialog"
	"github.com/dusk-indust/stitch/internal/dialog/dialogtest"
	"github.com/dusk-indust/stitch/internal/scenegraph"
)

func corruptDialog(img, idx int) *dialog.Dialog {
	return dialogtest.New(img, idx, []dialog.Object{dialogtest.Obj(0, "color", "red")},
		dialogtest.TurnSpec{Template: "count-all", Objects: []dialog.Object{dialogtest.Obj(0, "color", "blue")}},
		dialogtest.TurnSpec{Template: "seek-attr-early"},
	)
}

func TestBuildPool(t *testing.T) {
	images := []dialog.Image{dialogtest.Image(0,
		dialogtest.Recallable(0, 0, "k0", "f0"),
		dialogtest.Templates(0, 1, "count-all", "count-obj"),
		corruptDialog(0, 2),
		dialogtest.Recallable(0, 3, "k3", "f3"),
		dialogtest.Recallable(0, 4, "k4", "f4"),
		dialogtest.Recallable(0, 5, "k5", "f5"),
	)}
	cfg := DefaultConfig()

	pool, stats, err := BuildPool(images, cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, PoolStats{Dialogs: 5, Corrupt: 1, NoRecall: 1, Candidate: 3}, stats)
	require.Len(t, pool, 3)
	assert.Equal(t, []int{0, 3, 4}, []int{pool[0].Dialog.DialogIndex, pool[1].Dialog.DialogIndex, pool[2].Dialog.DialogIndex})
}

func TestBuildPool_StrictFailsOnCorruptDialog(t *testing.T) {
	images := []dialog.Image{dialogtest.Image(0, corruptDialog(0, 0))}
	cfg := DefaultConfig()
	cfg.DialogsPerImage = 1
	cfg.Strict = true

	_, _, err := BuildPool(images, cfg, zerolog.Nop())
	assert.ErrorIs(t, err, scenegraph.ErrIntegrity)
}

func TestBuildPool_ShortImage(t *testing.T) {
	_, _, err := BuildPool(dialogtest.Images(1, 4), DefaultConfig(), zerolog.Nop())
	assert.ErrorIs(t, err, ErrShortImage)
}

func TestSampler_NeverRepeatsALabel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GroupSize = 2
	cfg.DialogsPerImage = 3
	cfg.MaxRejections = 10000
	pool, _, err := BuildPool(dialogtest.Images(1, 3), cfg, zerolog.Nop())
	require.NoError(t, err)

	s, err := NewSampler(pool, cfg, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	// Three dialogs form six ordered pairs.
	got, err := s.Fill(context.Background(), 6, nil)
	require.NoError(t, err)
	seen := make(map[string]bool)
	for _, md := range got {
		assert.False(t, seen[md.Label()])
		seen[md.Label()] = true
	}

	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, ErrSamplingExhausted)

	stats := s.Stats()
	assert.Equal(t, 6, stats.Accepted)
	assert.Zero(t, stats.Incompatible)
	assert.GreaterOrEqual(t, stats.Duplicates, cfg.MaxRejections)
	assert.Equal(t, stats.Attempts, stats.Accepted+stats.Incompatible+stats.Duplicates)
}

func TestSampler_FillReportsProgress(t *testing.T) {
	cfg := DefaultConfig()
	pool, _, err := BuildPool(dialogtest.Images(2, 5), cfg, zerolog.Nop())
	require.NoError(t, err)
	s, err := NewSampler(pool, cfg, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)

	var ticks []int
	got, err := s.Fill(context.Background(), 3, func(n int) { ticks = append(ticks, n) })
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 3}, ticks)
}

func TestNewSampler_PoolTooSmall(t *testing.T) {
	cfg := DefaultConfig()
	pool, _, err := BuildPool(dialogtest.Images(1, 5), cfg, zerolog.Nop())
	require.NoError(t, err)

	_, err = NewSampler(pool[:2], cfg, rand.New(rand.NewPCG(1, 1)))
	assert.ErrorIs(t, err, ErrPoolTooSmall)
}
