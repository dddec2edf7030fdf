//go:build e2e

package e2e

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/stitch/internal/dataset"
	"github.com/dusk-indust/stitch/internal/dialog"
	"github.com/dusk-indust/stitch/internal/export"
	"github.com/dusk-indust/stitch/internal/stitch"
)

var update = flag.Bool("update", false, "update golden files")

// goldenDir returns the path to the testdata/golden directory.
func goldenDir() string {
	return filepath.Join("..", "..", "testdata", "golden")
}

// goldenTranscripts maps golden filenames to fixed two-dialog stitches of
// the fixture: source keys, pattern and split rounds.
var goldenTranscripts = []struct {
	golden         string
	a, b           string
	pattern        stitch.Pattern
	splitA, splitB int
}{
	{"abab_0-0_0-1.txt", "0:0", "0:1", stitch.PatternABAB, 1, 1},
}

func renderGolden(t *testing.T, sources map[string]*dialog.Dialog, a, b string, p stitch.Pattern, splitA, splitB int) string {
	t.Helper()
	da, db := sources[a], sources[b]
	require.NotNil(t, da, a)
	require.NotNil(t, db, b)
	data, err := stitch.AssembleTwo(da, db, p, splitA, splitB)
	require.NoError(t, err)
	return export.FormatMerged(dialog.NewMergedDialog(data, []*dialog.Dialog{da, db}))
}

// TestGolden compares stitched transcripts against golden files. If a
// golden file does not exist, the case is skipped with a message to run
// with -update.
func TestGolden(t *testing.T) {
	sources := loadSources(t)

	for _, g := range goldenTranscripts {
		t.Run(g.golden, func(t *testing.T) {
			goldenPath := filepath.Join(goldenDir(), g.golden)
			want, err := os.ReadFile(goldenPath)
			if os.IsNotExist(err) {
				t.Skipf("golden file %s missing; run with -update", goldenPath)
			}
			require.NoError(t, err)

			got := renderGolden(t, sources, g.a, g.b, g.pattern, g.splitA, g.splitB)
			assert.Equal(t, string(want), got)
		})
	}
}

// TestUpdateGolden rewrites the golden files when -update is set.
func TestUpdateGolden(t *testing.T) {
	if !*update {
		t.Skip("run with -update to regenerate golden files")
	}
	sources := loadSources(t)
	require.NoError(t, os.MkdirAll(goldenDir(), 0o755))
	for _, g := range goldenTranscripts {
		got := renderGolden(t, sources, g.a, g.b, g.pattern, g.splitA, g.splitB)
		require.NoError(t, os.WriteFile(filepath.Join(goldenDir(), g.golden), []byte(got), 0o644))
	}
}

func loadSources(t *testing.T) map[string]*dialog.Dialog {
	t.Helper()
	images, err := dataset.LoadImages(filepath.Join("..", "..", "testdata", "dialogs.json"))
	require.NoError(t, err)
	sources, err := dataset.Dialogs(images)
	require.NoError(t, err)
	return sources
}
