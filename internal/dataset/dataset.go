// Package dataset reads source dialog files and writes stitched output.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dusk-indust/stitch/internal/dialog"
)

// LoadImages reads a JSON array of image records.
func LoadImages(path string) ([]dialog.Image, error) {
	var images []dialog.Image
	if err := readJSON(path, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// LoadMerged reads a JSON array of merged dialogs.
func LoadMerged(path string) ([]*dialog.MergedDialog, error) {
	var merged []*dialog.MergedDialog
	if err := readJSON(path, &merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// SaveMerged writes merged dialogs as a JSON array. A nil slice is written
// as an empty array.
func SaveMerged(path string, merged []*dialog.MergedDialog) error {
	if merged == nil {
		merged = []*dialog.MergedDialog{}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := json.NewEncoder(w).Encode(merged); err != nil {
		f.Close()
		return fmt.Errorf("dataset: encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("dataset: write %s: %w", path, err)
	}
	return f.Close()
}

// Dialogs flattens images into dialogs keyed by "imageIndex:dialogIndex".
func Dialogs(images []dialog.Image) (map[string]*dialog.Dialog, error) {
	out := make(map[string]*dialog.Dialog)
	for _, img := range images {
		for i := range img.Dialogs {
			d, err := img.Dialog(i)
			if err != nil {
				return nil, err
			}
			out[d.Key()] = d
		}
	}
	return out, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(v); err != nil {
		return fmt.Errorf("dataset: decode %s: %w", path, err)
	}
	return nil
}
