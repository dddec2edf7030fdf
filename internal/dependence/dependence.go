// Package dependence measures how far stitching pushes each turn away from
// the turn it depends on.
//
// For a turn at round k of its source dialog that depends on round d, the
// source distance is k-d. In a stitched dialog the same pair sits further
// apart whenever another dialog's turns were spliced between them. Both
// distances are collected over every dependent turn of every stitched
// dialog.
package dependence

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dusk-indust/stitch/internal/dialog"
)

var (
	ErrDistanceShrank = errors.New("dependence: stitched distance shorter than source distance")
	ErrMissingSource  = errors.New("dependence: source dialog not found")
	ErrMismatch       = errors.New("dependence: stitched dialog does not match its sources")
)

// Report summarises dependency distances.
type Report struct {
	Dialogs      int     `json:"dialogs"`
	Count        int     `json:"count"`
	SourceMean   float64 `json:"sourceMean"`
	StitchedMean float64 `json:"stitchedMean"`
	SourceMax    int     `json:"sourceMax"`
	StitchedMax  int     `json:"stitchedMax"`
}

// Distance is one dependent turn's distance before and after stitching.
type Distance struct {
	Source   int
	Stitched int
}

// Analyze measures every dependent turn in merged. sources maps
// dialog.Dialog.Key values to the source dialogs.
func Analyze(sources map[string]*dialog.Dialog, merged []*dialog.MergedDialog) (*Report, error) {
	r := &Report{Dialogs: len(merged)}
	var sumSource, sumStitched int
	for i, md := range merged {
		dists, err := Distances(sources, md)
		if err != nil {
			return nil, fmt.Errorf("dialog %d (%s): %w", i, md.Label(), err)
		}
		for _, d := range dists {
			r.Count++
			sumSource += d.Source
			sumStitched += d.Stitched
			r.SourceMax = max(r.SourceMax, d.Source)
			r.StitchedMax = max(r.StitchedMax, d.Stitched)
		}
	}
	if r.Count > 0 {
		r.SourceMean = float64(sumSource) / float64(r.Count)
		r.StitchedMean = float64(sumStitched) / float64(r.Count)
	}
	return r, nil
}

// Distances returns the distances of the dependent turns of one stitched
// dialog, in stitched order.
func Distances(sources map[string]*dialog.Dialog, md *dialog.MergedDialog) ([]Distance, error) {
	ctxs := md.Contexts()
	if len(md.DialogIndex) != ctxs {
		return nil, fmt.Errorf("%w: %d images, %d dialog indices", ErrMismatch, ctxs, len(md.DialogIndex))
	}
	src := make([]*dialog.Dialog, ctxs)
	for c := range src {
		key := strconv.Itoa(md.ImageIndex[c]) + ":" + strconv.Itoa(md.DialogIndex[c])
		d, ok := sources[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingSource, key)
		}
		src[c] = d
	}

	// local[i] is entry i's position within its own source, caption
	// included; placed[c] lists the stitched positions of source c.
	local := make([]int, len(md.Data))
	placed := make([][]int, ctxs)
	for i, e := range md.Data {
		c := e.ContextIndex
		if c < 0 || c >= ctxs {
			return nil, fmt.Errorf("%w: entry %d has context %d", ErrMismatch, i, c)
		}
		local[i] = len(placed[c])
		placed[c] = append(placed[c], i)
	}

	var out []Distance
	for i, e := range md.Data {
		if e.IsCaption() {
			continue
		}
		c := e.ContextIndex
		history := src[c].History
		if local[i] >= len(history) {
			return nil, fmt.Errorf("%w: entry %d beyond history of %s", ErrMismatch, i, src[c].Key())
		}
		dep := history[local[i]].Dependence
		if dep == nil {
			continue
		}
		if *dep < 0 || *dep+1 >= len(placed[c]) {
			return nil, fmt.Errorf("%w: entry %d depends on round %d", ErrMismatch, i, *dep)
		}
		d := Distance{
			Source:   local[i] - 1 - *dep,
			Stitched: i - placed[c][*dep+1],
		}
		if d.Source > d.Stitched {
			return nil, fmt.Errorf("%w: entry %d source %d stitched %d", ErrDistanceShrank, i, d.Source, d.Stitched)
		}
		out = append(out, d)
	}
	return out, nil
}
