// Package dialogtest builds small dialogs for tests.
package dialogtest

import (
	"fmt"

	"github.com/dusk-indust/stitch/internal/dialog"
)

// TurnSpec describes one turn and the graph update it produces.
type TurnSpec struct {
	Template    string
	Objects     []dialog.Object
	Relation    string
	Focus       *dialog.FocusDesc
	Dependence  *int
	Unmergeable bool
}

// Obj builds an object with the given id and key/value attribute pairs.
func Obj(id int, kv ...string) dialog.Object {
	o := dialog.Object{"id": float64(id)}
	for i := 0; i+1 < len(kv); i += 2 {
		o[kv[i]] = kv[i+1]
	}
	return o
}

// Focus builds a focus descriptor requiring the given keys.
func Focus(required []string, kv ...string) *dialog.FocusDesc {
	f := &dialog.FocusDesc{Required: required, Values: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		f.Values[kv[i]] = kv[i+1]
	}
	return f
}

// Dep returns a pointer to round, for TurnSpec.Dependence.
func Dep(round int) *int {
	return &round
}

// New builds a dialog for image img, dialog index idx. The caption reveals
// captionObjects; each TurnSpec adds one turn and one history record.
// Questions and answers are named after their position, e.g. "q2@4:1".
func New(img, idx int, captionObjects []dialog.Object, turns ...TurnSpec) *dialog.Dialog {
	d := &dialog.Dialog{
		ImageFilename: fmt.Sprintf("IMG_%06d.png", img),
		ImageIndex:    img,
		Split:         "train",
		DialogIndex:   idx,
		Caption:       fmt.Sprintf("caption@%d:%d", img, idx),
		History: []dialog.GraphItem{{
			Objects:   captionObjects,
			Mergeable: true,
		}},
	}
	for r, ts := range turns {
		d.Turns = append(d.Turns, dialog.Turn{
			Question: fmt.Sprintf("q%d@%d:%d", r, img, idx),
			Answer:   fmt.Sprintf("a%d@%d:%d", r, img, idx),
			Template: ts.Template,
			RoundID:  r,
		})
		d.History = append(d.History, dialog.GraphItem{
			Objects:    ts.Objects,
			Mergeable:  !ts.Unmergeable,
			Relation:   ts.Relation,
			FocusDesc:  ts.Focus,
			Dependence: ts.Dependence,
		})
	}
	return d
}

// Templates builds a dialog whose turns only carry the given templates.
func Templates(img, idx int, templates ...string) *dialog.Dialog {
	specs := make([]TurnSpec, len(templates))
	for i, tmpl := range templates {
		specs[i] = TurnSpec{Template: tmpl}
	}
	return New(img, idx, nil, specs...)
}

// Recallable builds a three-turn dialog with one recall point at round 1.
// The caption reveals known as a color; the recall turn focuses on focus.
func Recallable(img, idx int, known, focus string) *dialog.Dialog {
	return New(img, idx, []dialog.Object{Obj(0, "color", known)},
		TurnSpec{Template: "count-all"},
		TurnSpec{
			Template:   "seek-attr-early",
			Objects:    []dialog.Object{Obj(1, "shape", "cube")},
			Focus:      Focus([]string{"color"}, "color", focus),
			Dependence: Dep(0),
		},
		TurnSpec{Template: "count-obj-rel-imm"},
	)
}

// Image wraps dialogs into a source record for image img. Dialog identity
// fields other than the caption, turns and history are taken from img.
func Image(img int, dialogs ...*dialog.Dialog) dialog.Image {
	out := dialog.Image{
		ImageFilename: fmt.Sprintf("IMG_%06d.png", img),
		ImageIndex:    img,
		Split:         "train",
	}
	for _, d := range dialogs {
		rec := dialog.DialogRecord{Caption: d.Caption, Turns: d.Turns}
		rec.Graph.History = d.History
		out.Dialogs = append(out.Dialogs, rec)
	}
	return out
}

// Images builds n images of perImage Recallable dialogs each. Every dialog
// gets distinct known and focus values, so any group of them is
// compatible.
func Images(n, perImage int) []dialog.Image {
	out := make([]dialog.Image, n)
	for i := range out {
		dialogs := make([]*dialog.Dialog, perImage)
		for k := range dialogs {
			dialogs[k] = Recallable(i, k, fmt.Sprintf("known-%d-%d", i, k), fmt.Sprintf("focus-%d-%d", i, k))
		}
		out[i] = Image(i, dialogs...)
	}
	return out
}
