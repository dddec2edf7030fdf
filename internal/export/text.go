// Package export renders dialogs and scene graphs for people: plain-text
// transcripts, Mermaid diagrams and JSON documents.
package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/stitch/internal/dialog"
	"github.com/dusk-indust/stitch/internal/segment"
)

var rule = strings.Repeat("-", 80)

// FormatMerged renders a stitched dialog as a transcript. Each line is
// prefixed with the context index of its source.
func FormatMerged(md *dialog.MergedDialog) string {
	var sb strings.Builder
	sb.WriteString(rule + "\n")
	for _, f := range md.ImageFilename {
		sb.WriteString(f + "\n")
	}
	for _, e := range md.Data {
		if e.IsCaption() {
			fmt.Fprintf(&sb, "(%d) C: %s\n", e.ContextIndex, *e.Caption)
			continue
		}
		fmt.Fprintf(&sb, "(%d) Q: %s\n\t[A: %v] [%s]\n", e.ContextIndex, e.Question, e.Answer, e.Template)
	}
	sb.WriteString("\n" + rule + "\n")
	return sb.String()
}

// FormatDialog renders a segmented source dialog. Recall rounds are marked
// with '*'; with showHistory each turn is followed by its graph update.
func FormatDialog(seg *segment.Segmented, showHistory bool) string {
	d := seg.Dialog
	recall := make(map[int]bool, len(seg.Points))
	for _, p := range seg.Points {
		recall[p.Round] = true
	}

	var sb strings.Builder
	sb.WriteString(rule + "\n")
	fmt.Fprintf(&sb, "%s [%s]\n", d.ImageFilename, d.Key())
	fmt.Fprintf(&sb, "C: %s\n", d.Caption)
	if showHistory && len(d.History) > 0 {
		sb.WriteString("\t" + formatItem(d.History[0]) + "\n")
	}
	for r, t := range d.Turns {
		mark := " "
		if recall[r] {
			mark = "*"
		}
		fmt.Fprintf(&sb, "%sQ-%d: %s\n\t[A: %v] [%s]\n", mark, r, t.Question, t.Answer, t.Template)
		if showHistory && r+1 < len(d.History) {
			sb.WriteString("\t" + formatItem(d.History[r+1]) + "\n")
		}
	}
	for _, p := range seg.Points {
		fmt.Fprintf(&sb, "recall %d: known=%v focus=%v\n", p.Round, p.Known.Sorted(), p.Focus.Sorted())
	}
	sb.WriteString("\n" + rule + "\n")
	return sb.String()
}

// formatItem renders one graph update on a single line.
func formatItem(item dialog.GraphItem) string {
	parts := make([]string, 0, 4)
	objs := make([]string, 0, len(item.Objects))
	for _, o := range item.Objects {
		objs = append(objs, formatObject(o))
	}
	parts = append(parts, "objects=["+strings.Join(objs, " ")+"]")
	if item.Relation != "" {
		parts = append(parts, "relation="+item.Relation)
	}
	if item.FocusDesc != nil {
		kv := make([]string, 0, len(item.FocusDesc.Values))
		for _, k := range item.FocusDesc.Keys() {
			kv = append(kv, k+"="+item.FocusDesc.Values[k])
		}
		parts = append(parts, fmt.Sprintf("focus={%s} required=%v", strings.Join(kv, ","), item.FocusDesc.Required))
	}
	if item.Dependence != nil {
		parts = append(parts, fmt.Sprintf("dependence=%d", *item.Dependence))
	}
	if !item.Mergeable {
		parts = append(parts, "unmergeable")
	}
	return strings.Join(parts, " ")
}

// formatObject renders an object as "#id{attr=value,...}" with the core
// attributes first.
func formatObject(o dialog.Object) string {
	id, err := o.ID()
	if err != nil {
		return "#?"
	}
	var attrs []string
	for _, k := range []string{"size", "color", "material", "shape"} {
		if v, ok := o[k]; ok {
			attrs = append(attrs, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return fmt.Sprintf("#%d{%s}", id, strings.Join(attrs, ","))
}
