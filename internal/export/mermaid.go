package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/dusk-indust/stitch/internal/dialog"
	"github.com/dusk-indust/stitch/internal/graph"
	"github.com/dusk-indust/stitch/internal/scenegraph"
)

// run is a maximal stretch of consecutive entries from one source.
type run struct {
	context int
	caption bool
	first   int // first round, -1 if the run holds only the caption
	last    int
}

// runs splits a stitched sequence into per-source stretches.
func runs(md *dialog.MergedDialog) []run {
	rounds := make(map[int]int)
	var out []run
	for i, e := range md.Data {
		if i == 0 || e.ContextIndex != md.Data[i-1].ContextIndex {
			out = append(out, run{context: e.ContextIndex, first: -1, last: -1})
		}
		cur := &out[len(out)-1]
		if e.IsCaption() {
			cur.caption = true
			continue
		}
		r := rounds[e.ContextIndex]
		rounds[e.ContextIndex]++
		if cur.first < 0 {
			cur.first = r
		}
		cur.last = r
	}
	return out
}

func (r run) label() string {
	var parts []string
	if r.caption {
		parts = append(parts, "caption")
	}
	switch {
	case r.first < 0:
	case r.first == r.last:
		parts = append(parts, fmt.Sprintf("Q%d", r.first))
	default:
		parts = append(parts, fmt.Sprintf("Q%d-Q%d", r.first, r.last))
	}
	return strings.Join(parts, ", ")
}

// MergedMermaid produces a Mermaid graph LR diagram of a stitched dialog:
// one subgraph per source and one node per stretch of its turns, chained in
// stitched order.
func MergedMermaid(md *dialog.MergedDialog) string {
	segs := runs(md)

	var sb strings.Builder
	sb.WriteString("graph LR\n")
	for c := 0; c < md.Contexts(); c++ {
		name := fmt.Sprintf("context %d", c)
		if c < len(md.ImageFilename) && c < len(md.DialogIndex) {
			name = fmt.Sprintf("%s #%d", md.ImageFilename[c], md.DialogIndex[c])
		}
		fmt.Fprintf(&sb, "  subgraph C%d[\"%s\"]\n", c, name)
		for i, s := range segs {
			if s.context == c {
				fmt.Fprintf(&sb, "    S%d[\"%s\"]\n", i, s.label())
			}
		}
		sb.WriteString("  end\n")
	}
	for i := 1; i < len(segs); i++ {
		fmt.Fprintf(&sb, "  S%d --> S%d\n", i-1, i)
	}
	return sb.String()
}

// SceneMermaid produces a Mermaid graph TD diagram of one indexed dialog's
// scene: objects become nodes, relations become labelled arrows.
func SceneMermaid(ctx context.Context, store graph.Store, dialogKey string) (string, error) {
	objects, err := store.Objects(ctx, dialogKey)
	if err != nil {
		return "", fmt.Errorf("get objects: %w", err)
	}
	relations, err := store.Relations(ctx, dialogKey)
	if err != nil {
		return "", fmt.Errorf("get relations: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for _, o := range objects {
		fmt.Fprintf(&sb, "  O%d[\"#%d %s\"]\n", o.ObjectID, o.ObjectID, describe(o))
	}
	for _, r := range relations {
		fmt.Fprintf(&sb, "  O%d -- %s --> O%d\n", r.From, r.Relation, r.To)
	}
	return sb.String(), nil
}

// describe lists the revealed core attributes of an object in reading
// order, e.g. "large red metal cube".
func describe(o graph.ObjectNode) string {
	var words []string
	for _, v := range []string{o.Size, o.Color, o.Material, o.Shape} {
		if v != "" && v != scenegraph.Unknown {
			words = append(words, v)
		}
	}
	if len(words) == 0 {
		return "?"
	}
	return strings.Join(words, " ")
}
