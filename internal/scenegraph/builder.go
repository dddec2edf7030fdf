package scenegraph

import "github.com/dusk-indust/stitch/internal/dialog"

// Builder keeps the ordered arena of snapshots for one dialog. Snapshot i
// is the graph after the i-th update: for a dialog, snapshot 0 follows the
// caption and snapshot r+1 follows turn r.
type Builder struct {
	empty     *Graph
	snapshots []*Graph
}

// NewBuilder returns a Builder with an empty arena.
func NewBuilder() *Builder {
	return &Builder{empty: newGraph()}
}

// Merge applies one update to a copy of the current graph, appends the
// result to the arena and returns it. A non-mergeable update still yields
// a snapshot, identical to its predecessor apart from History.
//
// On error nothing is appended and the arena is unchanged.
func (b *Builder) Merge(item dialog.GraphItem) (*Graph, error) {
	g := b.Current().clone()
	g.History = append(g.History, item)

	if item.Mergeable {
		for _, obj := range item.Objects {
			if err := g.mergeObject(obj); err != nil {
				return nil, err
			}
		}
		if item.Relation != "" {
			if err := g.addRelation(item.Relation, item.Objects); err != nil {
				return nil, err
			}
		}
	}

	b.snapshots = append(b.snapshots, g)
	return g, nil
}

// Current returns the latest snapshot, or the empty graph before the first
// Merge.
func (b *Builder) Current() *Graph {
	if len(b.snapshots) == 0 {
		return b.empty
	}
	return b.snapshots[len(b.snapshots)-1]
}

// At returns snapshot i.
func (b *Builder) At(i int) (*Graph, bool) {
	if i < 0 || i >= len(b.snapshots) {
		return nil, false
	}
	return b.snapshots[i], true
}

// Len returns the number of snapshots.
func (b *Builder) Len() int {
	return len(b.snapshots)
}

// Snapshots returns the arena in order. The slice is a copy; the graphs
// are shared and must not be modified.
func (b *Builder) Snapshots() []*Graph {
	out := make([]*Graph, len(b.snapshots))
	copy(out, b.snapshots)
	return out
}
