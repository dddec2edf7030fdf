// Package scenegraph accumulates the scene description revealed by a
// dialog, one immutable snapshot per caption and turn.
package scenegraph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dusk-indust/stitch/internal/dialog"
	"github.com/google/go-cmp/cmp"
)

// Unknown is the placeholder value for an attribute that was not revealed.
const Unknown = "N/A"

// CoreAttributes are the attribute keys that make up the known set.
var CoreAttributes = []string{"shape", "size", "material", "color"}

// ErrIntegrity marks an update that contradicts the accumulated graph.
var ErrIntegrity = errors.New("scenegraph: integrity violation")

// IntegrityError reports an attribute whose recorded value an update tried
// to change.
type IntegrityError struct {
	ObjectID int
	Attr     string
	Existing any
	Incoming any
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("scenegraph: object %d attribute %q: recorded %v, update says %v",
		e.ObjectID, e.Attr, e.Existing, e.Incoming)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }

// Graph is the accumulated scene state after some number of updates.
// A published Graph is never modified; treat its maps as read-only.
type Graph struct {
	// Objects maps object id to its known attributes.
	Objects map[int]dialog.Object
	// Relationships maps relation name to subject id to related ids, in the
	// order the relations were revealed. Repeats are kept.
	Relationships map[string]map[int][]int
	// History holds every update consumed to build this graph.
	History []dialog.GraphItem
}

func newGraph() *Graph {
	return &Graph{
		Objects:       make(map[int]dialog.Object),
		Relationships: make(map[string]map[int][]int),
	}
}

// clone returns a copy sharing no maps or slices with g.
func (g *Graph) clone() *Graph {
	out := &Graph{
		Objects:       make(map[int]dialog.Object, len(g.Objects)),
		Relationships: make(map[string]map[int][]int, len(g.Relationships)),
		History:       make([]dialog.GraphItem, len(g.History), len(g.History)+1),
	}
	for id, obj := range g.Objects {
		out.Objects[id] = obj.Clone()
	}
	for rel, adj := range g.Relationships {
		cp := make(map[int][]int, len(adj))
		for id, targets := range adj {
			cp[id] = append([]int(nil), targets...)
		}
		out.Relationships[rel] = cp
	}
	copy(out.History, g.History)
	return out
}

// ObjectIDs returns the ids of known objects in ascending order.
func (g *Graph) ObjectIDs() []int {
	ids := make([]int, 0, len(g.Objects))
	for id := range g.Objects {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// KnownAttributes returns the distinct core attribute values across all
// objects in g. Absent attributes and the Unknown placeholder are excluded.
func KnownAttributes(g *Graph) AttrSet {
	known := make(AttrSet)
	for _, obj := range g.Objects {
		for _, key := range CoreAttributes {
			v, ok := obj[key]
			if !ok || v == nil {
				continue
			}
			s, isString := v.(string)
			if !isString {
				s = fmt.Sprint(v)
			}
			if s == Unknown {
				continue
			}
			known.Add(s)
		}
	}
	return known
}

// mergeObject folds obj into g, rejecting any attribute whose value differs
// from the one already recorded.
func (g *Graph) mergeObject(obj dialog.Object) error {
	id, err := obj.ID()
	if err != nil {
		return fmt.Errorf("scenegraph: %w", err)
	}
	existing, ok := g.Objects[id]
	if !ok {
		g.Objects[id] = obj.Clone()
		return nil
	}

	attrs := make([]string, 0, len(obj))
	for attr := range obj {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	for _, attr := range attrs {
		old, has := existing[attr]
		if has && !cmp.Equal(old, obj[attr]) {
			return &IntegrityError{ObjectID: id, Attr: attr, Existing: old, Incoming: obj[attr]}
		}
	}
	for _, attr := range attrs {
		existing[attr] = obj[attr]
	}
	return nil
}

// addRelation records that objects[0] is related to objects[1].
func (g *Graph) addRelation(rel string, objects []dialog.Object) error {
	if len(objects) < 2 {
		return fmt.Errorf("%w: relation %q names %d objects, want 2", ErrIntegrity, rel, len(objects))
	}
	src, err := objects[0].ID()
	if err != nil {
		return fmt.Errorf("scenegraph: relation %q: %w", rel, err)
	}
	dst, err := objects[1].ID()
	if err != nil {
		return fmt.Errorf("scenegraph: relation %q: %w", rel, err)
	}
	adj, ok := g.Relationships[rel]
	if !ok {
		adj = make(map[int][]int)
		g.Relationships[rel] = adj
	}
	adj[src] = append(adj[src], dst)
	return nil
}
