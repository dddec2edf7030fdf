package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu        sync.RWMutex
	dialogs   map[string]DialogNode
	objects   map[string][]ObjectNode   // key: dialog key, insertion order
	relations map[string][]RelationEdge // key: dialog key, insertion order
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		dialogs:   make(map[string]DialogNode),
		objects:   make(map[string][]ObjectNode),
		relations: make(map[string][]RelationEdge),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddDialog stores a dialog node keyed by its key.
func (m *MemStore) AddDialog(_ context.Context, node DialogNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialogs[node.Key] = node
	return nil
}

// AddObject stores an object under its dialog, which must already exist.
func (m *MemStore) AddObject(_ context.Context, node ObjectNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dialogs[node.DialogKey]; !ok {
		return fmt.Errorf("%w: dialog %s", ErrNotFound, node.DialogKey)
	}
	m.objects[node.DialogKey] = append(m.objects[node.DialogKey], node)
	return nil
}

// AddRelation appends a relation under its dialog, which must already exist.
func (m *MemStore) AddRelation(_ context.Context, edge RelationEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dialogs[edge.DialogKey]; !ok {
		return fmt.Errorf("%w: dialog %s", ErrNotFound, edge.DialogKey)
	}
	m.relations[edge.DialogKey] = append(m.relations[edge.DialogKey], edge)
	return nil
}

// GetDialog returns the dialog for key, or nil if not found.
func (m *MemStore) GetDialog(_ context.Context, key string) (*DialogNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.dialogs[key]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// Objects returns the objects of a dialog ordered by object id.
func (m *MemStore) Objects(_ context.Context, dialogKey string) ([]ObjectNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]ObjectNode(nil), m.objects[dialogKey]...)
	sort.Slice(out, func(i, j int) bool { return out[i].ObjectID < out[j].ObjectID })
	return out, nil
}

// Relations returns the relations of a dialog in insertion order.
func (m *MemStore) Relations(_ context.Context, dialogKey string) ([]RelationEdge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RelationEdge(nil), m.relations[dialogKey]...), nil
}

// DialogsWithValue returns, in key order, the dialogs with an object
// carrying value as a core attribute, up to limit results. A limit <= 0
// returns all matches.
func (m *MemStore) DialogsWithValue(_ context.Context, value string, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for key, objs := range m.objects {
		for _, o := range objs {
			if o.HasValue(value) {
				keys = append(keys, key)
				break
			}
		}
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys, nil
}

// Reachable performs a BFS along relations from objectID within one
// dialog, up to maxDepth hops. It returns one Chain per reachable object.
func (m *MemStore) Reachable(_ context.Context, dialogKey string, objectID, maxDepth int) ([]Chain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if maxDepth <= 0 {
		return nil, nil
	}
	rels := m.relations[dialogKey]
	return bfs(objectID, maxDepth, func(id int) ([]int, error) {
		var out []int
		for _, r := range rels {
			if r.From == id {
				out = append(out, r.To)
			}
		}
		return out, nil
	})
}

// Stats returns counts of all node and edge types in the index.
func (m *MemStore) Stats(_ context.Context) (*IndexStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := &IndexStats{DialogCount: len(m.dialogs)}
	for _, objs := range m.objects {
		st.ObjectCount += len(objs)
	}
	for _, rels := range m.relations {
		st.RelationCount += len(rels)
	}
	return st, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

// bfs walks neighbors level by level from start, visiting each object once.
func bfs(start, maxDepth int, neighbors func(int) ([]int, error)) ([]Chain, error) {
	type entry struct {
		id   int
		path []int
	}
	visited := map[int]bool{start: true}
	queue := []entry{{id: start, path: []int{start}}}
	var chains []Chain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []entry
		for _, e := range queue {
			nbs, err := neighbors(e.id)
			if err != nil {
				return nil, err
			}
			for _, nb := range nbs {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				path := make([]int, len(e.path), len(e.path)+1)
				copy(path, e.path)
				path = append(path, nb)
				chains = append(chains, Chain{Objects: path, Depth: len(path) - 1})
				next = append(next, entry{id: nb, path: path})
			}
		}
		queue = next
	}
	return chains, nil
}
