// Package graph persists the final scene graphs of source dialogs as a
// property graph so that dialogs can be looked up by what they reveal.
package graph

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by lookups for a dialog that was never indexed.
var ErrNotFound = errors.New("graph: not found")

// Store is the interface for the scene index backend.
// Implementations: KuzuStore (cgo builds), MemStore.
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddDialog(ctx context.Context, node DialogNode) error
	AddObject(ctx context.Context, node ObjectNode) error
	AddRelation(ctx context.Context, edge RelationEdge) error

	// Read operations.
	GetDialog(ctx context.Context, key string) (*DialogNode, error)
	Objects(ctx context.Context, dialogKey string) ([]ObjectNode, error)
	Relations(ctx context.Context, dialogKey string) ([]RelationEdge, error)
	DialogsWithValue(ctx context.Context, value string, limit int) ([]string, error)

	// Traversal.
	Reachable(ctx context.Context, dialogKey string, objectID, maxDepth int) ([]Chain, error)

	// Stats.
	Stats(ctx context.Context) (*IndexStats, error)
}
