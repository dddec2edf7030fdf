package export

import (
	"context"
	"fmt"
	"time"

	"github.com/dusk-indust/stitch/internal/graph"
)

// SceneExport is the JSON document for one indexed dialog.
type SceneExport struct {
	ExportedAt string               `json:"exportedAt"`
	Dialog     graph.DialogNode     `json:"dialog"`
	Objects    []graph.ObjectNode   `json:"objects"`
	Relations  []graph.RelationEdge `json:"relations"`
}

// ExportScene reads one dialog's scene from the index.
func ExportScene(ctx context.Context, store graph.Store, dialogKey string) (*SceneExport, error) {
	d, err := store.GetDialog(ctx, dialogKey)
	if err != nil {
		return nil, fmt.Errorf("get dialog: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("%w: dialog %s", graph.ErrNotFound, dialogKey)
	}
	objects, err := store.Objects(ctx, dialogKey)
	if err != nil {
		return nil, fmt.Errorf("get objects: %w", err)
	}
	relations, err := store.Relations(ctx, dialogKey)
	if err != nil {
		return nil, fmt.Errorf("get relations: %w", err)
	}
	if objects == nil {
		objects = []graph.ObjectNode{}
	}
	if relations == nil {
		relations = []graph.RelationEdge{}
	}
	return &SceneExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Dialog:     *d,
		Objects:    objects,
		Relations:  relations,
	}, nil
}
