package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/dusk-indust/stitch/internal/dialog"
	"github.com/dusk-indust/stitch/internal/scenegraph"
	"github.com/dusk-indust/stitch/internal/segment"
)

// IndexDialog writes the final scene graph of a segmented dialog: one
// dialog node, one node per object and one edge per revealed relation.
// Relations are written grouped by name, then by subject id.
func IndexDialog(ctx context.Context, store Store, seg *segment.Segmented) error {
	d := seg.Dialog
	key := d.Key()
	if err := store.AddDialog(ctx, DialogNode{
		Key:           key,
		ImageFilename: d.ImageFilename,
		ImageIndex:    d.ImageIndex,
		DialogIndex:   d.DialogIndex,
		Split:         d.Split,
		Caption:       d.Caption,
		Turns:         len(d.Turns),
		RecallPoints:  len(seg.Points),
	}); err != nil {
		return fmt.Errorf("graph: add dialog %s: %w", key, err)
	}
	if len(seg.Snapshots) == 0 {
		return nil
	}

	final := seg.Snapshots[len(seg.Snapshots)-1]
	for _, id := range final.ObjectIDs() {
		if err := store.AddObject(ctx, objectNode(key, id, final.Objects[id])); err != nil {
			return fmt.Errorf("graph: add object %s#%d: %w", key, id, err)
		}
	}

	names := make([]string, 0, len(final.Relationships))
	for name := range final.Relationships {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		adj := final.Relationships[name]
		subjects := make([]int, 0, len(adj))
		for id := range adj {
			subjects = append(subjects, id)
		}
		sort.Ints(subjects)
		for _, from := range subjects {
			for _, to := range adj[from] {
				edge := RelationEdge{DialogKey: key, Relation: name, From: from, To: to}
				if err := store.AddRelation(ctx, edge); err != nil {
					return fmt.Errorf("graph: add relation %s %d->%d: %w", name, from, to, err)
				}
			}
		}
	}
	return nil
}

func objectNode(dialogKey string, id int, obj dialog.Object) ObjectNode {
	attr := func(name string) string {
		v, ok := obj[name]
		if !ok || v == nil {
			return scenegraph.Unknown
		}
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return ObjectNode{
		DialogKey: dialogKey,
		ObjectID:  id,
		Shape:     attr("shape"),
		Size:      attr("size"),
		Material:  attr("material"),
		Color:     attr("color"),
	}
}

// IndexReport counts what IndexImages wrote and skipped.
type IndexReport struct {
	Indexed  int `json:"indexed"`
	Skipped  int `json:"skipped"`
	Existing int `json:"existing"`
}

// IndexImages segments every dialog of images and indexes it. Dialogs
// whose scene graph fails an integrity check are logged and skipped, and
// dialogs already in the store are left as they are.
func IndexImages(ctx context.Context, store Store, images []dialog.Image, opts segment.Options, logger zerolog.Logger) (IndexReport, error) {
	var rep IndexReport
	if err := store.InitSchema(ctx); err != nil {
		return rep, err
	}
	for _, img := range images {
		for i := range img.Dialogs {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			d, err := img.Dialog(i)
			if err != nil {
				return rep, err
			}
			existing, err := store.GetDialog(ctx, d.Key())
			if err != nil {
				return rep, err
			}
			if existing != nil {
				rep.Existing++
				continue
			}
			seg, err := segment.Segment(d, opts)
			if err != nil {
				if !segment.IsCorrupt(err) {
					return rep, err
				}
				rep.Skipped++
				logger.Warn().Err(err).Str("dialog", d.Key()).Msg("not indexed")
				continue
			}
			if err := IndexDialog(ctx, store, seg); err != nil {
				return rep, err
			}
			rep.Indexed++
		}
	}
	return rep, nil
}
