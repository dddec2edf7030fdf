//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the directory itself for new databases.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// KuzuDB creates the leaf directory only.
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	db, err := kuzu.OpenDatabase(path, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Dialog(
		dialog_key STRING,
		image_filename STRING,
		image_index INT64,
		dialog_index INT64,
		split STRING,
		caption STRING,
		turns INT64,
		recall_points INT64,
		PRIMARY KEY(dialog_key)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Object(
		id STRING,
		dialog_key STRING,
		object_id INT64,
		shape STRING,
		size STRING,
		material STRING,
		color STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS HAS_OBJECT(FROM Dialog TO Object)`,
	`CREATE REL TABLE IF NOT EXISTS RELATED(FROM Object TO Object, relation STRING, seq INT64)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddDialog inserts a Dialog node.
func (s *KuzuStore) AddDialog(_ context.Context, node DialogNode) error {
	return s.exec(
		`CREATE (d:Dialog {
			dialog_key: $key,
			image_filename: $file,
			image_index: $img,
			dialog_index: $idx,
			split: $split,
			caption: $caption,
			turns: $turns,
			recall_points: $points
		})`,
		map[string]any{
			"key":     node.Key,
			"file":    node.ImageFilename,
			"img":     int64(node.ImageIndex),
			"idx":     int64(node.DialogIndex),
			"split":   node.Split,
			"caption": node.Caption,
			"turns":   int64(node.Turns),
			"points":  int64(node.RecallPoints),
		},
	)
}

// AddObject inserts an Object node and links it to its dialog.
func (s *KuzuStore) AddObject(ctx context.Context, node ObjectNode) error {
	if err := s.requireDialog(ctx, node.DialogKey); err != nil {
		return err
	}
	id := objectKey(node.DialogKey, node.ObjectID)
	err := s.exec(
		`CREATE (o:Object {
			id: $id,
			dialog_key: $dk,
			object_id: $oid,
			shape: $shape,
			size: $size,
			material: $material,
			color: $color
		})`,
		map[string]any{
			"id":       id,
			"dk":       node.DialogKey,
			"oid":      int64(node.ObjectID),
			"shape":    node.Shape,
			"size":     node.Size,
			"material": node.Material,
			"color":    node.Color,
		},
	)
	if err != nil {
		return err
	}
	return s.exec(
		`MATCH (d:Dialog {dialog_key: $dk}), (o:Object {id: $id})
		 CREATE (d)-[:HAS_OBJECT]->(o)`,
		map[string]any{"dk": node.DialogKey, "id": id},
	)
}

// AddRelation links two objects of the same dialog. seq preserves the
// insertion order so repeated relations read back in order.
func (s *KuzuStore) AddRelation(ctx context.Context, edge RelationEdge) error {
	if err := s.requireDialog(ctx, edge.DialogKey); err != nil {
		return err
	}
	n, err := s.countRelations(edge.DialogKey)
	if err != nil {
		return err
	}
	return s.exec(
		`MATCH (a:Object {id: $src}), (b:Object {id: $dst})
		 CREATE (a)-[:RELATED {relation: $rel, seq: $seq}]->(b)`,
		map[string]any{
			"src": objectKey(edge.DialogKey, edge.From),
			"dst": objectKey(edge.DialogKey, edge.To),
			"rel": edge.Relation,
			"seq": int64(n),
		},
	)
}

func (s *KuzuStore) requireDialog(ctx context.Context, key string) error {
	d, err := s.GetDialog(ctx, key)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("%w: dialog %s", ErrNotFound, key)
	}
	return nil
}

// ---------- Read operations ----------

// GetDialog retrieves a single Dialog node by key, or returns nil if not found.
func (s *KuzuStore) GetDialog(_ context.Context, key string) (*DialogNode, error) {
	rows, err := s.query(
		`MATCH (d:Dialog {dialog_key: $key})
		 RETURN d.dialog_key, d.image_filename, d.image_index, d.dialog_index,
		        d.split, d.caption, d.turns, d.recall_points`,
		map[string]any{"key": key},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	return &DialogNode{
		Key:           toString(r[0]),
		ImageFilename: toString(r[1]),
		ImageIndex:    toInt(r[2]),
		DialogIndex:   toInt(r[3]),
		Split:         toString(r[4]),
		Caption:       toString(r[5]),
		Turns:         toInt(r[6]),
		RecallPoints:  toInt(r[7]),
	}, nil
}

// Objects returns the objects of a dialog ordered by object id.
func (s *KuzuStore) Objects(_ context.Context, dialogKey string) ([]ObjectNode, error) {
	rows, err := s.query(
		`MATCH (d:Dialog {dialog_key: $dk})-[:HAS_OBJECT]->(o:Object)
		 RETURN o.object_id, o.shape, o.size, o.material, o.color
		 ORDER BY o.object_id`,
		map[string]any{"dk": dialogKey},
	)
	if err != nil {
		return nil, err
	}
	out := make([]ObjectNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, ObjectNode{
			DialogKey: dialogKey,
			ObjectID:  toInt(r[0]),
			Shape:     toString(r[1]),
			Size:      toString(r[2]),
			Material:  toString(r[3]),
			Color:     toString(r[4]),
		})
	}
	return out, nil
}

// Relations returns the relations of a dialog in insertion order.
func (s *KuzuStore) Relations(_ context.Context, dialogKey string) ([]RelationEdge, error) {
	rows, err := s.query(
		`MATCH (a:Object)-[r:RELATED]->(b:Object)
		 WHERE a.dialog_key = $dk
		 RETURN r.relation, a.object_id, b.object_id
		 ORDER BY r.seq`,
		map[string]any{"dk": dialogKey},
	)
	if err != nil {
		return nil, err
	}
	out := make([]RelationEdge, 0, len(rows))
	for _, r := range rows {
		out = append(out, RelationEdge{
			DialogKey: dialogKey,
			Relation:  toString(r[0]),
			From:      toInt(r[1]),
			To:        toInt(r[2]),
		})
	}
	return out, nil
}

// DialogsWithValue returns, in key order, the dialogs with an object
// carrying value as a core attribute.
func (s *KuzuStore) DialogsWithValue(_ context.Context, value string, limit int) ([]string, error) {
	cypher := `MATCH (d:Dialog)-[:HAS_OBJECT]->(o:Object)
		 WHERE o.shape = $v OR o.size = $v OR o.material = $v OR o.color = $v
		 RETURN DISTINCT d.dialog_key AS k ORDER BY k`
	params := map[string]any{"v": value}
	if limit > 0 {
		cypher += " LIMIT $lim"
		params["lim"] = int64(limit)
	}
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	return out, nil
}

// ---------- Traversal ----------

// Reachable performs a BFS over RELATED edges starting from objectID.
// It returns one Chain per reachable object.
func (s *KuzuStore) Reachable(_ context.Context, dialogKey string, objectID, maxDepth int) ([]Chain, error) {
	if maxDepth <= 0 {
		return nil, nil
	}
	return bfs(objectID, maxDepth, func(id int) ([]int, error) {
		rows, err := s.query(
			`MATCH (a:Object {id: $id})-[r:RELATED]->(b:Object)
			 RETURN b.object_id ORDER BY r.seq`,
			map[string]any{"id": objectKey(dialogKey, id)},
		)
		if err != nil {
			return nil, err
		}
		out := make([]int, 0, len(rows))
		for _, r := range rows {
			out = append(out, toInt(r[0]))
		}
		return out, nil
	})
}

// ---------- Stats ----------

// Stats returns counts of all node and edge tables.
func (s *KuzuStore) Stats(_ context.Context) (*IndexStats, error) {
	dialogs, err := s.count("MATCH (n:Dialog) RETURN count(n)", nil)
	if err != nil {
		return nil, err
	}
	objects, err := s.count("MATCH (n:Object) RETURN count(n)", nil)
	if err != nil {
		return nil, err
	}
	relations, err := s.count("MATCH ()-[r:RELATED]->() RETURN count(r)", nil)
	if err != nil {
		return nil, err
	}
	return &IndexStats{
		DialogCount:   dialogs,
		ObjectCount:   objects,
		RelationCount: relations,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value count query.
func (s *KuzuStore) count(cypher string, params map[string]any) (int, error) {
	rows, err := s.query(cypher, params)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

func (s *KuzuStore) countRelations(dialogKey string) (int, error) {
	return s.count(
		`MATCH (a:Object)-[r:RELATED]->() WHERE a.dialog_key = $dk RETURN count(r)`,
		map[string]any{"dk": dialogKey},
	)
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
