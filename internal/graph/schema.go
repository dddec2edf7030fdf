package graph

import (
	"strconv"

	"github.com/dusk-indust/stitch/internal/scenegraph"
)

// EdgeKind classifies relationships in the scene index.
type EdgeKind string

const (
	EdgeKindHasObject EdgeKind = "HAS_OBJECT"
	EdgeKindRelated   EdgeKind = "RELATED"
)

// --- Models ---

// DialogNode is a source dialog in the scene index.
type DialogNode struct {
	Key           string `json:"key"`
	ImageFilename string `json:"imageFilename"`
	ImageIndex    int    `json:"imageIndex"`
	DialogIndex   int    `json:"dialogIndex"`
	Split         string `json:"split"`
	Caption       string `json:"caption"`
	Turns         int    `json:"turns"`
	RecallPoints  int    `json:"recallPoints"`
}

// ObjectNode is one object of a dialog's final scene graph. Core
// attributes not revealed by the dialog hold scenegraph.Unknown.
type ObjectNode struct {
	DialogKey string `json:"dialogKey"`
	ObjectID  int    `json:"objectId"`
	Shape     string `json:"shape"`
	Size      string `json:"size"`
	Material  string `json:"material"`
	Color     string `json:"color"`
}

// Attributes returns the object's core attribute values keyed by name.
func (o ObjectNode) Attributes() map[string]string {
	return map[string]string{
		"shape":    o.Shape,
		"size":     o.Size,
		"material": o.Material,
		"color":    o.Color,
	}
}

// HasValue reports whether any core attribute equals v.
func (o ObjectNode) HasValue(v string) bool {
	return v != scenegraph.Unknown && (o.Shape == v || o.Size == v || o.Material == v || o.Color == v)
}

// RelationEdge states that object From stands in Relation to object To
// within one dialog's scene.
type RelationEdge struct {
	DialogKey string `json:"dialogKey"`
	Relation  string `json:"relation"`
	From      int    `json:"from"`
	To        int    `json:"to"`
}

// IndexStats summarizes a scene index.
type IndexStats struct {
	DialogCount   int `json:"dialogCount"`
	ObjectCount   int `json:"objectCount"`
	RelationCount int `json:"relationCount"`
}

// Chain is a path of object ids joined by relations, starting at the
// queried object.
type Chain struct {
	Objects []int `json:"objects"`
	Depth   int   `json:"depth"`
}

// objectKey is the primary key of an object node: "dialogKey#objectID".
func objectKey(dialogKey string, objectID int) string {
	return dialogKey + "#" + strconv.Itoa(objectID)
}
