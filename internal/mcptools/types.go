package mcptools

import (
	"github.com/dusk-indust/stitch/internal/dialog"
	"github.com/dusk-indust/stitch/internal/export"
	"github.com/dusk-indust/stitch/internal/graph"
	"github.com/dusk-indust/stitch/internal/stitch"
)

// --- MCP Tool Input Types ---
// The MCP Go SDK derives each tool's JSON schema from these struct tags.

// DialogRef identifies one source dialog.
type DialogRef struct {
	ImageIndex  int `json:"imageIndex" jsonschema:"image_index of the source image"`
	DialogIndex int `json:"dialogIndex" jsonschema:"position of the dialog within its image"`
}

func (r DialogRef) key() string {
	return dialogKey(r.ImageIndex, r.DialogIndex)
}

func dialogKey(imageIndex, dialogIndex int) string {
	return (&dialog.Dialog{ImageIndex: imageIndex, DialogIndex: dialogIndex}).Key()
}

// SegmentDialogInput is the input for the segment_dialog MCP tool.
type SegmentDialogInput struct {
	ImageIndex  int `json:"imageIndex" jsonschema:"image_index of the source image"`
	DialogIndex int `json:"dialogIndex" jsonschema:"position of the dialog within its image"`
}

// RecallPointView is a recall point with its attribute sets listed in
// sorted order.
type RecallPointView struct {
	Round int      `json:"round"`
	Known []string `json:"known"`
	Focus []string `json:"focus"`
}

// SegmentDialogOutput is the result of the segment_dialog MCP tool.
type SegmentDialogOutput struct {
	Key          string            `json:"key"`
	Turns        int               `json:"turns"`
	RecallPoints []RecallPointView `json:"recallPoints"`
	Transcript   string            `json:"transcript"`
}

// CheckCompatibilityInput is the input for the check_compatibility MCP tool.
type CheckCompatibilityInput struct {
	Dialogs []DialogRef `json:"dialogs" jsonschema:"two or three dialogs to check as one merge group"`
}

// CheckCompatibilityOutput is the result of the check_compatibility MCP tool.
type CheckCompatibilityOutput struct {
	Compatible bool              `json:"compatible"`
	Conflicts  []stitch.Conflict `json:"conflicts"`
}

// MergeDialogsInput is the input for the merge_dialogs MCP tool.
type MergeDialogsInput struct {
	Dialogs []DialogRef `json:"dialogs" jsonschema:"two or three compatible dialogs, in merge-group order"`
	Seed    uint64      `json:"seed,omitempty" jsonschema:"random seed for split rounds and visit order (default: random)"`
	Pattern string      `json:"pattern,omitempty" jsonschema:"two-dialog pattern: ABA or ABAB (default: ABAB)"`
}

// MergeDialogsOutput is the result of the merge_dialogs MCP tool.
type MergeDialogsOutput struct {
	Label      string              `json:"label"`
	Seed       uint64              `json:"seed"`
	Merged     dialog.MergedDialog `json:"merged"`
	Transcript string              `json:"transcript"`
}

// SceneGraphInput is the input for the scene_graph MCP tool.
type SceneGraphInput struct {
	ImageIndex  int `json:"imageIndex" jsonschema:"image_index of the source image"`
	DialogIndex int `json:"dialogIndex" jsonschema:"position of the dialog within its image"`
}

// SceneGraphOutput is the result of the scene_graph MCP tool.
type SceneGraphOutput struct {
	Scene   export.SceneExport `json:"scene"`
	Mermaid string             `json:"mermaid"`
}

// FindDialogsInput is the input for the find_dialogs MCP tool.
type FindDialogsInput struct {
	Value string `json:"value" jsonschema:"attribute value to look for, e.g. red or cube"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// FindDialogsOutput is the result of the find_dialogs MCP tool.
type FindDialogsOutput struct {
	Dialogs []graph.DialogNode `json:"dialogs"`
	Total   int                `json:"total"`
}

// RelatedObjectsInput is the input for the related_objects MCP tool.
type RelatedObjectsInput struct {
	ImageIndex  int `json:"imageIndex" jsonschema:"image_index of the source image"`
	DialogIndex int `json:"dialogIndex" jsonschema:"position of the dialog within its image"`
	ObjectID int `json:"objectId" jsonschema:"object id within the dialog's scene"`
	MaxDepth int `json:"maxDepth,omitempty" jsonschema:"maximum relation hops (default: 3)"`
}

// RelatedObjectsOutput is the result of the related_objects MCP tool.
type RelatedObjectsOutput struct {
	Chains []graph.Chain `json:"chains"`
}
