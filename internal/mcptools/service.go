// Package mcptools exposes dialog segmentation, compatibility checks,
// stitching and the scene index as MCP tools.
package mcptools

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/dusk-indust/stitch/internal/dataset"
	"github.com/dusk-indust/stitch/internal/dialog"
	"github.com/dusk-indust/stitch/internal/export"
	"github.com/dusk-indust/stitch/internal/graph"
	"github.com/dusk-indust/stitch/internal/segment"
	"github.com/dusk-indust/stitch/internal/stitch"
)

// Sentinel errors.
var (
	ErrUnknownDialog = errors.New("mcptools: unknown dialog")
	ErrIncompatible  = errors.New("mcptools: dialogs are not compatible")
)

const (
	defaultFindLimit = 20
	defaultMaxDepth  = 3
)

// StitchService holds the loaded source dialogs and their scene index.
type StitchService struct {
	dialogs map[string]*dialog.Dialog
	opts    segment.Options
	store   graph.Store
	logger  zerolog.Logger
}

// NewStitchService indexes images into store and returns a service
// answering tool calls over them.
func NewStitchService(ctx context.Context, images []dialog.Image, opts segment.Options, store graph.Store, logger zerolog.Logger) (*StitchService, error) {
	dialogs, err := dataset.Dialogs(images)
	if err != nil {
		return nil, fmt.Errorf("load dialogs: %w", err)
	}
	rep, err := graph.IndexImages(ctx, store, images, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("index scenes: %w", err)
	}
	logger.Info().
		Int("dialogs", len(dialogs)).
		Int("indexed", rep.Indexed).
		Int("skipped", rep.Skipped).
		Int("existing", rep.Existing).
		Msg("stitch service ready")
	return &StitchService{dialogs: dialogs, opts: opts, store: store, logger: logger}, nil
}

func (s *StitchService) segment(key string) (*segment.Segmented, error) {
	d, ok := s.dialogs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialog, key)
	}
	return segment.Segment(d, s.opts)
}

func (s *StitchService) group(refs []DialogRef) ([]*segment.Segmented, error) {
	if len(refs) != 2 && len(refs) != 3 {
		return nil, fmt.Errorf("%w: got %d", stitch.ErrArity, len(refs))
	}
	group := make([]*segment.Segmented, 0, len(refs))
	for _, r := range refs {
		seg, err := s.segment(r.key())
		if err != nil {
			return nil, err
		}
		group = append(group, seg)
	}
	return group, nil
}

// SegmentDialog replays a dialog's scene graph and lists its recall points.
func (s *StitchService) SegmentDialog(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SegmentDialogInput,
) (*mcp.CallToolResult, SegmentDialogOutput, error) {
	key := dialogKey(input.ImageIndex, input.DialogIndex)
	seg, err := s.segment(key)
	if err != nil {
		return nil, SegmentDialogOutput{}, err
	}

	points := make([]RecallPointView, 0, len(seg.Points))
	for _, p := range seg.Points {
		points = append(points, RecallPointView{
			Round: p.Round,
			Known: p.Known.Sorted(),
			Focus: p.Focus.Sorted(),
		})
	}
	return nil, SegmentDialogOutput{
		Key:          key,
		Turns:        len(seg.Dialog.Turns),
		RecallPoints: points,
		Transcript:   export.FormatDialog(seg, false),
	}, nil
}

// CheckCompatibility reports whether a group of dialogs can be stitched
// and, if not, which ordered pairs collide.
func (s *StitchService) CheckCompatibility(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input CheckCompatibilityInput,
) (*mcp.CallToolResult, CheckCompatibilityOutput, error) {
	group, err := s.group(input.Dialogs)
	if err != nil {
		return nil, CheckCompatibilityOutput{}, err
	}
	conflicts, err := stitch.Conflicts(group)
	if err != nil {
		return nil, CheckCompatibilityOutput{}, err
	}
	if conflicts == nil {
		conflicts = []stitch.Conflict{}
	}
	return nil, CheckCompatibilityOutput{
		Compatible: len(conflicts) == 0,
		Conflicts:  conflicts,
	}, nil
}

// MergeDialogs stitches a compatible group into one deep dialog.
func (s *StitchService) MergeDialogs(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input MergeDialogsInput,
) (*mcp.CallToolResult, MergeDialogsOutput, error) {
	pattern := stitch.PatternABAB
	if input.Pattern != "" {
		p, err := stitch.ParsePattern(input.Pattern)
		if err != nil {
			return nil, MergeDialogsOutput{}, err
		}
		pattern = p
	}

	group, err := s.group(input.Dialogs)
	if err != nil {
		return nil, MergeDialogsOutput{}, err
	}
	ok, err := stitch.Compatible(group)
	if err != nil {
		return nil, MergeDialogsOutput{}, err
	}
	if !ok {
		return nil, MergeDialogsOutput{}, ErrIncompatible
	}

	seed := input.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	merger := stitch.NewMerger(rand.New(rand.NewPCG(seed, seed)), stitch.WithPattern(pattern))
	md, err := merger.Merge(group)
	if err != nil {
		return nil, MergeDialogsOutput{}, err
	}

	s.logger.Debug().Str("label", md.Label()).Uint64("seed", seed).Msg("merged dialogs")
	return nil, MergeDialogsOutput{
		Label:      md.Label(),
		Seed:       seed,
		Merged:     *md,
		Transcript: export.FormatMerged(md),
	}, nil
}

// SceneGraph returns the indexed final scene of one dialog.
func (s *StitchService) SceneGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SceneGraphInput,
) (*mcp.CallToolResult, SceneGraphOutput, error) {
	key := dialogKey(input.ImageIndex, input.DialogIndex)
	scene, err := export.ExportScene(ctx, s.store, key)
	if err != nil {
		return nil, SceneGraphOutput{}, err
	}
	diagram, err := export.SceneMermaid(ctx, s.store, key)
	if err != nil {
		return nil, SceneGraphOutput{}, err
	}
	return nil, SceneGraphOutput{Scene: *scene, Mermaid: diagram}, nil
}

// FindDialogs lists dialogs whose final scene reveals the given value.
func (s *StitchService) FindDialogs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindDialogsInput,
) (*mcp.CallToolResult, FindDialogsOutput, error) {
	if input.Value == "" {
		return nil, FindDialogsOutput{}, fmt.Errorf("value is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultFindLimit
	}

	keys, err := s.store.DialogsWithValue(ctx, input.Value, limit)
	if err != nil {
		return nil, FindDialogsOutput{}, fmt.Errorf("find dialogs: %w", err)
	}
	nodes := make([]graph.DialogNode, 0, len(keys))
	for _, k := range keys {
		d, err := s.store.GetDialog(ctx, k)
		if err != nil {
			return nil, FindDialogsOutput{}, fmt.Errorf("get dialog %s: %w", k, err)
		}
		if d != nil {
			nodes = append(nodes, *d)
		}
	}
	return nil, FindDialogsOutput{Dialogs: nodes, Total: len(nodes)}, nil
}

// RelatedObjects follows relations outward from one object of a dialog's
// scene.
func (s *StitchService) RelatedObjects(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RelatedObjectsInput,
) (*mcp.CallToolResult, RelatedObjectsOutput, error) {
	depth := input.MaxDepth
	if depth <= 0 {
		depth = defaultMaxDepth
	}
	chains, err := s.store.Reachable(ctx, dialogKey(input.ImageIndex, input.DialogIndex), input.ObjectID, depth)
	if err != nil {
		return nil, RelatedObjectsOutput{}, fmt.Errorf("related objects: %w", err)
	}
	if chains == nil {
		chains = []graph.Chain{}
	}
	return nil, RelatedObjectsOutput{Chains: chains}, nil
}
