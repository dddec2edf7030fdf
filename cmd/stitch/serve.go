package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/stitch/internal/dataset"
	"github.com/dusk-indust/stitch/internal/graph"
	"github.com/dusk-indust/stitch/internal/mcptools"
)

func newServeMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Run stitch as an MCP server over stdio or HTTP",
		Long: `Load --input, index its scenes and serve the stitch tools over stdio
(or streamable HTTP with --http):

  segment_dialog       recall points of one dialog
  check_compatibility  whether a group can be stitched, and why not
  merge_dialogs        stitch a compatible group
  scene_graph          final scene of one dialog
  find_dialogs         dialogs whose scene reveals a value
  related_objects      objects reachable along relations`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			input, _ := cmd.Flags().GetString("input")
			dbPath, _ := cmd.Flags().GetString("db")
			addr, _ := cmd.Flags().GetString("http")

			images, err := dataset.LoadImages(input)
			if err != nil {
				return err
			}
			store, err := graph.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer store.Close()

			ctx, stop := interruptible(cmd.Context())
			defer stop()

			svc, err := mcptools.NewStitchService(ctx, images, e.cfg.SegmentOptions(), store, e.logger)
			if err != nil {
				return err
			}
			server := mcptools.NewStitchMCPServer(svc)
			if addr != "" {
				e.logger.Info().Str("addr", addr).Msg("serving MCP over HTTP")
				err = mcptools.RunHTTP(ctx, server, addr)
			} else {
				err = mcptools.RunStdio(ctx, server)
			}
			if err != nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("input", "", "source dialogs (JSON array of images)")
	cmd.Flags().String("db", "", "KuzuDB directory for the scene index (default: in memory)")
	cmd.Flags().String("http", "", "serve streamable HTTP on this address instead of stdio")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
