package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewStitchMCPServer creates an MCP server with the stitch tools registered.
func NewStitchMCPServer(svc *StitchService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "stitch",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "segment_dialog",
		Description: "Replay a source dialog's scene graph and list its context recall points: the rounds where another dialog may be spliced in, with the attribute values known and focused on at each.",
	}, svc.SegmentDialog)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_compatibility",
		Description: "Check whether two or three dialogs can be stitched together. Returns every ordered pair whose known values collide with the other's focus values.",
	}, svc.CheckCompatibility)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "merge_dialogs",
		Description: "Stitch two or three compatible dialogs into one deep dialog. Two dialogs use the ABA or ABAB pattern; three use a random visit plan.",
	}, svc.MergeDialogs)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scene_graph",
		Description: "Return the final scene graph of a dialog from the scene index: its objects with revealed attributes and the relations between them.",
	}, svc.SceneGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_dialogs",
		Description: "Search the scene index for dialogs whose final scene reveals an attribute value such as a color or shape.",
	}, svc.FindDialogs)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "related_objects",
		Description: "Follow relations outward from one object of a dialog's scene. Returns the chains of object ids reachable within maxDepth hops.",
	}, svc.RelatedObjects)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP on addr until the
// context is cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
