package mcptools

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupServerClient wires an MCP server and client together using in-memory
// transports and returns the connected client session.
func setupServerClient(t *testing.T) *mcp.ClientSession {
	t.Helper()

	server := NewStitchMCPServer(newTestService(t))
	st, ct := mcp.NewInMemoryTransports()
	ctx := context.Background()

	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
	})
	return session
}

func TestMCPListTools(t *testing.T) {
	session := setupServerClient(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"check_compatibility",
		"find_dialogs",
		"merge_dialogs",
		"related_objects",
		"scene_graph",
		"segment_dialog",
	}, names)
}

func TestMCPCheckCompatibility(t *testing.T) {
	session := setupServerClient(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "check_compatibility",
		Arguments: CheckCompatibilityInput{Dialogs: refs([2]int{0, 1}, [2]int{1, 4})},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.NotNil(t, result.StructuredContent)

	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	var out CheckCompatibilityOutput
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.False(t, out.Compatible)
	assert.Len(t, out.Conflicts, 2)
}

func TestMCPUnknownDialogIsToolError(t *testing.T) {
	session := setupServerClient(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "segment_dialog",
		Arguments: SegmentDialogInput{ImageIndex: 9, DialogIndex: 9},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
