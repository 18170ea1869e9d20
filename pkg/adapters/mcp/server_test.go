package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/mango"
	"github.com/slipstream/mango/pkg/adapters/memory"
	"github.com/slipstream/mango/pkg/graph"
	"github.com/slipstream/mango/pkg/session"
)

func newServer(t *testing.T, stdin string) (*Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	mgr := session.NewManager(store, session.WithEditorFactory(func() *mango.Editor {
		return mango.New(mango.WithStdin(strings.NewReader(stdin)))
	}))
	return NewServer(mgr), store
}

func TestServer_PullChain(t *testing.T) {
	s, _ := newServer(t, "1\n2\n3\n")
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	in, err := s.handleAddNode(ctx, req, map[string]any{"type": "standard-in"})
	require.NoError(t, err)
	assert.Equal(t, DefaultGraph, in.Graph)

	// Numbers arrive as float64 from JSON.
	var last int64 = in.NodeID
	for _, typ := range []string{"lines", "to-int", "sum"} {
		out, err := s.handleAddNode(ctx, req, map[string]any{"type": typ, "mode": "after", "selected": float64(last)})
		require.NoError(t, err)
		last = out.NodeID
	}

	res, err := s.handlePull(ctx, req, map[string]any{"id": float64(last)})
	require.NoError(t, err)
	assert.Equal(t, "Int", res.Kind)
	assert.Equal(t, "Int(6)", res.Value)

	summary, err := s.handleGetGraph(ctx, req, map[string]any{})
	require.NoError(t, err)
	assert.Len(t, summary.Nodes, 4)
	assert.Equal(t, []string{"1->2", "2->3", "3->4"}, summary.Connections)
	assert.Equal(t, []int64{4}, summary.Terminals)
}

func TestServer_EditAndHistory(t *testing.T) {
	s, store := newServer(t, "")
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	args := func(kv ...any) map[string]any {
		m := map[string]any{"graph": "g"}
		for i := 0; i < len(kv); i += 2 {
			m[kv[i].(string)] = kv[i+1]
		}
		return m
	}

	a, err := s.handleAddNode(ctx, req, args("type", "lines"))
	require.NoError(t, err)
	b, err := s.handleAddNode(ctx, req, args("type", "json-object", "label", "obj"))
	require.NoError(t, err)

	_, err = s.handleConnect(ctx, req, args("from", a.NodeID, "to", b.NodeID, "slot", "1"))
	require.NoError(t, err, "slot decodes weakly from a string")

	_, err = s.handleDisconnect(ctx, req, args("from", a.NodeID, "to", b.NodeID))
	require.NoError(t, err)

	undo, err := s.handleUndo(ctx, req, args())
	require.NoError(t, err)
	assert.True(t, undo.Applied)
	summary, err := s.handleGetGraph(ctx, req, args())
	require.NoError(t, err)
	assert.Equal(t, []string{"1->2:1"}, summary.Connections)
	assert.Equal(t, "obj", summary.Nodes[1].Label)

	redo, err := s.handleRedo(ctx, req, args())
	require.NoError(t, err)
	assert.True(t, redo.Applied)
	redo, err = s.handleRedo(ctx, req, args())
	require.NoError(t, err)
	assert.False(t, redo.Applied)

	_, err = s.handleDeleteNode(ctx, req, args("id", b.NodeID))
	require.NoError(t, err)

	_, err = s.handleSave(ctx, req, args())
	require.NoError(t, err)
	data, err := store.Load(ctx, "g")
	require.NoError(t, err)
	assert.Contains(t, string(data), "type: lines")
	assert.NotContains(t, string(data), "json-object")
}

func TestServer_Errors(t *testing.T) {
	s, _ := newServer(t, "")
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handlePull(ctx, req, map[string]any{"id": 9})
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)

	_, err = s.handleAddNode(ctx, req, map[string]any{"type": "sum", "mode": "sideways"})
	assert.Error(t, err)

	_, err = s.handleAddNode(ctx, req, map[string]any{"type": "nope"})
	assert.Error(t, err)

	_, err = s.handleSetValue(ctx, req, map[string]any{"id": "x"})
	assert.ErrorContains(t, err, "invalid arguments")

	id, err := s.handleAddNode(ctx, req, map[string]any{"type": "string-contains"})
	require.NoError(t, err)
	_, err = s.handleSetValue(ctx, req, map[string]any{"id": id.NodeID, "field": "value", "value": "ab"})
	assert.NoError(t, err)
}
