package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/mango/pkg/commands"
	"github.com/slipstream/mango/pkg/graph"
	"github.com/slipstream/mango/pkg/nodes"
)

type edge struct{ from, to int64 }

func edges(g *graph.Graph) []edge {
	var out []edge
	for _, c := range g.Connections() {
		out = append(out, edge{c.From, c.To})
	}
	return out
}

func insert(t *testing.T, g *graph.Graph, s *commands.UndoStack, mode commands.Mode, selected int64, typ string) int64 {
	t.Helper()
	n := build(t, g, typ)
	cmd, err := commands.Insert(g, mode, selected, n, nil)
	require.NoError(t, err)
	do(t, g, s, cmd)
	return n.ID()
}

func TestInsert_After(t *testing.T) {
	g := newGraph("")
	s := commands.NewUndoStack()
	sel := add(t, g, s, nodes.TypeLines)
	id := insert(t, g, s, commands.After, sel, nodes.TypeToInt)
	assert.Equal(t, []edge{{sel, id}}, edges(g))
	assert.Equal(t, id, g.LastNode().NodeID)

	_, err := s.Undo(g)
	require.NoError(t, err)
	assert.Empty(t, edges(g))
	assert.Equal(t, 1, g.Len())
}

func TestInsert_Before(t *testing.T) {
	t.Run("with upstream", func(t *testing.T) {
		g := newGraph("")
		s := commands.NewUndoStack()
		up := add(t, g, s, nodes.TypeStandardIn)
		sel := add(t, g, s, nodes.TypeLines)
		do(t, g, s, commands.NewCreateConnection(up, sel, nodes.NoSlot))
		before := g.Connections()

		id := insert(t, g, s, commands.Before, sel, nodes.TypeJSONStringify)
		assert.Equal(t, []edge{{up, id}, {id, sel}}, edges(g))
		n, _ := g.Node(sel)
		upstream, _ := n.Input(nodes.NoSlot)
		assert.Equal(t, id, upstream)

		_, err := s.Undo(g)
		require.NoError(t, err)
		assert.Equal(t, before, g.Connections())
		assert.Equal(t, 2, g.Len())
	})

	t.Run("without upstream", func(t *testing.T) {
		g := newGraph("")
		s := commands.NewUndoStack()
		sel := add(t, g, s, nodes.TypeLines)
		id := insert(t, g, s, commands.Before, sel, nodes.TypeStandardIn)
		assert.Equal(t, []edge{{id, sel}}, edges(g))
	})

	t.Run("keeps the target slot", func(t *testing.T) {
		g := newGraph("")
		s := commands.NewUndoStack()
		keys := add(t, g, s, nodes.TypeLines)
		obj := add(t, g, s, nodes.TypeJSONObject)
		do(t, g, s, commands.NewCreateConnection(keys, obj, nodes.SlotKeys))

		id := insert(t, g, s, commands.Before, obj, nodes.TypeStringContains)
		c, ok := g.Connection(id, obj)
		require.True(t, ok)
		assert.Equal(t, nodes.SlotKeys, c.ToSlot)
	})
}

func TestInsert_Substitute(t *testing.T) {
	g := newGraph("")
	s := commands.NewUndoStack()
	in := add(t, g, s, nodes.TypeStandardIn)
	sel := add(t, g, s, nodes.TypeLines)
	out := add(t, g, s, nodes.TypeStandardOut)
	do(t, g, s, commands.NewCreateConnection(in, sel, nodes.NoSlot))
	do(t, g, s, commands.NewCreateConnection(sel, out, nodes.NoSlot))
	before := g.Connections()

	id := insert(t, g, s, commands.Substitute, sel, nodes.TypeJSONParse)
	assert.Equal(t, []edge{{in, id}, {id, out}}, edges(g))
	_, exists := g.Node(sel)
	assert.False(t, exists)
	assert.NoError(t, g.Validate())

	_, err := s.Undo(g)
	require.NoError(t, err)
	assert.Equal(t, before, g.Connections())
	_, exists = g.Node(id)
	assert.False(t, exists)
	_, exists = g.Node(sel)
	assert.True(t, exists)

	_, err = s.Redo(g)
	require.NoError(t, err)
	assert.Equal(t, []edge{{in, id}, {id, out}}, edges(g))
}

func TestInsert_SubstituteNeedsNeighbours(t *testing.T) {
	g := newGraph("")
	s := commands.NewUndoStack()
	in := add(t, g, s, nodes.TypeStandardIn)
	sel := add(t, g, s, nodes.TypeLines)
	do(t, g, s, commands.NewCreateConnection(in, sel, nodes.NoSlot))

	n := build(t, g, nodes.TypeSum)
	_, err := commands.Insert(g, commands.Substitute, sel, n, nil)
	assert.ErrorIs(t, err, commands.ErrNoDownstream)

	_, err = commands.Insert(g, commands.Substitute, in, n, nil)
	assert.ErrorIs(t, err, commands.ErrNoUpstream)
	assert.Equal(t, 2, g.Len())
	assert.Len(t, g.Connections(), 1)
}

func TestInsert_NoSelection(t *testing.T) {
	g := newGraph("")
	n := build(t, g, nodes.TypeSum)
	_, err := commands.Insert(g, commands.After, 99, n, nil)
	assert.ErrorIs(t, err, commands.ErrNoSelection)

	cmd, err := commands.Insert(g, commands.Free, 99, n, nil)
	require.NoError(t, err)
	assert.Equal(t, "create-node", cmd.Name())
}

func TestParseMode(t *testing.T) {
	for input, want := range map[string]commands.Mode{
		"after": commands.After,
		"a":     commands.After,
		"B":     commands.Before,
		"s":     commands.Substitute,
		"free":  commands.Free,
	} {
		got, err := commands.ParseMode(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
	_, err := commands.ParseMode("sideways")
	assert.Error(t, err)
	assert.Equal(t, "before", commands.Before.String())
}
