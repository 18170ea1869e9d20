package mango_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/mango"
	"github.com/slipstream/mango/internal/metrics"
	"github.com/slipstream/mango/pkg/commands"
	"github.com/slipstream/mango/pkg/flow"
	"github.com/slipstream/mango/pkg/graph"
	"github.com/slipstream/mango/pkg/nodes"
)

func newEditor(stdin string, opts ...mango.Option) (*mango.Editor, *bytes.Buffer) {
	var out bytes.Buffer
	opts = append([]mango.Option{
		mango.WithStdin(strings.NewReader(stdin)),
		mango.WithStdout(&out),
	}, opts...)
	return mango.New(opts...), &out
}

func TestEditor_InsertChain(t *testing.T) {
	ed, _ := newEditor("1\n2\nfoo\n3")
	in, err := ed.AddNode(nodes.TypeStandardIn, "", 0, 0)
	require.NoError(t, err)
	lines, err := ed.Insert(commands.After, nodes.TypeLines)
	require.NoError(t, err)
	toInt, err := ed.Insert(commands.After, nodes.TypeToInt)
	require.NoError(t, err)
	sum, err := ed.Insert(commands.After, nodes.TypeSum)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3, 4}, []int64{in, lines, toInt, sum})
	assert.Equal(t, flow.Int(6), ed.Pull(sum))
	assert.Equal(t, []int64{sum}, ed.Terminals())

	gn, ok := ed.Graph().GUI(lines)
	require.True(t, ok)
	assert.Equal(t, 150.0, gn.X)
}

func TestEditor_UndoRedo(t *testing.T) {
	ed, _ := newEditor("")
	_, err := ed.AddNode(nodes.TypeStandardIn, "", 0, 0)
	require.NoError(t, err)
	id, err := ed.Insert(commands.After, nodes.TypeLines)
	require.NoError(t, err)

	ok, err := ed.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, ed.Graph().Len())
	assert.Empty(t, ed.Graph().Connections())
	_, selected := ed.Selected()
	assert.False(t, selected, "selected node was undone")

	ok, err = ed.Redo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, ed.Graph().Connections(), 1)
	_, exists := ed.Graph().Node(id)
	assert.True(t, exists)
}

func TestEditor_InsertWithoutSelection(t *testing.T) {
	ed, _ := newEditor("")
	_, err := ed.Insert(commands.After, nodes.TypeLines)
	assert.ErrorIs(t, err, commands.ErrNoSelection)
	assert.Zero(t, ed.Graph().Len())

	_, err = ed.AddNode("no-such-node", "", 0, 0)
	assert.Error(t, err)
}

func TestEditor_InsertWithoutSelectionIgnoresNodeZero(t *testing.T) {
	doc := `nodes:
  - {id: 0, type: standard-in}
connections: []
`
	ed, _ := newEditor("")
	require.NoError(t, ed.Load(strings.NewReader(doc)))
	_, ok := ed.Selected()
	require.False(t, ok)

	_, err := ed.Insert(commands.After, nodes.TypeLines)
	assert.ErrorIs(t, err, commands.ErrNoSelection)
	assert.Equal(t, 1, ed.Graph().Len())
	assert.Empty(t, ed.Graph().Connections())
}

func TestEditor_FailedInsertKeepsIDs(t *testing.T) {
	ed, _ := newEditor("")
	_, err := ed.AddNode(nodes.TypeStandardIn, "", 0, 0)
	require.NoError(t, err)
	_, err = ed.Insert(commands.After, nodes.TypeLines)
	require.NoError(t, err)

	_, err = ed.Insert(commands.Substitute, nodes.TypeJSONParse)
	require.ErrorIs(t, err, commands.ErrNoDownstream)
	_, err = ed.AddNode("no-such-node", "", 0, 0)
	require.Error(t, err)

	id, err := ed.Insert(commands.After, nodes.TypeToInt)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
}

func TestEditor_SubstituteFailureLeavesGraph(t *testing.T) {
	ed, _ := newEditor("")
	_, err := ed.AddNode(nodes.TypeStandardIn, "", 0, 0)
	require.NoError(t, err)
	_, err = ed.Insert(commands.After, nodes.TypeLines)
	require.NoError(t, err)

	_, err = ed.Insert(commands.Substitute, nodes.TypeJSONParse)
	assert.ErrorIs(t, err, commands.ErrNoDownstream)
	assert.Equal(t, 2, ed.Graph().Len())
}

func TestEditor_DeleteClearsSelection(t *testing.T) {
	ed, _ := newEditor("")
	id, err := ed.AddNode(nodes.TypeSum, "", 0, 0)
	require.NoError(t, err)
	require.NoError(t, ed.Delete(id))
	_, ok := ed.Selected()
	assert.False(t, ok)
	assert.ErrorIs(t, ed.Select(id), graph.ErrNodeNotFound)
}

func TestEditor_SaveLoad(t *testing.T) {
	ed, _ := newEditor("")
	_, err := ed.AddNode(nodes.TypeLines, "keys", 0, 0)
	require.NoError(t, err)
	_, err = ed.AddNode(nodes.TypeLines, "values", 0, 100)
	require.NoError(t, err)
	obj, err := ed.AddNode(nodes.TypeJSONObject, "", 200, 50)
	require.NoError(t, err)
	require.NoError(t, ed.Connect(1, obj, nodes.SlotKeys))
	require.NoError(t, ed.Connect(2, obj, nodes.SlotValues))
	filter, err := ed.Insert(commands.Free, nodes.TypeStringContains)
	require.NoError(t, err)
	require.NoError(t, ed.SetValue(filter, "value", flow.String("x")))

	var buf bytes.Buffer
	require.NoError(t, ed.Save(&buf))
	ok, err := ed.Undo()
	require.NoError(t, err)
	assert.True(t, ok, "save is not an undo step")

	other, _ := newEditor("")
	require.NoError(t, other.Load(&buf))
	assert.Equal(t, 4, other.Graph().Len())
	assert.Len(t, other.Graph().Connections(), 2)
	n, _ := other.Graph().Node(filter)
	assert.Equal(t, flow.String("x"), n.Value("value"))
	selected, ok := other.Selected()
	require.True(t, ok)
	assert.Equal(t, filter, selected)

	undone, err := other.Undo()
	require.NoError(t, err)
	assert.False(t, undone, "load starts a fresh history")
}

func TestEditor_LoadStrictKeepsGraph(t *testing.T) {
	doc := `nodes:
  - {id: 1, type: standard-in}
connections:
  - {from: {node: 1}, to: {node: 7}}
`
	ed, _ := newEditor("")
	id, err := ed.AddNode(nodes.TypeSum, "", 0, 0)
	require.NoError(t, err)

	err = ed.Load(strings.NewReader(doc))
	assert.ErrorIs(t, err, graph.ErrDanglingConnection)
	_, ok := ed.Graph().Node(id)
	assert.True(t, ok)

	lenient, _ := newEditor("", mango.WithLenientLoad(true))
	require.NoError(t, lenient.Load(strings.NewReader(doc)))
	assert.Equal(t, 1, lenient.Graph().Len())
}

func TestEditor_Metrics(t *testing.T) {
	m := metrics.New(nil)
	ed, _ := newEditor("", mango.WithMetrics(m))
	id, err := ed.AddNode(nodes.TypeSum, "", 0, 0)
	require.NoError(t, err)
	assert.Error(t, ed.Disconnect(5, id))
	ed.Pull(id)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("create-node", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("disconnect", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PullErrors.WithLabelValues(nodes.TypeSum)))
}

func TestEditor_LogsFailedCommands(t *testing.T) {
	var logs bytes.Buffer
	ed, _ := newEditor("", mango.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	assert.Error(t, ed.Delete(3))
	assert.Contains(t, logs.String(), "Command failed")
	assert.Contains(t, logs.String(), "op=delete-node")
}
