package registry_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/slipstream/mango/pkg/flow"
	"github.com/slipstream/mango/pkg/nodes"
	"github.com/slipstream/mango/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nodeMap map[int64]nodes.Node

func (m nodeMap) Node(id int64) (nodes.Node, bool) {
	n, ok := m[id]
	return n, ok
}

func (m nodeMap) add(t *testing.T, r *registry.Registry, id int64, typ string) nodes.Node {
	t.Helper()
	n, ok := r.Build(id, typ)
	require.True(t, ok, "build %s", typ)
	m[id] = n
	return n
}

func TestBuild_Catalog(t *testing.T) {
	r := registry.New()
	for i, name := range registry.CatalogTypes() {
		id := int64(i + 10)
		n, ok := r.Build(id, name)
		require.True(t, ok, name)
		assert.Equal(t, id, n.ID())
		assert.Equal(t, name, n.Spec().Type)
	}
	assert.ElementsMatch(t, registry.CatalogTypes(), r.Types())
}

func TestBuild_UnknownType(t *testing.T) {
	r := registry.New()
	n, ok := r.Build(1, "no-such-node")
	assert.False(t, ok)
	assert.Nil(t, n)

	_, err := r.MustBuild(1, "no-such-node")
	assert.ErrorIs(t, err, registry.ErrUnknownType)
}

func TestBuild_DuplicateIDsAllowed(t *testing.T) {
	r := registry.New()
	a, ok := r.Build(1, nodes.TypeSum)
	require.True(t, ok)
	b, ok := r.Build(1, nodes.TypeSum)
	require.True(t, ok)
	assert.NotSame(t, a, b)
}

func TestRegister_Custom(t *testing.T) {
	r := registry.New()
	r.Register("sum-alias", func(id int64, _ registry.Env) nodes.Node { return nodes.NewSum(id) })
	n, ok := r.Build(3, "sum-alias")
	require.True(t, ok)
	assert.Equal(t, nodes.TypeSum, n.Type())
}

func TestConnectDisconnect_RoundTrip(t *testing.T) {
	r := registry.New()
	m := nodeMap{}
	m.add(t, r, 1, nodes.TypeLines)
	sum := m.add(t, r, 2, nodes.TypeSum)

	_, before := sum.Input(nodes.NoSlot)
	require.NoError(t, r.Connect(1, nodes.NoSlot, 2, nodes.NoSlot, m))
	id, wired := sum.Input(nodes.NoSlot)
	assert.True(t, wired)
	assert.Equal(t, int64(1), id)

	require.NoError(t, r.Disconnect(2, nodes.NoSlot, m))
	_, after := sum.Input(nodes.NoSlot)
	assert.Equal(t, before, after)
}

func TestConnect_MissingNodeIsDiagnostic(t *testing.T) {
	var logs bytes.Buffer
	r := registry.New(registry.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	m := nodeMap{}
	sum := m.add(t, r, 2, nodes.TypeSum)

	err := r.Connect(99, nodes.NoSlot, 2, nodes.NoSlot, m)
	assert.ErrorIs(t, err, registry.ErrNodeNotFound)
	_, wired := sum.Input(nodes.NoSlot)
	assert.False(t, wired)
	assert.Contains(t, logs.String(), "Unable to find nodes")

	assert.ErrorIs(t, r.Disconnect(42, nodes.NoSlot, m), registry.ErrNodeNotFound)
}

func TestConnect_JSONObjectSlots(t *testing.T) {
	r := registry.New()
	m := nodeMap{}
	m.add(t, r, 1, nodes.TypeLines)
	obj := m.add(t, r, 2, nodes.TypeJSONObject)

	assert.ErrorIs(t, r.Connect(1, nodes.NoSlot, 2, nodes.NoSlot, m), nodes.ErrMissingSlot)
	assert.ErrorIs(t, r.Connect(1, nodes.NoSlot, 2, 5, m), nodes.ErrInvalidSlot)
	require.NoError(t, r.Connect(1, nodes.NoSlot, 2, nodes.SlotValues, m))

	id, ok := obj.Input(nodes.SlotValues)
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)
}

func TestPull_Pipeline(t *testing.T) {
	r := registry.New(registry.WithStdin(strings.NewReader("1\n2\nfoo\n3")))
	m := nodeMap{}
	m.add(t, r, 1, nodes.TypeStandardIn)
	m.add(t, r, 2, nodes.TypeLines)
	m.add(t, r, 3, nodes.TypeToInt)
	sum := m.add(t, r, 4, nodes.TypeSum)
	require.NoError(t, r.Connect(1, 0, 2, 0, m))
	require.NoError(t, r.Connect(2, 0, 3, 0, m))
	require.NoError(t, r.Connect(3, 0, 4, 0, m))

	assert.Equal(t, flow.Int(6), r.Pull(sum, m))
	// StandardIn replays its cache on the second pull.
	assert.Equal(t, flow.Int(6), r.Pull(sum, m))
}

func TestPull_DanglingUpstream(t *testing.T) {
	r := registry.New()
	m := nodeMap{}
	m.add(t, r, 1, nodes.TypeLines)
	sum := m.add(t, r, 2, nodes.TypeToInt)
	require.NoError(t, r.Connect(1, 0, 2, 0, m))
	delete(m, 1)

	assert.Equal(t, flow.Error(nodes.MsgNoInput), r.Pull(sum, m))
}

func TestPull_CycleGuard(t *testing.T) {
	r := registry.New()
	m := nodeMap{}
	a := m.add(t, r, 1, nodes.TypeLines)
	m.add(t, r, 2, nodes.TypeStringContains)
	require.NoError(t, r.Connect(1, 0, 2, 0, m))
	require.NoError(t, r.Connect(2, 0, 1, 0, m))

	out := r.Pull(a, m)
	msg, ok := out.ErrorMessage()
	require.True(t, ok)
	assert.Equal(t, registry.MsgCycle+" 1", msg)
}

func TestPull_FanOutIsNotACycle(t *testing.T) {
	r := registry.New(registry.WithStdin(strings.NewReader("a\nb")))
	m := nodeMap{}
	m.add(t, r, 1, nodes.TypeStandardIn)
	m.add(t, r, 2, nodes.TypeLines)
	obj := m.add(t, r, 3, nodes.TypeJSONObject)
	require.NoError(t, r.Connect(1, 0, 2, 0, m))
	require.NoError(t, r.Connect(2, 0, 3, nodes.SlotKeys, m))
	require.NoError(t, r.Connect(2, 0, 3, nodes.SlotValues, m))

	out := r.Pull(obj, m)
	require.Equal(t, flow.KindJSON, out.Kind(), out.String())
	assert.Equal(t, `Json({"a":"a","b":"b"})`, out.String())
}

type recorder struct{ types []string }

func (r *recorder) ObservePull(nodeType string, _ flow.Data) { r.types = append(r.types, nodeType) }

func TestPull_Observer(t *testing.T) {
	rec := &recorder{}
	r := registry.New(registry.WithObserver(rec), registry.WithStdin(strings.NewReader("x")))
	m := nodeMap{}
	m.add(t, r, 1, nodes.TypeStandardIn)
	lines := m.add(t, r, 2, nodes.TypeLines)
	require.NoError(t, r.Connect(1, 0, 2, 0, m))

	r.Pull(lines, m)
	assert.Equal(t, []string{nodes.TypeStandardIn, nodes.TypeLines}, rec.types)
}
