package nodes_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/slipstream/mango/pkg/flow"
	"github.com/slipstream/mango/pkg/nodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource answers pulls from a fixed table.
type stubSource map[int64]flow.Data

func (s stubSource) Pull(id int64) flow.Data {
	if d, ok := s[id]; ok {
		return d
	}
	return flow.Error(nodes.MsgNoInput)
}

// feed wires a single-input node to upstream id 1 answering with in.
func feed(t *testing.T, n nodes.Node, in flow.Data) flow.Data {
	t.Helper()
	require.NoError(t, n.SetInput(nodes.NewLines(1), nodes.NoSlot))
	return n.Pull(stubSource{1: in})
}

func TestLines(t *testing.T) {
	t.Run("splits lines", func(t *testing.T) {
		out := feed(t, nodes.NewLines(2), flow.String("a\nb\nc"))
		assert.Equal(t, flow.StringArray([]string{"a", "b", "c"}), out)
	})

	t.Run("empty string yields empty array", func(t *testing.T) {
		out := feed(t, nodes.NewLines(2), flow.String(""))
		lines, ok := out.AsStringArray()
		require.True(t, ok)
		assert.Empty(t, lines)
	})

	t.Run("trailing newline and carriage returns", func(t *testing.T) {
		out := feed(t, nodes.NewLines(2), flow.String("a\r\n\nb\n"))
		assert.Equal(t, flow.StringArray([]string{"a", "", "b"}), out)
	})

	t.Run("wrong variant", func(t *testing.T) {
		out := feed(t, nodes.NewLines(2), flow.Int(3))
		assert.Equal(t, flow.Error(nodes.MsgUnknownData), out)
	})

	t.Run("upstream error forwarded verbatim", func(t *testing.T) {
		out := feed(t, nodes.NewLines(2), flow.Error("boom"))
		assert.Equal(t, flow.Error("boom"), out)
	})

	t.Run("no input", func(t *testing.T) {
		out := nodes.NewLines(2).Pull(stubSource{})
		assert.Equal(t, flow.Error(nodes.MsgNoInput), out)
	})
}

func TestStringContains(t *testing.T) {
	n := nodes.NewStringContains(2, "bc")
	out := feed(t, n, flow.StringArray([]string{"abc", "xyz", "bcd", "BC"}))
	assert.Equal(t, flow.StringArray([]string{"abc", "bcd"}), out)

	t.Run("empty filter keeps everything", func(t *testing.T) {
		out := feed(t, nodes.NewStringContains(3, ""), flow.StringArray([]string{"a", "b"}))
		assert.Equal(t, flow.StringArray([]string{"a", "b"}), out)
	})

	t.Run("pattern is not a regex", func(t *testing.T) {
		out := feed(t, nodes.NewStringContains(3, "a.c"), flow.StringArray([]string{"abc", "a.c"}))
		assert.Equal(t, flow.StringArray([]string{"a.c"}), out)
	})

	t.Run("editable value", func(t *testing.T) {
		ui := n.UI()
		require.Len(t, ui.Fields, 1)
		assert.Equal(t, "value", ui.Fields[0].Name)

		require.NoError(t, n.SetValue("value", flow.String("xy")))
		assert.Equal(t, flow.String("xy"), n.Value("value"))

		assert.ErrorIs(t, n.SetValue("other", flow.String("x")), nodes.ErrUnknownField)
		assert.ErrorIs(t, n.SetValue("value", flow.Int(1)), nodes.ErrFieldType)
	})

	t.Run("spec carries value", func(t *testing.T) {
		spec := nodes.NewStringContains(9, "needle").Spec()
		attr, ok := spec.Attribute("value")
		require.True(t, ok)
		assert.Equal(t, "needle", attr.Value())
	})
}

func TestToIntAndSum(t *testing.T) {
	ints := feed(t, nodes.NewToInt(2), flow.StringArray([]string{"1", "2", "foo", "3", " 4"}))
	assert.Equal(t, flow.IntArray([]int64{1, 2, 3}), ints)

	sum := feed(t, nodes.NewSum(3), ints)
	assert.Equal(t, flow.Int(6), sum)

	assert.Equal(t, flow.Error(nodes.MsgUnknownData), feed(t, nodes.NewSum(3), flow.StringArray(nil)))
	assert.Equal(t, flow.Error(nodes.MsgUnknownData), feed(t, nodes.NewToInt(3), flow.String("1")))
}

func TestJSONNodes(t *testing.T) {
	t.Run("parse and keys", func(t *testing.T) {
		parsed := feed(t, nodes.NewJSONParse(2), flow.String(`{"b": 1, "a": 2}`))
		require.Equal(t, flow.KindJSON, parsed.Kind())

		keys := feed(t, nodes.NewJSONKeys(3), parsed)
		assert.Equal(t, flow.StringArray([]string{"b", "a"}), keys)
	})

	t.Run("parse failure", func(t *testing.T) {
		out := feed(t, nodes.NewJSONParse(2), flow.String(`{nope`))
		assert.Equal(t, flow.Error(nodes.MsgParseJSON), out)
	})

	t.Run("stringify", func(t *testing.T) {
		parsed := feed(t, nodes.NewJSONParse(2), flow.String(`{ "x" : [1, 2] }`))
		out := feed(t, nodes.NewJSONStringify(3), parsed)
		assert.Equal(t, flow.String(`{"x":[1,2]}`), out)

		assert.Equal(t, flow.Error(nodes.MsgUnknownData), feed(t, nodes.NewJSONStringify(3), flow.String("{}")))
	})

	t.Run("keys of non-object", func(t *testing.T) {
		parsed := feed(t, nodes.NewJSONParse(2), flow.String(`[1, 2]`))
		out := feed(t, nodes.NewJSONKeys(3), parsed)
		lines, ok := out.AsStringArray()
		require.True(t, ok)
		assert.Empty(t, lines)
	})
}

func TestJSONObject(t *testing.T) {
	keysNode, valuesNode := nodes.NewLines(1), nodes.NewLines(2)

	wire := func(t *testing.T) *nodes.JSONObject {
		n := nodes.NewJSONObject(3)
		require.NoError(t, n.SetInput(keysNode, nodes.SlotKeys))
		require.NoError(t, n.SetInput(valuesNode, nodes.SlotValues))
		return n
	}

	t.Run("zips keys and values", func(t *testing.T) {
		out := wire(t).Pull(stubSource{
			1: flow.StringArray([]string{"a", "b", "c"}),
			2: flow.StringArray([]string{"1", "2"}),
		})
		v, ok := out.AsJSON()
		require.True(t, ok)
		text, err := flow.StringifyJSON(v)
		require.NoError(t, err)
		assert.Equal(t, `{"a":"1","b":"2"}`, text)
	})

	t.Run("upstream error propagates", func(t *testing.T) {
		out := wire(t).Pull(stubSource{
			1: flow.Error("x"),
			2: flow.StringArray([]string{"1"}),
		})
		assert.Equal(t, flow.Error("x"), out)
	})

	t.Run("wrong variant", func(t *testing.T) {
		out := wire(t).Pull(stubSource{1: flow.String("a"), 2: flow.StringArray(nil)})
		assert.Equal(t, flow.Error(nodes.MsgIncorrectInputs), out)
	})

	t.Run("missing input", func(t *testing.T) {
		n := nodes.NewJSONObject(3)
		require.NoError(t, n.SetInput(keysNode, nodes.SlotKeys))
		assert.Equal(t, flow.Error(nodes.MsgInsufficientInputs), n.Pull(stubSource{}))
	})

	t.Run("slot validation leaves inputs untouched", func(t *testing.T) {
		n := wire(t)
		assert.ErrorIs(t, n.SetInput(nil, nodes.NoSlot), nodes.ErrMissingSlot)
		assert.ErrorIs(t, n.SetInput(nil, 7), nodes.ErrInvalidSlot)

		id, ok := n.Input(nodes.SlotKeys)
		assert.True(t, ok)
		assert.Equal(t, int64(1), id)
	})
}

func TestStandardIn_CachesFirstRead(t *testing.T) {
	n := nodes.NewStandardIn(1, strings.NewReader("hello"))
	assert.Equal(t, flow.String("hello"), n.Pull(nil))
	assert.Equal(t, flow.String("hello"), n.Pull(nil))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("closed") }

func TestStandardIn_ReadFailure(t *testing.T) {
	n := nodes.NewStandardIn(1, failingReader{})
	assert.Equal(t, flow.Error(nodes.MsgReadStdin), n.Pull(nil))
}

func TestStandardOut(t *testing.T) {
	tests := []struct {
		name string
		in   flow.Data
		want string
	}{
		{"lines", flow.StringArray([]string{"a", "b"}), "a\nb\n"},
		{"text", flow.String("hi"), "hi\n"},
		{"other", flow.Int(6), "Int(6)\n"},
		{"error", flow.Error("bad"), "Error(\"bad\")\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			out := feed(t, nodes.NewStandardOut(2, &buf), tt.in)
			assert.True(t, out.IsNone())
			assert.Equal(t, tt.want, buf.String())
		})
	}

	t.Run("no input", func(t *testing.T) {
		var buf bytes.Buffer
		out := nodes.NewStandardOut(2, &buf).Pull(stubSource{})
		assert.Equal(t, flow.Error(nodes.MsgNoInput), out)
		assert.Empty(t, buf.String())
	})
}

func TestSingleInput_IgnoresSlot(t *testing.T) {
	n := nodes.NewSum(2)
	require.NoError(t, n.SetInput(nodes.NewToInt(5), 42))
	id, ok := n.Input(nodes.NoSlot)
	assert.True(t, ok)
	assert.Equal(t, int64(5), id)

	require.NoError(t, n.SetInput(nil, nodes.NoSlot))
	_, ok = n.Input(nodes.NoSlot)
	assert.False(t, ok)
}

func TestDefaults(t *testing.T) {
	n := nodes.NewSum(4)
	assert.True(t, n.UI().Empty())
	assert.True(t, n.Value("anything").IsNone())
	assert.ErrorIs(t, n.SetValue("anything", flow.String("x")), nodes.ErrUnknownField)

	spec := n.Spec()
	assert.Equal(t, int64(4), spec.ID)
	assert.Equal(t, nodes.TypeSum, spec.Type)
	assert.Empty(t, spec.Attributes)
}
