package nodes

import (
	"fmt"
	"io"

	"github.com/slipstream/mango/pkg/flow"
)

// StandardIn reads its source once and replays the cached text on every pull.
type StandardIn struct {
	base
	source io.Reader
	cache  *flow.Data
}

// NewStandardIn creates a StandardIn reading from r.
func NewStandardIn(id int64, r io.Reader) *StandardIn {
	return &StandardIn{base: base{id: id, typ: TypeStandardIn}, source: r}
}

func (n *StandardIn) Pull(Source) flow.Data {
	if n.cache != nil {
		return *n.cache
	}
	var out flow.Data
	if n.source == nil {
		out = flow.Error(MsgReadStdin)
	} else if content, err := io.ReadAll(n.source); err != nil {
		out = flow.Error(MsgReadStdin)
	} else {
		out = flow.String(string(content))
	}
	n.cache = &out
	return out
}

// SetInput is a no-op: StandardIn has no inputs.
func (n *StandardIn) SetInput(Node, int) error { return nil }

func (n *StandardIn) Input(int) (int64, bool) { return 0, false }

func (n *StandardIn) Spec() Spec { return describe(n) }

// StandardOut writes whatever it pulls to a sink and returns None.
type StandardOut struct {
	base
	single
	sink io.Writer
}

// NewStandardOut creates a StandardOut writing to w.
func NewStandardOut(id int64, w io.Writer) *StandardOut {
	if w == nil {
		w = io.Discard
	}
	return &StandardOut{base: base{id: id, typ: TypeStandardOut}, sink: w}
}

func (n *StandardOut) Pull(src Source) flow.Data {
	if !n.wired {
		return flow.Error(MsgNoInput)
	}
	content := n.pullInput(src)
	switch content.Kind() {
	case flow.KindStringArray:
		lines, _ := content.AsStringArray()
		for _, line := range lines {
			fmt.Fprintln(n.sink, line)
		}
	case flow.KindString:
		text, _ := content.AsString()
		fmt.Fprintln(n.sink, text)
	default:
		fmt.Fprintln(n.sink, content.String())
	}
	return flow.None()
}

func (n *StandardOut) Spec() Spec { return describe(n) }
