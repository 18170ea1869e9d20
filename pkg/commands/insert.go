package commands

import (
	"fmt"
	"strings"

	"github.com/slipstream/mango/pkg/graph"
	"github.com/slipstream/mango/pkg/nodes"
)

// Mode places a new node relative to the selection.
type Mode int

const (
	// Free adds the node without wiring it.
	Free Mode = iota
	// After adds the node downstream of the selection.
	After
	// Before splices the node upstream of the selection.
	Before
	// Substitute replaces the selection in place.
	Substitute
)

var modeNames = map[Mode]string{
	Free:       "free",
	After:      "after",
	Before:     "before",
	Substitute: "substitute",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a mode name (or its first letter) to a Mode.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if s == name || (len(s) == 1 && s[0] == name[0]) {
			return m, nil
		}
	}
	return Free, fmt.Errorf("unknown insert mode %q", s)
}

// Insert builds the command placing n relative to selected. The returned
// command has not been executed. Relative modes on a selection missing from
// g fail with ErrNoSelection.
func Insert(g *graph.Graph, mode Mode, selected int64, n nodes.Node, gui *graph.GUINode) (Command, error) {
	create := NewCreateNode(n, gui)
	if mode == Free {
		return create, nil
	}
	if _, ok := g.Node(selected); !ok {
		return nil, ErrNoSelection
	}
	id := n.ID()

	switch mode {
	case After:
		return NewGroup("insert-after",
			create,
			NewCreateConnection(selected, id, nodes.NoSlot),
		), nil

	case Before:
		incoming := g.Incoming(selected)
		if len(incoming) == 0 {
			return NewGroup("insert-before",
				create,
				NewCreateConnection(id, selected, nodes.NoSlot),
			), nil
		}
		up := incoming[0]
		return NewGroup("insert-before",
			create,
			NewCreateConnection(up.From, id, nodes.NoSlot),
			NewDisconnect(up.From, selected),
			NewCreateConnection(id, selected, up.ToSlot),
		), nil

	case Substitute:
		incoming := g.Incoming(selected)
		if len(incoming) == 0 {
			return nil, ErrNoUpstream
		}
		outgoing := g.Outgoing(selected)
		if len(outgoing) == 0 {
			return nil, ErrNoDownstream
		}
		in, out := incoming[0], outgoing[0]
		return NewGroup("substitute",
			create,
			NewDisconnect(in.From, selected),
			NewDisconnect(selected, out.To),
			NewCreateConnection(in.From, id, nodes.NoSlot),
			NewCreateConnection(id, out.To, out.ToSlot),
			NewDeleteNode(selected),
		), nil
	}
	return nil, fmt.Errorf("unknown insert mode %v", mode)
}
