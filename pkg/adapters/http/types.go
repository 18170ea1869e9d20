package http

import (
	"github.com/slipstream/mango"
	"github.com/slipstream/mango/pkg/flow"
)

// AddNodeRequest is the body of POST /graphs/{name}/nodes. Mode is one of
// free (default), after, before or substitute; relative modes use Selected,
// or the current selection when it is omitted.
type AddNodeRequest struct {
	Type     string  `json:"type"`
	Label    string  `json:"label,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Mode     string  `json:"mode,omitempty"`
	Selected *int64  `json:"selected,omitempty"`
}

// ConnectRequest is the body of POST /graphs/{name}/connections.
type ConnectRequest struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
	Slot int   `json:"slot,omitempty"`
}

// SetValueRequest is the body of PUT .../values/{field}.
type SetValueRequest struct {
	Value string `json:"value"`
}

// NodeView describes one node.
type NodeView struct {
	ID         int64          `json:"id"`
	Type       string         `json:"type"`
	Label      string         `json:"label"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// ConnectionView describes one wire.
type ConnectionView struct {
	ID   string `json:"id"`
	From int64  `json:"from"`
	To   int64  `json:"to"`
	Slot int    `json:"slot,omitempty"`
}

// GraphView is the JSON form of a session.
type GraphView struct {
	Name        string           `json:"name"`
	Nodes       []NodeView       `json:"nodes"`
	Connections []ConnectionView `json:"connections"`
	Terminals   []int64          `json:"terminals"`
	Selected    *int64           `json:"selected,omitempty"`
}

// NewGraphView captures the state of ed.
func NewGraphView(name string, ed *mango.Editor) GraphView {
	g := ed.Graph()
	view := GraphView{
		Name:        name,
		Nodes:       []NodeView{},
		Connections: []ConnectionView{},
		Terminals:   ed.Terminals(),
	}
	if view.Terminals == nil {
		view.Terminals = []int64{}
	}
	for _, n := range g.Nodes() {
		nv := NodeView{ID: n.ID(), Type: n.Type(), Label: n.Type()}
		if gn, ok := g.GUI(n.ID()); ok {
			nv.Label, nv.X, nv.Y = gn.Label, gn.X, gn.Y
		}
		for _, attr := range n.Spec().Attributes {
			if nv.Attributes == nil {
				nv.Attributes = make(map[string]any)
			}
			nv.Attributes[attr.Name] = attr.Value()
		}
		view.Nodes = append(view.Nodes, nv)
	}
	for _, c := range g.Connections() {
		view.Connections = append(view.Connections, ConnectionView{ID: c.ID, From: c.From, To: c.To, Slot: c.ToSlot})
	}
	if id, ok := ed.Selected(); ok {
		view.Selected = &id
	}
	return view
}

// PullResult is the JSON form of a pulled value.
type PullResult struct {
	Kind  string `json:"kind"`
	Repr  string `json:"repr"`
	Value any    `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewPullResult converts d.
func NewPullResult(d flow.Data) PullResult {
	res := PullResult{Kind: d.Kind().String(), Repr: d.String()}
	switch d.Kind() {
	case flow.KindError:
		res.Error, _ = d.ErrorMessage()
	case flow.KindString:
		res.Value, _ = d.AsString()
	case flow.KindStringArray:
		res.Value, _ = d.AsStringArray()
	case flow.KindInt:
		res.Value, _ = d.AsInt()
	case flow.KindIntArray:
		res.Value, _ = d.AsIntArray()
	case flow.KindJSON:
		res.Value, _ = d.AsJSON()
	}
	return res
}

// Event is broadcast to subscribers after each change of a graph.
type Event struct {
	Graph string `json:"graph"`
	Op    string `json:"op"`
}
