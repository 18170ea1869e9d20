package codec

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/slipstream/mango/pkg/flow"
	"github.com/slipstream/mango/pkg/graph"
	"github.com/slipstream/mango/pkg/nodes"
)

// ErrUnknownType is reported for node entries whose type is not in the catalog.
var ErrUnknownType = errors.New("unknown node type")

// Snapshot captures the state of g. Nodes and connections are ordered by id.
func Snapshot(g *graph.Graph) *Document {
	doc := &Document{
		Nodes:       []NodeEntry{},
		Connections: []ConnectionEntry{},
	}
	for _, n := range g.Nodes() {
		spec := n.Spec()
		entry := NodeEntry{ID: spec.ID, Type: spec.Type}
		if len(spec.Attributes) > 0 {
			entry.Attributes = make(map[string]any, len(spec.Attributes))
			for _, attr := range spec.Attributes {
				entry.Attributes[attr.Name] = attr.Value()
			}
		}
		doc.Nodes = append(doc.Nodes, entry)
	}
	for _, c := range g.Connections() {
		doc.Connections = append(doc.Connections, ConnectionEntry{
			From: Endpoint{Node: c.From, Output: c.FromSlot},
			To:   Endpoint{Node: c.To, Input: c.ToSlot},
		})
	}
	for _, gn := range g.GUINodes() {
		doc.GUI = append(doc.GUI, GUIEntry{ID: gn.NodeID, Label: gn.Label, X: gn.X, Y: gn.Y})
	}
	return doc
}

type applyConfig struct {
	lenient bool
}

// ApplyOption configures Apply.
type ApplyOption func(*applyConfig)

// Lenient makes Apply skip connections to missing nodes instead of failing.
func Lenient() ApplyOption {
	return func(c *applyConfig) {
		c.lenient = true
	}
}

// Apply rebuilds the nodes of doc into g, then wires its connections in
// document order. Unknown types, duplicate ids and unusable attributes are
// logged and skipped. A later connection into an input already fed by
// another node replaces the earlier record. A connection naming a node that was not built is an
// error unless Lenient is given; the graph may then be partially populated.
func Apply(doc *Document, g *graph.Graph, opts ...ApplyOption) error {
	cfg := applyConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := g.Logger()

	for _, entry := range doc.Nodes {
		n, ok := g.Registry().Build(entry.ID, entry.Type)
		if !ok {
			logger.Warn("Skipping node", "node_id", entry.ID, "type", entry.Type, "err", ErrUnknownType)
			continue
		}
		applyAttributes(n, entry, g)
		if err := g.InsertNode(n); err != nil {
			logger.Warn("Skipping node", "node_id", entry.ID, "type", entry.Type, "err", err)
			continue
		}
	}

	layout := make(map[int64]GUIEntry, len(doc.GUI))
	for _, gui := range doc.GUI {
		layout[gui.ID] = gui
	}
	for _, n := range g.Nodes() {
		gn := &graph.GUINode{NodeID: n.ID(), Label: n.Type()}
		if entry, ok := layout[n.ID()]; ok {
			gn.Label, gn.X, gn.Y = entry.Label, entry.X, entry.Y
		}
		g.PutGUI(gn)
	}
	if len(doc.GUI) > 0 {
		if gn, ok := g.GUI(doc.GUI[len(doc.GUI)-1].ID); ok {
			g.SetLastNode(gn)
		}
	}

	for i, entry := range doc.Connections {
		c := graph.Connection{
			ID:       uuid.NewString(),
			From:     entry.From.Node,
			FromSlot: entry.From.Output,
			To:       entry.To.Node,
			ToSlot:   entry.To.Input,
		}
		_, okFrom := g.Node(c.From)
		_, okTo := g.Node(c.To)
		if !okFrom || !okTo {
			if !cfg.lenient {
				return fmt.Errorf("connection %d (%d -> %d): %w", i, c.From, c.To, graph.ErrDanglingConnection)
			}
			logger.Warn("Unable to find nodes matching ids", "from", c.From, "to", c.To)
			continue
		}
		if err := wire(g, c); err != nil {
			continue
		}
		g.PutConnection(c)
	}
	return nil
}

// wire connects c the way CreateConnection does: a repeated pair moves to
// the new slot and a record whose upstream loses the input is dropped.
func wire(g *graph.Graph, c graph.Connection) error {
	to, _ := g.Node(c.To)
	prev, repeated := g.Connection(c.From, c.To)
	moved := repeated && prev.ToSlot != c.ToSlot
	if moved {
		if err := g.Unwire(prev); err != nil {
			return err
		}
	}
	upstream, wired := to.Input(c.ToSlot)
	if err := g.Wire(c); err != nil {
		if moved {
			_ = g.Wire(prev)
		}
		return err
	}
	if wired && upstream != c.From {
		if _, ok := g.RemoveConnection(upstream, c.To); ok {
			g.Logger().Warn("Replacing connection", "from", upstream, "to", c.To, "slot", c.ToSlot, "by", c.From)
		}
	}
	return nil
}

func applyAttributes(n nodes.Node, entry NodeEntry, g *graph.Graph) {
	fields := make(map[string]nodes.Field)
	for _, f := range n.UI().Fields {
		fields[f.Name] = f
	}
	names := make([]string, 0, len(entry.Attributes))
	for name := range entry.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field, ok := fields[name]
		if !ok {
			g.Logger().Warn("Ignoring attribute", "node_id", entry.ID, "type", entry.Type, "attribute", name, "err", nodes.ErrUnknownField)
			continue
		}
		var value flow.Data
		switch field.Kind {
		case nodes.FieldString:
			var s string
			if err := mapstructure.WeakDecode(entry.Attributes[name], &s); err != nil {
				g.Logger().Warn("Ignoring attribute", "node_id", entry.ID, "attribute", name, "err", err)
				continue
			}
			value = flow.String(s)
		default:
			continue
		}
		if err := n.SetValue(name, value); err != nil {
			g.Logger().Warn("Ignoring attribute", "node_id", entry.ID, "attribute", name, "err", err)
		}
	}
}
