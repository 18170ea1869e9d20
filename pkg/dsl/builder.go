package dsl

import (
	"bytes"
	"fmt"

	"github.com/slipstream/mango"
	"github.com/slipstream/mango/pkg/codec"
)

// Builder manages the graph construction. Node ids are assigned in the
// order nodes are added, starting at 1.
type Builder struct {
	nodes []*NodeBuilder
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{}
}

// Add creates a new node of the given type.
func (b *Builder) Add(typeName string) *NodeBuilder {
	nb := &NodeBuilder{
		id:      int64(len(b.nodes) + 1),
		typ:     typeName,
		builder: b,
	}
	b.nodes = append(b.nodes, nb)
	return nb
}

// Document compiles the graph into a persistence document.
func (b *Builder) Document() *codec.Document {
	doc := &codec.Document{}
	for _, nb := range b.nodes {
		entry := codec.NodeEntry{ID: nb.id, Type: nb.typ}
		if len(nb.attributes) > 0 {
			entry.Attributes = make(map[string]any, len(nb.attributes))
			for k, v := range nb.attributes {
				entry.Attributes[k] = v
			}
		}
		doc.Nodes = append(doc.Nodes, entry)

		for _, in := range nb.inputs {
			doc.Connections = append(doc.Connections, codec.ConnectionEntry{
				From: codec.Endpoint{Node: in.from.id},
				To:   codec.Endpoint{Node: nb.id, Input: in.slot},
			})
		}

		label := nb.label
		if label == "" {
			label = nb.typ
		}
		doc.GUI = append(doc.GUI, codec.GUIEntry{ID: nb.id, Label: label, X: nb.x, Y: nb.y})
	}
	return doc
}

// Build loads the compiled document into a new editor.
func (b *Builder) Build(opts ...mango.Option) (*mango.Editor, error) {
	var buf bytes.Buffer
	if err := codec.Encode(&buf, b.Document()); err != nil {
		return nil, fmt.Errorf("failed to encode graph: %w", err)
	}
	ed := mango.New(opts...)
	if err := ed.Load(&buf); err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	return ed, nil
}
