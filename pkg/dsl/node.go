package dsl

type input struct {
	from *NodeBuilder
	slot int
}

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	id         int64
	typ        string
	attributes map[string]any
	inputs     []input
	label      string
	x, y       float64
	builder    *Builder
}

// ID returns the id the node will have in the document.
func (n *NodeBuilder) ID() int64 { return n.id }

// Label sets the display label.
func (n *NodeBuilder) Label(label string) *NodeBuilder {
	n.label = label
	return n
}

// At places the node on the canvas.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.x, n.y = x, y
	return n
}

// Set stores an attribute, as a YAML document would under the node entry.
func (n *NodeBuilder) Set(name string, value any) *NodeBuilder {
	if n.attributes == nil {
		n.attributes = make(map[string]any)
	}
	n.attributes[name] = value
	return n
}

// From wires the output of src into the implicit input of this node.
func (n *NodeBuilder) From(src *NodeBuilder) *NodeBuilder {
	return n.FromSlot(src, 0)
}

// FromSlot wires the output of src into the given input slot.
func (n *NodeBuilder) FromSlot(src *NodeBuilder, slot int) *NodeBuilder {
	n.inputs = append(n.inputs, input{from: src, slot: slot})
	return n
}

// Then adds a node of typeName fed by this one and returns it.
func (n *NodeBuilder) Then(typeName string) *NodeBuilder {
	return n.builder.Add(typeName).From(n)
}
