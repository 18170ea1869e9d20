package commands

import (
	"github.com/slipstream/mango/pkg/flow"
	"github.com/slipstream/mango/pkg/graph"
	"github.com/slipstream/mango/pkg/nodes"
)

// CreateNode inserts a node and its GUI record.
type CreateNode struct {
	undoable
	node         nodes.Node
	gui          *graph.GUINode
	previousLast *graph.GUINode
}

// NewCreateNode creates the command. A nil gui gets a record labelled with the node type.
func NewCreateNode(n nodes.Node, gui *graph.GUINode) *CreateNode {
	if gui == nil {
		gui = &graph.GUINode{Label: n.Type()}
	}
	gui.NodeID = n.ID()
	return &CreateNode{node: n, gui: gui}
}

func (c *CreateNode) Name() string { return "create-node" }

// NodeID is the id of the created node.
func (c *CreateNode) NodeID() int64 { return c.node.ID() }

func (c *CreateNode) Execute(g *graph.Graph) error {
	c.previousLast = g.LastNode()
	return c.Redo(g)
}

func (c *CreateNode) Redo(g *graph.Graph) error {
	if err := g.InsertNode(c.node); err != nil {
		return err
	}
	g.PutGUI(c.gui)
	g.SetLastNode(c.gui)
	return nil
}

func (c *CreateNode) Undo(g *graph.Graph) error {
	if _, ok := g.RemoveNode(c.node.ID()); !ok {
		return nodeNotFound(c.node.ID())
	}
	g.RemoveGUI(c.node.ID())
	g.SetLastNode(c.previousLast)
	return nil
}

// DeleteNode removes a node, its GUI record and every connection touching it.
// Undo restores all three.
type DeleteNode struct {
	undoable
	id      int64
	node    nodes.Node
	gui     *graph.GUINode
	severed []graph.Connection
	wasLast bool
}

// NewDeleteNode creates the command for the node with id.
func NewDeleteNode(id int64) *DeleteNode {
	return &DeleteNode{id: id}
}

func (c *DeleteNode) Name() string { return "delete-node" }

func (c *DeleteNode) Execute(g *graph.Graph) error {
	n, ok := g.Node(c.id)
	if !ok {
		return nodeNotFound(c.id)
	}
	c.node = n
	c.gui, _ = g.GUI(c.id)
	c.severed = g.Touching(c.id)
	return c.Redo(g)
}

func (c *DeleteNode) Redo(g *graph.Graph) error {
	for _, conn := range c.severed {
		if err := g.Unwire(conn); err != nil {
			return err
		}
		g.RemoveConnection(conn.From, conn.To)
	}
	g.RemoveNode(c.id)
	g.RemoveGUI(c.id)
	c.wasLast = c.gui != nil && g.LastNode() == c.gui
	if c.wasLast {
		g.SetLastNode(nil)
	}
	return nil
}

func (c *DeleteNode) Undo(g *graph.Graph) error {
	if err := g.InsertNode(c.node); err != nil {
		return err
	}
	if c.gui != nil {
		g.PutGUI(c.gui)
		if c.wasLast {
			g.SetLastNode(c.gui)
		}
	}
	for _, conn := range c.severed {
		if err := g.Wire(conn); err != nil {
			return err
		}
		g.PutConnection(conn)
	}
	return nil
}

// SetValue changes an editable field of a node.
type SetValue struct {
	undoable
	id       int64
	field    string
	value    flow.Data
	previous flow.Data
}

// NewSetValue creates the command.
func NewSetValue(id int64, field string, value flow.Data) *SetValue {
	return &SetValue{id: id, field: field, value: value}
}

func (c *SetValue) Name() string { return "set-value" }

func (c *SetValue) Execute(g *graph.Graph) error {
	n, ok := g.Node(c.id)
	if !ok {
		return nodeNotFound(c.id)
	}
	c.previous = n.Value(c.field)
	return c.Redo(g)
}

func (c *SetValue) Redo(g *graph.Graph) error {
	return c.set(g, c.value)
}

func (c *SetValue) Undo(g *graph.Graph) error {
	return c.set(g, c.previous)
}

func (c *SetValue) set(g *graph.Graph, v flow.Data) error {
	n, ok := g.Node(c.id)
	if !ok {
		return nodeNotFound(c.id)
	}
	return n.SetValue(c.field, v)
}
