package commands

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/slipstream/mango/pkg/graph"
)

// CreateConnection wires from into slot of to and records the connection.
//
// A record for the same pair is replaced, and a record for another upstream
// that held the same input is dropped; undo brings both back.
type CreateConnection struct {
	undoable
	conn      graph.Connection
	replaced  *graph.Connection
	displaced *graph.Connection
}

// NewCreateConnection creates the command with a fresh connection id.
func NewCreateConnection(from, to int64, slot int) *CreateConnection {
	return &CreateConnection{conn: graph.Connection{
		ID:     uuid.NewString(),
		From:   from,
		To:     to,
		ToSlot: slot,
	}}
}

func (c *CreateConnection) Name() string { return "connect" }

// Connection returns the record the command writes.
func (c *CreateConnection) Connection() graph.Connection { return c.conn }

func (c *CreateConnection) Execute(g *graph.Graph) error {
	c.replaced, c.displaced = nil, nil
	if prev, ok := g.Connection(c.conn.From, c.conn.To); ok {
		c.replaced = &prev
	}
	if to, ok := g.Node(c.conn.To); ok {
		if upstream, wired := to.Input(c.conn.ToSlot); wired && upstream != c.conn.From {
			if prev, ok := g.Connection(upstream, c.conn.To); ok {
				c.displaced = &prev
			}
		}
	}
	return c.Redo(g)
}

func (c *CreateConnection) Redo(g *graph.Graph) error {
	// Old slot first; single-input nodes ignore the slot.
	moved := c.replaced != nil && c.replaced.ToSlot != c.conn.ToSlot
	if moved {
		if err := g.Unwire(*c.replaced); err != nil {
			return err
		}
	}
	if err := g.Wire(c.conn); err != nil {
		if moved {
			_ = g.Wire(*c.replaced)
		}
		return err
	}
	if c.displaced != nil {
		g.RemoveConnection(c.displaced.From, c.displaced.To)
	}
	g.PutConnection(c.conn)
	return nil
}

func (c *CreateConnection) Undo(g *graph.Graph) error {
	if err := g.Unwire(c.conn); err != nil {
		return err
	}
	g.RemoveConnection(c.conn.From, c.conn.To)
	for _, prev := range []*graph.Connection{c.replaced, c.displaced} {
		if prev == nil {
			continue
		}
		if err := g.Wire(*prev); err != nil {
			return err
		}
		g.PutConnection(*prev)
	}
	return nil
}

// Disconnect removes the connection record of (from, to) and clears the input.
// Undo restores the record with its original id.
type Disconnect struct {
	undoable
	from int64
	to   int64
	conn graph.Connection
}

// NewDisconnect creates the command.
func NewDisconnect(from, to int64) *Disconnect {
	return &Disconnect{from: from, to: to}
}

func (c *Disconnect) Name() string { return "disconnect" }

func (c *Disconnect) Execute(g *graph.Graph) error {
	conn, ok := g.Connection(c.from, c.to)
	if !ok {
		return fmt.Errorf("%d -> %d: %w", c.from, c.to, ErrConnectionNotFound)
	}
	c.conn = conn
	return c.Redo(g)
}

func (c *Disconnect) Redo(g *graph.Graph) error {
	if err := g.Unwire(c.conn); err != nil {
		return err
	}
	g.RemoveConnection(c.from, c.to)
	return nil
}

func (c *Disconnect) Undo(g *graph.Graph) error {
	if err := g.Wire(c.conn); err != nil {
		return err
	}
	g.PutConnection(c.conn)
	return nil
}
