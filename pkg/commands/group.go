package commands

import (
	"fmt"

	"github.com/slipstream/mango/pkg/graph"
)

// Group runs its members as one unit: forward on execute and redo, in
// reverse on undo. When a member fails, the members already applied are
// reverted so the group leaves the graph as it found it.
type Group struct {
	undoable
	name     string
	commands []Command
}

// NewGroup creates a group named name.
func NewGroup(name string, cmds ...Command) *Group {
	return &Group{name: name, commands: cmds}
}

func (c *Group) Name() string { return c.name }

// Add appends a member.
func (c *Group) Add(cmd Command) { c.commands = append(c.commands, cmd) }

// Commands returns the members in insertion order.
func (c *Group) Commands() []Command { return c.commands }

func (c *Group) Execute(g *graph.Graph) error {
	return c.forward(g, Command.Execute)
}

func (c *Group) Redo(g *graph.Graph) error {
	return c.forward(g, Command.Redo)
}

func (c *Group) Undo(g *graph.Graph) error {
	for i := len(c.commands) - 1; i >= 0; i-- {
		if err := c.commands[i].Undo(g); err != nil {
			for j := i + 1; j < len(c.commands); j++ {
				_ = c.commands[j].Redo(g)
			}
			return fmt.Errorf("%s: undo %s: %w", c.name, c.commands[i].Name(), err)
		}
	}
	return nil
}

func (c *Group) forward(g *graph.Graph, apply func(Command, *graph.Graph) error) error {
	for i, cmd := range c.commands {
		if err := apply(cmd, g); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = c.commands[j].Undo(g)
			}
			return fmt.Errorf("%s: %s: %w", c.name, cmd.Name(), err)
		}
	}
	return nil
}
