package commands

import (
	"io"

	"github.com/slipstream/mango/pkg/codec"
	"github.com/slipstream/mango/pkg/graph"
)

// Save writes the document of the graph. It has no undo effect.
type Save struct {
	w io.Writer
}

// NewSave creates a save to w.
func NewSave(w io.Writer) *Save {
	return &Save{w: w}
}

func (c *Save) Name() string { return "save" }

func (c *Save) Execute(g *graph.Graph) error {
	return codec.Encode(c.w, codec.Snapshot(g))
}

func (c *Save) Redo(g *graph.Graph) error { return c.Execute(g) }

func (c *Save) Undo(*graph.Graph) error { return nil }

func (c *Save) Undoable() bool { return false }
