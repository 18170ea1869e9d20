// Package commands holds every mutation of a graph store as a reversible
// unit, and the history that sequences them.
//
// A command must be executed once before it is undone. Redo re-applies the
// captured effect without capturing again.
package commands

import (
	"errors"
	"fmt"

	"github.com/slipstream/mango/pkg/graph"
)

var (
	// ErrConnectionNotFound is returned when disconnecting a pair with no record.
	ErrConnectionNotFound = errors.New("connection not found")
	// ErrNoUpstream is returned when an edit needs an upstream producer the selection lacks.
	ErrNoUpstream = errors.New("selected node has no upstream connection")
	// ErrNoDownstream is returned when an edit needs a downstream consumer the selection lacks.
	ErrNoDownstream = errors.New("selected node has no downstream connection")
	// ErrNoSelection is returned by relative inserts without a selected node.
	ErrNoSelection = errors.New("no node selected")
)

// Command is one graph mutation.
type Command interface {
	// Name identifies the operation in logs and metrics.
	Name() string
	Execute(g *graph.Graph) error
	Redo(g *graph.Graph) error
	Undo(g *graph.Graph) error
	// Undoable reports whether the history should retain the command.
	Undoable() bool
}

type undoable struct{}

func (undoable) Undoable() bool { return true }

func nodeNotFound(id int64) error {
	return fmt.Errorf("node %d: %w", id, graph.ErrNodeNotFound)
}
