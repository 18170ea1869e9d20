package commands

import "github.com/slipstream/mango/pkg/graph"

// UndoStack is the linear edit history. A push discards the redo chain.
type UndoStack struct {
	undo []Command
	redo []Command
}

// NewUndoStack creates an empty history.
func NewUndoStack() *UndoStack {
	return &UndoStack{}
}

// Push records an executed command. Commands that are not undoable are dropped.
func (s *UndoStack) Push(cmd Command) {
	if !cmd.Undoable() {
		return
	}
	s.undo = append(s.undo, cmd)
	s.redo = nil
}

// Undo reverts the latest command. It reports false when there is nothing
// to undo. A failed undo leaves the command on the undo stack.
func (s *UndoStack) Undo(g *graph.Graph) (bool, error) {
	if len(s.undo) == 0 {
		return false, nil
	}
	cmd := s.undo[len(s.undo)-1]
	if err := cmd.Undo(g); err != nil {
		return false, err
	}
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, cmd)
	return true, nil
}

// Redo re-applies the latest undone command.
func (s *UndoStack) Redo(g *graph.Graph) (bool, error) {
	if len(s.redo) == 0 {
		return false, nil
	}
	cmd := s.redo[len(s.redo)-1]
	if err := cmd.Redo(g); err != nil {
		return false, err
	}
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, cmd)
	return true, nil
}

// CanUndo reports whether Undo has work.
func (s *UndoStack) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo reports whether Redo has work.
func (s *UndoStack) CanRedo() bool { return len(s.redo) > 0 }

// Clear empties both stacks.
func (s *UndoStack) Clear() {
	s.undo, s.redo = nil, nil
}
