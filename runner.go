package mango

import (
	"errors"
	"fmt"
	"io"

	"github.com/slipstream/mango/pkg/nodes"
)

// ErrPullFailed marks a terminal node whose pull produced an Error value.
var ErrPullFailed = errors.New("pull failed")

// Runner evaluates a whole graph in batch mode.
type Runner struct {
	// Output receives the results of terminals that do not print themselves.
	// A nil Output discards them.
	Output io.Writer
}

// NewRunner creates a Runner writing results to out.
func NewRunner(out io.Writer) *Runner {
	return &Runner{Output: out}
}

// Result is the outcome of one terminal pull.
type Result struct {
	NodeID int64
	Type   string
	Output string
	Err    error
}

// Run pulls every terminal node of e in ascending id order. Standard-out
// terminals print on their own; every other non-None result is written to
// Output as its debug representation. Error results are returned joined.
func (r *Runner) Run(e *Editor) ([]Result, error) {
	out := r.Output
	if out == nil {
		out = io.Discard
	}

	var (
		results []Result
		errs    []error
	)
	for _, id := range e.Terminals() {
		n, _ := e.Graph().Node(id)
		data := e.Pull(id)
		res := Result{NodeID: id, Type: n.Type(), Output: data.String()}
		if msg, ok := data.ErrorMessage(); ok {
			res.Err = fmt.Errorf("node %d (%s): %w: %s", id, n.Type(), ErrPullFailed, msg)
			errs = append(errs, res.Err)
		} else if !data.IsNone() && n.Type() != nodes.TypeStandardOut {
			if _, err := fmt.Fprintln(out, data.String()); err != nil {
				return results, fmt.Errorf("write result of node %d: %w", id, err)
			}
		}
		results = append(results, res)
		e.Logger().Debug("Terminal pulled", "node_id", id, "type", n.Type(), "kind", data.Kind())
	}
	return results, errors.Join(errs...)
}
