package graph

import (
	"errors"
	"fmt"
)

// Validate reports every connection whose endpoints do not resolve, every
// record whose target input is fed by another node, and every cycle formed
// by the connection records. Issues are joined into one error.
func (g *Graph) Validate() error {
	var errs []error
	for _, c := range g.Connections() {
		if _, ok := g.nodes[c.From]; !ok {
			errs = append(errs, fmt.Errorf("%w: %d -> %d: source missing", ErrDanglingConnection, c.From, c.To))
		}
		to, ok := g.nodes[c.To]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %d -> %d: target missing", ErrDanglingConnection, c.From, c.To))
			continue
		}
		if upstream, wired := to.Input(c.ToSlot); wired && upstream != c.From {
			errs = append(errs, fmt.Errorf("%w: %d -> %d: input fed by %d", ErrStaleConnection, c.From, c.To, upstream))
		}
	}
	if cycle := g.findCycle(); cycle != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrCycle, cycle))
	}
	return errors.Join(errs...)
}

// findCycle returns the ids of the first cycle found, walking from the
// lowest id, or nil for an acyclic graph.
func (g *Graph) findCycle() []int64 {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[int64]int, len(g.nodes))
	var path []int64
	var cycle []int64

	var visit func(id int64) bool
	visit = func(id int64) bool {
		state[id] = onPath
		path = append(path, id)
		for _, c := range g.Outgoing(id) {
			switch state[c.To] {
			case onPath:
				for i, p := range path {
					if p == c.To {
						cycle = append(append([]int64{}, path[i:]...), c.To)
						return true
					}
				}
			case unvisited:
				if visit(c.To) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		return false
	}

	for _, id := range g.ids() {
		if state[id] == unvisited && visit(id) {
			return cycle
		}
	}
	return nil
}
