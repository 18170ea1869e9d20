package registry

import (
	"github.com/slipstream/mango/pkg/flow"
	"github.com/slipstream/mango/pkg/nodes"
)

// MsgCycle prefixes the error produced when a pull revisits a node on its own path.
const MsgCycle = "Cycle detected at node"

// puller is the nodes.Source of one top-level pull. It tracks the ids on the
// current path so a cyclic graph ends in an Error instead of unbounded recursion.
type puller struct {
	nodes    NodeMap
	visiting map[int64]bool
	observer PullObserver
}

func (p *puller) Pull(id int64) flow.Data {
	n, ok := p.nodes.Node(id)
	if !ok {
		return flow.Error(nodes.MsgNoInput)
	}
	return p.pullNode(n)
}

func (p *puller) pullNode(n nodes.Node) flow.Data {
	id := n.ID()
	if p.visiting[id] {
		return flow.Errorf("%s %d", MsgCycle, id)
	}
	p.visiting[id] = true
	out := n.Pull(p)
	delete(p.visiting, id)

	if p.observer != nil {
		p.observer.ObservePull(n.Type(), out)
	}
	return out
}
