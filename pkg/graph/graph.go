package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/slipstream/mango/internal/logging"
	"github.com/slipstream/mango/pkg/flow"
	"github.com/slipstream/mango/pkg/nodes"
	"github.com/slipstream/mango/pkg/registry"
)

var (
	// ErrDuplicateNode is returned when inserting an id that is already present.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrNodeNotFound is returned for ids missing from the store.
	ErrNodeNotFound = errors.New("node not found")
	// ErrDanglingConnection marks a connection whose endpoint is not in the store.
	ErrDanglingConnection = errors.New("dangling connection")
	// ErrStaleConnection marks a record whose target input is wired to another node.
	ErrStaleConnection = errors.New("stale connection")
	// ErrCycle marks a set of connections that loops back on itself.
	ErrCycle = errors.New("cycle detected")
)

// Key identifies a connection by its ordered endpoints.
type Key struct {
	From int64
	To   int64
}

// Connection is the bookkeeping record of a wire.
type Connection struct {
	// ID is the front-end identifier of the wire; it survives undo/redo.
	ID       string
	From     int64
	FromSlot int
	To       int64
	ToSlot   int
}

// Key returns the map key of c.
func (c Connection) Key() Key { return Key{From: c.From, To: c.To} }

// GUINode is the positional twin of a node, opaque to the engine.
type GUINode struct {
	NodeID int64
	Label  string
	X      float64
	Y      float64
}

// Graph owns every node and connection of a session.
type Graph struct {
	registry    *registry.Registry
	logger      *slog.Logger
	nodes       map[int64]nodes.Node
	connections map[Key]Connection
	gui         map[int64]*GUINode
	last        *GUINode
	nextID      int64
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger of the store.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		g.logger = logger
	}
}

// New creates an empty graph resolving wiring through reg.
func New(reg *registry.Registry, opts ...Option) *Graph {
	if reg == nil {
		reg = registry.New()
	}
	g := &Graph{
		registry: reg,
		logger:   logging.NewNop(),
		nextID:   1,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.Clear()
	return g
}

// Clear removes every node, connection and GUI record and resets the id counter.
func (g *Graph) Clear() {
	g.nodes = make(map[int64]nodes.Node)
	g.connections = make(map[Key]Connection)
	g.gui = make(map[int64]*GUINode)
	g.last = nil
	g.nextID = 1
}

// Registry returns the build registry used for wiring.
func (g *Graph) Registry() *registry.Registry { return g.registry }

// Logger returns the store logger.
func (g *Graph) Logger() *slog.Logger { return g.logger }

// PeekID returns the id NextID would hand out, without consuming it.
// InsertNode moves the counter past the id once the node is stored.
func (g *Graph) PeekID() int64 { return g.nextID }

// NextID hands out the next free node id.
func (g *Graph) NextID() int64 {
	id := g.nextID
	g.nextID++
	return id
}

// Node implements registry.NodeMap.
func (g *Graph) Node(id int64) (nodes.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns every node in ascending id order.
func (g *Graph) Nodes() []nodes.Node {
	out := make([]nodes.Node, 0, len(g.nodes))
	for _, id := range g.ids() {
		out = append(out, g.nodes[id])
	}
	return out
}

func (g *Graph) ids() []int64 {
	ids := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// InsertNode adds n and moves the id counter past its id.
func (g *Graph) InsertNode(n nodes.Node) error {
	if _, exists := g.nodes[n.ID()]; exists {
		return fmt.Errorf("insert %d: %w", n.ID(), ErrDuplicateNode)
	}
	g.nodes[n.ID()] = n
	if n.ID() >= g.nextID {
		g.nextID = n.ID() + 1
	}
	return nil
}

// RemoveNode drops the node with id from the arena.
func (g *Graph) RemoveNode(id int64) (nodes.Node, bool) {
	n, ok := g.nodes[id]
	if ok {
		delete(g.nodes, id)
	}
	return n, ok
}

// GUI returns the GUI twin of a node.
func (g *Graph) GUI(id int64) (*GUINode, bool) {
	gn, ok := g.gui[id]
	return gn, ok
}

// GUINodes returns every GUI record in ascending node id order.
func (g *Graph) GUINodes() []*GUINode {
	ids := make([]int64, 0, len(g.gui))
	for id := range g.gui {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*GUINode, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.gui[id])
	}
	return out
}

// PutGUI stores a GUI record, replacing any previous one for the same node.
func (g *Graph) PutGUI(gn *GUINode) { g.gui[gn.NodeID] = gn }

// RemoveGUI drops the GUI record of a node.
func (g *Graph) RemoveGUI(id int64) { delete(g.gui, id) }

// LastNode is the most recently created GUI node, or nil.
func (g *Graph) LastNode() *GUINode { return g.last }

// SetLastNode replaces the last-node pointer.
func (g *Graph) SetLastNode(gn *GUINode) { g.last = gn }

// Connection looks up the record for (from, to).
func (g *Graph) Connection(from, to int64) (Connection, bool) {
	c, ok := g.connections[Key{From: from, To: to}]
	return c, ok
}

// Connections returns every record ordered by (from, to).
func (g *Graph) Connections() []Connection {
	out := make([]Connection, 0, len(g.connections))
	for _, c := range g.connections {
		out = append(out, c)
	}
	sortConnections(out)
	return out
}

// PutConnection stores c, replacing the record of the same (from, to).
func (g *Graph) PutConnection(c Connection) { g.connections[c.Key()] = c }

// RemoveConnection drops the record for (from, to).
func (g *Graph) RemoveConnection(from, to int64) (Connection, bool) {
	key := Key{From: from, To: to}
	c, ok := g.connections[key]
	if ok {
		delete(g.connections, key)
	}
	return c, ok
}

// Outgoing lists the records leaving id, ordered by target.
func (g *Graph) Outgoing(id int64) []Connection {
	var out []Connection
	for _, c := range g.connections {
		if c.From == id {
			out = append(out, c)
		}
	}
	sortConnections(out)
	return out
}

// Incoming lists the records arriving at id, ordered by source.
func (g *Graph) Incoming(id int64) []Connection {
	var out []Connection
	for _, c := range g.connections {
		if c.To == id {
			out = append(out, c)
		}
	}
	sortConnections(out)
	return out
}

// Touching lists every record with id at either end.
func (g *Graph) Touching(id int64) []Connection {
	var out []Connection
	for _, c := range g.connections {
		if c.From == id || c.To == id {
			out = append(out, c)
		}
	}
	sortConnections(out)
	return out
}

func sortConnections(cs []Connection) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].From != cs[j].From {
			return cs[i].From < cs[j].From
		}
		return cs[i].To < cs[j].To
	})
}

// Wire applies c to the target node's input through the registry.
func (g *Graph) Wire(c Connection) error {
	return g.registry.Connect(c.From, c.FromSlot, c.To, c.ToSlot, g)
}

// Unwire clears the target node's input named by c.
func (g *Graph) Unwire(c Connection) error {
	return g.registry.Disconnect(c.To, c.ToSlot, g)
}

// Pull evaluates the node with id.
func (g *Graph) Pull(id int64) flow.Data {
	n, ok := g.nodes[id]
	if !ok {
		return flow.Errorf("node %d not found", id)
	}
	return g.registry.Pull(n, g)
}

// Terminals lists the nodes without an outgoing connection, ascending.
func (g *Graph) Terminals() []int64 {
	hasOut := make(map[int64]bool, len(g.connections))
	for _, c := range g.connections {
		hasOut[c.From] = true
	}
	var out []int64
	for _, id := range g.ids() {
		if !hasOut[id] {
			out = append(out, id)
		}
	}
	return out
}
