package mango

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/slipstream/mango/internal/logging"
	"github.com/slipstream/mango/internal/metrics"
	"github.com/slipstream/mango/pkg/codec"
	"github.com/slipstream/mango/pkg/commands"
	"github.com/slipstream/mango/pkg/flow"
	"github.com/slipstream/mango/pkg/graph"
	"github.com/slipstream/mango/pkg/registry"
)

// Version of the mango module.
const Version = "0.3.0"

// Editor is the high-level entry point: one editing session over one graph.
// It owns the registry, the graph store, the undo history and the selection.
// An Editor is not safe for concurrent use; see pkg/session.
type Editor struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	registry *registry.Registry
	graph    *graph.Graph
	history  *commands.UndoStack
	stdin    io.Reader
	stdout   io.Writer
	lenient  bool

	selected    int64
	hasSelected bool
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLogger sets the structured logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithRegistry injects a custom build registry. The registry's own
// environment and observer are used as given.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Editor) {
		e.registry = r
	}
}

// WithMetrics records pulls and commands in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Editor) {
		e.metrics = m
	}
}

// WithStdin sets the source of standard-in nodes.
func WithStdin(r io.Reader) Option {
	return func(e *Editor) {
		e.stdin = r
	}
}

// WithStdout sets the sink of standard-out nodes.
func WithStdout(w io.Writer) Option {
	return func(e *Editor) {
		e.stdout = w
	}
}

// WithLenientLoad skips connections to missing nodes when loading.
func WithLenientLoad(lenient bool) Option {
	return func(e *Editor) {
		e.lenient = lenient
	}
}

// New creates an Editor over an empty graph.
func New(opts ...Option) *Editor {
	e := &Editor{
		logger:  logging.NewNop(),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		history: commands.NewUndoStack(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		regOpts := []registry.Option{
			registry.WithLogger(e.logger),
			registry.WithStdin(e.stdin),
			registry.WithStdout(e.stdout),
		}
		if e.metrics != nil {
			regOpts = append(regOpts, registry.WithObserver(e.metrics))
		}
		e.registry = registry.New(regOpts...)
	}
	e.graph = e.newGraph()
	return e
}

func (e *Editor) newGraph() *graph.Graph {
	return graph.New(e.registry, graph.WithLogger(e.logger))
}

// Graph returns the graph store.
func (e *Editor) Graph() *graph.Graph { return e.graph }

// Registry returns the build registry.
func (e *Editor) Registry() *registry.Registry { return e.registry }

// Logger returns the editor logger.
func (e *Editor) Logger() *slog.Logger { return e.logger }

// Do executes cmd and records it in the history when it is undoable.
// A failed command is not recorded.
func (e *Editor) Do(cmd commands.Command) error {
	err := cmd.Execute(e.graph)
	if e.metrics != nil {
		e.metrics.ObserveCommand(cmd.Name(), err)
	}
	if err != nil {
		e.logger.Warn("Command failed", "op", cmd.Name(), "err", err)
		return err
	}
	e.logger.Debug("Command applied", "op", cmd.Name())
	e.history.Push(cmd)
	return nil
}

// AddNode creates an unwired node of typeName at (x, y) and selects it.
// An empty label defaults to the type name.
func (e *Editor) AddNode(typeName, label string, x, y float64) (int64, error) {
	if label == "" {
		label = typeName
	}
	return e.insert(commands.Free, typeName, &graph.GUINode{Label: label, X: x, Y: y})
}

// Insert creates a node of typeName placed relative to the selection and
// selects it. The whole edit is one undo step.
func (e *Editor) Insert(mode commands.Mode, typeName string) (int64, error) {
	return e.insert(mode, typeName, nil)
}

func (e *Editor) insert(mode commands.Mode, typeName string, gui *graph.GUINode) (int64, error) {
	selected, ok := e.Selected()
	if mode != commands.Free && !ok {
		return 0, fmt.Errorf("insert %s %s: %w", mode, typeName, commands.ErrNoSelection)
	}
	n, err := e.registry.MustBuild(e.graph.PeekID(), typeName)
	if err != nil {
		return 0, err
	}
	if gui == nil {
		gui = e.placeNear(selected, typeName)
	}
	cmd, err := commands.Insert(e.graph, mode, selected, n, gui)
	if err != nil {
		return 0, fmt.Errorf("insert %s %s: %w", mode, typeName, err)
	}
	if err := e.Do(cmd); err != nil {
		return 0, err
	}
	e.selected, e.hasSelected = n.ID(), true
	return n.ID(), nil
}

// placeNear lays a new node out to the right of the selection.
func (e *Editor) placeNear(selected int64, label string) *graph.GUINode {
	gn := &graph.GUINode{Label: label}
	if ref, ok := e.graph.GUI(selected); ok {
		gn.X, gn.Y = ref.X+150, ref.Y
	} else if last := e.graph.LastNode(); last != nil {
		gn.X, gn.Y = last.X, last.Y+100
	}
	return gn
}

// Connect wires from into slot of to.
func (e *Editor) Connect(from, to int64, slot int) error {
	return e.Do(commands.NewCreateConnection(from, to, slot))
}

// Disconnect removes the wire from -> to.
func (e *Editor) Disconnect(from, to int64) error {
	return e.Do(commands.NewDisconnect(from, to))
}

// Delete removes a node together with its connections.
func (e *Editor) Delete(id int64) error {
	if err := e.Do(commands.NewDeleteNode(id)); err != nil {
		return err
	}
	if e.hasSelected && e.selected == id {
		e.hasSelected = false
	}
	return nil
}

// SetValue changes an editable field of a node.
func (e *Editor) SetValue(id int64, field string, v flow.Data) error {
	return e.Do(commands.NewSetValue(id, field, v))
}

// Undo reverts the latest edit. It reports false when the history is empty.
func (e *Editor) Undo() (bool, error) {
	return e.history.Undo(e.graph)
}

// Redo re-applies the latest undone edit.
func (e *Editor) Redo() (bool, error) {
	return e.history.Redo(e.graph)
}

// Select makes id the reference of relative inserts.
func (e *Editor) Select(id int64) error {
	if _, ok := e.graph.Node(id); !ok {
		return fmt.Errorf("select %d: %w", id, graph.ErrNodeNotFound)
	}
	e.selected, e.hasSelected = id, true
	return nil
}

// Selected returns the selection. It reports false when nothing is selected
// or the selected node has left the graph (e.g. after an undo).
func (e *Editor) Selected() (int64, bool) {
	if !e.hasSelected {
		return 0, false
	}
	if _, ok := e.graph.Node(e.selected); !ok {
		return 0, false
	}
	return e.selected, true
}

// Pull evaluates the node with id.
func (e *Editor) Pull(id int64) flow.Data {
	return e.graph.Pull(id)
}

// Terminals lists the nodes without outgoing connections, ascending.
func (e *Editor) Terminals() []int64 {
	return e.graph.Terminals()
}

// Validate reports dangling connections and cycles.
func (e *Editor) Validate() error {
	return e.graph.Validate()
}

// Snapshot returns the document form of the graph.
func (e *Editor) Snapshot() *codec.Document {
	return codec.Snapshot(e.graph)
}

// Save writes the graph document to w.
func (e *Editor) Save(w io.Writer) error {
	return e.Do(commands.NewSave(w))
}

// Load replaces the graph with the document read from r. The history is
// cleared and the last node of the document becomes the selection. On error
// the current graph is kept.
func (e *Editor) Load(r io.Reader) error {
	doc, err := codec.Decode(r)
	if err != nil {
		return err
	}
	var opts []codec.ApplyOption
	if e.lenient {
		opts = append(opts, codec.Lenient())
	}
	g := e.newGraph()
	if err := codec.Apply(doc, g, opts...); err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	e.graph = g
	e.history.Clear()
	e.hasSelected = false
	if last := g.LastNode(); last != nil {
		e.selected, e.hasSelected = last.NodeID, true
	}
	e.logger.Debug("Graph loaded", "nodes", g.Len(), "connections", len(g.Connections()))
	return nil
}
