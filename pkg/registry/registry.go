package registry

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/slipstream/mango/internal/logging"
	"github.com/slipstream/mango/pkg/flow"
	"github.com/slipstream/mango/pkg/nodes"
)

var (
	// ErrNodeNotFound is returned when a connect or disconnect names an id missing from the node map.
	ErrNodeNotFound = errors.New("node not found")
	// ErrUnknownType is returned by MustBuild for type names outside the catalog.
	ErrUnknownType = errors.New("unknown node type")
)

// Constructor creates an unwired node with the given id.
type Constructor func(id int64, env Env) nodes.Node

// Env is the outside world handed to node constructors.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
}

// NodeMap resolves node ids. The graph store implements it.
type NodeMap interface {
	Node(id int64) (nodes.Node, bool)
}

// PullObserver is notified after every node pull.
type PullObserver interface {
	ObservePull(nodeType string, out flow.Data)
}

// Registry manages the node catalog and resolves wiring against a NodeMap.
type Registry struct {
	mu       sync.RWMutex
	ctors    map[string]Constructor
	env      Env
	logger   *slog.Logger
	observer PullObserver
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for wiring diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithStdin sets the source read by standard-in nodes.
func WithStdin(reader io.Reader) Option {
	return func(r *Registry) {
		r.env.Stdin = reader
	}
}

// WithStdout sets the sink written by standard-out nodes.
func WithStdout(writer io.Writer) Option {
	return func(r *Registry) {
		r.env.Stdout = writer
	}
}

// WithObserver registers a pull observer (e.g. metrics).
func WithObserver(observer PullObserver) Option {
	return func(r *Registry) {
		r.observer = observer
	}
}

// New creates a registry holding the built-in catalog.
func New(opts ...Option) *Registry {
	r := &Registry{
		ctors:  make(map[string]Constructor),
		env:    Env{Stdin: os.Stdin, Stdout: os.Stdout},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	for name, ctor := range catalog {
		r.ctors[name] = ctor
	}
	return r
}

// Register adds a node type to the registry.
// If a type with the same name exists, it is overwritten.
func (r *Registry) Register(name string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[name] = ctor
}

// Types lists the registered type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs a fresh node of typeName. It reports false for unknown types.
// Id uniqueness is the caller's concern.
func (r *Registry) Build(id int64, typeName string) (nodes.Node, bool) {
	r.mu.RLock()
	ctor, ok := r.ctors[typeName]
	env := r.env
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return ctor(id, env), true
}

// MustBuild is Build returning ErrUnknownType instead of false.
func (r *Registry) MustBuild(id int64, typeName string) (nodes.Node, error) {
	n, ok := r.Build(id, typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	return n, nil
}

// Connect wires from into slot toSlot of to. fromSlot is accepted for
// symmetry and unused. Missing ids or slot errors are logged and returned;
// nothing changes in that case.
func (r *Registry) Connect(from int64, fromSlot int, to int64, toSlot int, m NodeMap) error {
	fromNode, okFrom := m.Node(from)
	toNode, okTo := m.Node(to)
	if !okFrom || !okTo {
		r.logger.Warn("Unable to find nodes matching ids", "from", from, "to", to)
		return fmt.Errorf("connect %d -> %d: %w", from, to, ErrNodeNotFound)
	}
	if err := toNode.SetInput(fromNode, toSlot); err != nil {
		r.logger.Warn("Failed to set input", "from", from, "to", to, "slot", toSlot, "err", err)
		return err
	}
	return nil
}

// Disconnect clears slot toSlot of to.
func (r *Registry) Disconnect(to int64, toSlot int, m NodeMap) error {
	toNode, ok := m.Node(to)
	if !ok {
		r.logger.Warn("Unable to find node matching id", "to", to)
		return fmt.Errorf("disconnect %d: %w", to, ErrNodeNotFound)
	}
	if err := toNode.SetInput(nil, toSlot); err != nil {
		r.logger.Warn("Failed to clear input", "to", to, "slot", toSlot, "err", err)
		return err
	}
	return nil
}

// Pull evaluates n, resolving its upstream through m.
func (r *Registry) Pull(n nodes.Node, m NodeMap) flow.Data {
	p := &puller{nodes: m, visiting: make(map[int64]bool), observer: r.observer}
	return p.pullNode(n)
}
