package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/slipstream/mango"
	"github.com/slipstream/mango/internal/logging"
	"github.com/slipstream/mango/pkg/commands"
	"github.com/slipstream/mango/pkg/flow"
	"github.com/slipstream/mango/pkg/graph"
	"github.com/slipstream/mango/pkg/registry"
	"github.com/slipstream/mango/pkg/session"
)

// DefaultGraph is the session edited when a tool call names no graph.
const DefaultGraph = "main"

// GraphSummary describes a graph for tool results.
type GraphSummary struct {
	Name        string        `json:"name" jsonschema_description:"Name of the graph"`
	Nodes       []NodeSummary `json:"nodes" jsonschema_description:"Nodes in ascending id order"`
	Connections []string      `json:"connections" jsonschema_description:"Wires rendered as from->to[:slot]"`
	Terminals   []int64       `json:"terminals" jsonschema_description:"Nodes without outgoing wires"`
}

// NodeSummary describes one node.
type NodeSummary struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
}

// PullResponse carries the output of a node.
type PullResponse struct {
	ID    int64  `json:"id"`
	Kind  string `json:"kind" jsonschema_description:"Variant of the produced value"`
	Value string `json:"value" jsonschema_description:"Rendered value"`
}

// EditResponse acknowledges a mutation.
type EditResponse struct {
	Graph   string `json:"graph"`
	Applied bool   `json:"applied"`
	NodeID  int64  `json:"node_id,omitempty"`
}

type graphArgs struct {
	Graph string `mapstructure:"graph"`
}

type addNodeArgs struct {
	Graph    string  `mapstructure:"graph"`
	Type     string  `mapstructure:"type"`
	Label    string  `mapstructure:"label"`
	Mode     string  `mapstructure:"mode"`
	Selected *int64  `mapstructure:"selected"`
	X        float64 `mapstructure:"x"`
	Y        float64 `mapstructure:"y"`
}

type connectArgs struct {
	Graph string `mapstructure:"graph"`
	From  int64  `mapstructure:"from"`
	To    int64  `mapstructure:"to"`
	Slot  int    `mapstructure:"slot"`
}

type nodeArgs struct {
	Graph string `mapstructure:"graph"`
	ID    int64  `mapstructure:"id"`
}

type setValueArgs struct {
	Graph string `mapstructure:"graph"`
	ID    int64  `mapstructure:"id"`
	Field string `mapstructure:"field"`
	Value string `mapstructure:"value"`
}

// Server exposes editing sessions as MCP tools.
type Server struct {
	sessions     *session.Manager
	defaultGraph string
	logger       *slog.Logger
	mcpServer    *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithDefaultGraph sets the graph edited when a call names none.
func WithDefaultGraph(name string) Option {
	return func(s *Server) {
		s.defaultGraph = name
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:     sessions,
		defaultGraph: DefaultGraph,
		logger:       logging.NewNop(),
		mcpServer:    server.NewMCPServer("mango-mcp", mango.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP endpoints on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://localhost"+addr))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func graphParam() mcp.ToolOption {
	return mcp.WithString("graph", mcp.Description("Graph name (defaults to the server graph)"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_types",
		mcp.WithDescription("List the node types that can be created."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(registry.CatalogTypes())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Describe the nodes and wires of a graph."),
		graphParam(),
		mcp.WithOutputSchema[GraphSummary](),
	), mcp.NewStructuredToolHandler(s.handleGetGraph))

	s.mcpServer.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Create a node, optionally relative to a selected node."),
		graphParam(),
		mcp.WithString("type", mcp.Required(), mcp.Description("Node type, see list_types")),
		mcp.WithString("label", mcp.Description("Display label")),
		mcp.WithString("mode", mcp.Description("free, after, before or substitute"), mcp.Enum("free", "after", "before", "substitute")),
		mcp.WithNumber("selected", mcp.Description("Reference node of relative modes")),
		mcp.WithNumber("x", mcp.Description("Canvas x position")),
		mcp.WithNumber("y", mcp.Description("Canvas y position")),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleAddNode))

	s.mcpServer.AddTool(mcp.NewTool("delete_node",
		mcp.WithDescription("Delete a node and its wires."),
		graphParam(),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Node id")),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleDeleteNode))

	s.mcpServer.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Wire the output of one node into an input of another."),
		graphParam(),
		mcp.WithNumber("from", mcp.Required(), mcp.Description("Upstream node id")),
		mcp.WithNumber("to", mcp.Required(), mcp.Description("Downstream node id")),
		mcp.WithNumber("slot", mcp.Description("Input slot of multi-input nodes")),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleConnect))

	s.mcpServer.AddTool(mcp.NewTool("disconnect",
		mcp.WithDescription("Remove the wire between two nodes."),
		graphParam(),
		mcp.WithNumber("from", mcp.Required(), mcp.Description("Upstream node id")),
		mcp.WithNumber("to", mcp.Required(), mcp.Description("Downstream node id")),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleDisconnect))

	s.mcpServer.AddTool(mcp.NewTool("set_value",
		mcp.WithDescription("Set an editable field of a node."),
		graphParam(),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Node id")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Field name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New value")),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetValue))

	s.mcpServer.AddTool(mcp.NewTool("pull",
		mcp.WithDescription("Evaluate a node and return its output."),
		graphParam(),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Node id")),
		mcp.WithOutputSchema[PullResponse](),
	), mcp.NewStructuredToolHandler(s.handlePull))

	s.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Revert the latest edit."),
		graphParam(),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleUndo))

	s.mcpServer.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Re-apply the latest undone edit."),
		graphParam(),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleRedo))

	s.mcpServer.AddTool(mcp.NewTool("save",
		mcp.WithDescription("Persist the graph to the document store."),
		graphParam(),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleSave))
}

func (s *Server) bind(args map[string]any, out any) error {
	if err := mapstructure.WeakDecode(args, out); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) name(graph string) string {
	if graph == "" {
		return s.defaultGraph
	}
	return graph
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (GraphSummary, error) {
	var in graphArgs
	if err := s.bind(args, &in); err != nil {
		return GraphSummary{}, err
	}
	name := s.name(in.Graph)
	var out GraphSummary
	err := s.sessions.Edit(ctx, name, func(ed *mango.Editor) error {
		out = summarize(name, ed.Graph())
		return nil
	})
	return out, err
}

func summarize(name string, g *graph.Graph) GraphSummary {
	out := GraphSummary{
		Name:        name,
		Nodes:       []NodeSummary{},
		Connections: []string{},
		Terminals:   g.Terminals(),
	}
	for _, n := range g.Nodes() {
		ns := NodeSummary{ID: n.ID(), Type: n.Type()}
		if gui, ok := g.GUI(n.ID()); ok {
			ns.Label = gui.Label
		}
		out.Nodes = append(out.Nodes, ns)
	}
	for _, c := range g.Connections() {
		wire := fmt.Sprintf("%d->%d", c.From, c.To)
		if c.ToSlot != 0 {
			wire += fmt.Sprintf(":%d", c.ToSlot)
		}
		out.Connections = append(out.Connections, wire)
	}
	return out
}

func (s *Server) handleAddNode(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (EditResponse, error) {
	var in addNodeArgs
	if err := s.bind(args, &in); err != nil {
		return EditResponse{}, err
	}
	mode := commands.Free
	if in.Mode != "" {
		var err error
		if mode, err = commands.ParseMode(in.Mode); err != nil {
			return EditResponse{}, err
		}
	}

	resp := EditResponse{Graph: s.name(in.Graph), Applied: true}
	err := s.sessions.Edit(ctx, resp.Graph, func(ed *mango.Editor) error {
		var err error
		if mode == commands.Free {
			resp.NodeID, err = ed.AddNode(in.Type, in.Label, in.X, in.Y)
			return err
		}
		if in.Selected != nil {
			if err := ed.Select(*in.Selected); err != nil {
				return err
			}
		}
		resp.NodeID, err = ed.Insert(mode, in.Type)
		return err
	})
	if err != nil {
		return EditResponse{}, err
	}
	return resp, nil
}

func (s *Server) edit(ctx context.Context, graph string, fn func(*mango.Editor) error) (EditResponse, error) {
	resp := EditResponse{Graph: s.name(graph), Applied: true}
	if err := s.sessions.Edit(ctx, resp.Graph, fn); err != nil {
		s.logger.Debug("MCP edit rejected", "graph", resp.Graph, "err", err)
		return EditResponse{}, err
	}
	return resp, nil
}

func (s *Server) handleDeleteNode(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (EditResponse, error) {
	var in nodeArgs
	if err := s.bind(args, &in); err != nil {
		return EditResponse{}, err
	}
	return s.edit(ctx, in.Graph, func(ed *mango.Editor) error { return ed.Delete(in.ID) })
}

func (s *Server) handleConnect(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (EditResponse, error) {
	var in connectArgs
	if err := s.bind(args, &in); err != nil {
		return EditResponse{}, err
	}
	return s.edit(ctx, in.Graph, func(ed *mango.Editor) error { return ed.Connect(in.From, in.To, in.Slot) })
}

func (s *Server) handleDisconnect(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (EditResponse, error) {
	var in connectArgs
	if err := s.bind(args, &in); err != nil {
		return EditResponse{}, err
	}
	return s.edit(ctx, in.Graph, func(ed *mango.Editor) error { return ed.Disconnect(in.From, in.To) })
}

func (s *Server) handleSetValue(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (EditResponse, error) {
	var in setValueArgs
	if err := s.bind(args, &in); err != nil {
		return EditResponse{}, err
	}
	return s.edit(ctx, in.Graph, func(ed *mango.Editor) error {
		return ed.SetValue(in.ID, in.Field, flow.String(in.Value))
	})
}

func (s *Server) handlePull(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (PullResponse, error) {
	var in nodeArgs
	if err := s.bind(args, &in); err != nil {
		return PullResponse{}, err
	}
	var out PullResponse
	err := s.sessions.Edit(ctx, s.name(in.Graph), func(ed *mango.Editor) error {
		if _, ok := ed.Graph().Node(in.ID); !ok {
			return fmt.Errorf("node %d: %w", in.ID, graph.ErrNodeNotFound)
		}
		d := ed.Pull(in.ID)
		out = PullResponse{ID: in.ID, Kind: d.Kind().String(), Value: d.String()}
		return nil
	})
	return out, err
}

func (s *Server) handleUndo(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (EditResponse, error) {
	return s.step(ctx, args, (*mango.Editor).Undo)
}

func (s *Server) handleRedo(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (EditResponse, error) {
	return s.step(ctx, args, (*mango.Editor).Redo)
}

func (s *Server) step(ctx context.Context, args map[string]any, fn func(*mango.Editor) (bool, error)) (EditResponse, error) {
	var in graphArgs
	if err := s.bind(args, &in); err != nil {
		return EditResponse{}, err
	}
	var applied bool
	resp, err := s.edit(ctx, in.Graph, func(ed *mango.Editor) error {
		var err error
		applied, err = fn(ed)
		return err
	})
	resp.Applied = applied
	return resp, err
}

func (s *Server) handleSave(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (EditResponse, error) {
	var in graphArgs
	if err := s.bind(args, &in); err != nil {
		return EditResponse{}, err
	}
	name := s.name(in.Graph)
	if err := s.sessions.Save(ctx, name); err != nil {
		return EditResponse{}, err
	}
	return EditResponse{Graph: name, Applied: true}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("mango://types", "Node Types",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(registry.CatalogTypes())
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "mango://types",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
