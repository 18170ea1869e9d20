package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/slipstream/mango"
	"github.com/slipstream/mango/internal/logging"
	"github.com/slipstream/mango/pkg/codec"
	"github.com/slipstream/mango/pkg/commands"
	"github.com/slipstream/mango/pkg/flow"
	"github.com/slipstream/mango/pkg/graph"
	"github.com/slipstream/mango/pkg/nodes"
	"github.com/slipstream/mango/pkg/registry"
	"github.com/slipstream/mango/pkg/session"
)

// Server exposes editing sessions over REST.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager
	logger   *slog.Logger
	metrics  http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates the HTTP handler over sessions.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/types", s.GetTypes)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	r.Get("/graphs", s.ListGraphs)
	r.Route("/graphs/{name}", func(r chi.Router) {
		r.Get("/", s.GetGraph)
		r.Get("/document", s.GetDocument)
		r.Get("/events", s.SubscribeEvents)
		r.Post("/nodes", s.AddNode)
		r.Delete("/nodes/{id}", s.DeleteNode)
		r.Put("/nodes/{id}/values/{field}", s.SetValue)
		r.Get("/nodes/{id}/pull", s.Pull)
		r.Post("/connections", s.Connect)
		r.Delete("/connections/{from}/{to}", s.Disconnect)
		r.Post("/undo", s.Undo)
		r.Post("/redo", s.Redo)
		r.Post("/save", s.Save)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "mango-http",
		"version": mango.Version,
	})
}

// GetTypes handles GET /types.
func (s *Server) GetTypes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, registry.CatalogTypes())
}

// ListGraphs handles GET /graphs.
func (s *Server) ListGraphs(w http.ResponseWriter, r *http.Request) {
	names, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListGraphs", err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

// GetGraph handles GET /graphs/{name}.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var view GraphView
	err := s.Sessions.Edit(r.Context(), name, func(ed *mango.Editor) error {
		view = NewGraphView(name, ed)
		return nil
	})
	if err != nil {
		s.fail(w, "GetGraph", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// GetDocument handles GET /graphs/{name}/document, answering YAML.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	var doc *codec.Document
	err := s.Sessions.Edit(r.Context(), chi.URLParam(r, "name"), func(ed *mango.Editor) error {
		doc = ed.Snapshot()
		return nil
	})
	if err != nil {
		s.fail(w, "GetDocument", err)
		return
	}
	w.Header().Set("Content-Type", "text/yaml")
	if err := codec.Encode(w, doc); err != nil {
		s.logger.Error("GetDocument encode failed", "err", err)
	}
}

// AddNode handles POST /graphs/{name}/nodes.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	var body AddNodeRequest
	if !s.decode(w, r, &body) {
		return
	}
	mode := commands.Free
	var err error
	if body.Mode != "" {
		mode, err = commands.ParseMode(body.Mode)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var id int64
	err = s.mutate(r, "add-node", func(ed *mango.Editor) error {
		var err error
		if mode == commands.Free {
			id, err = ed.AddNode(body.Type, body.Label, body.X, body.Y)
			return err
		}
		if body.Selected != nil {
			if err := ed.Select(*body.Selected); err != nil {
				return err
			}
		}
		id, err = ed.Insert(mode, body.Type)
		return err
	})
	if err != nil {
		s.fail(w, "AddNode", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// DeleteNode handles DELETE /graphs/{name}/nodes/{id}.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.intParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.mutate(r, "delete-node", func(ed *mango.Editor) error { return ed.Delete(id) }); err != nil {
		s.fail(w, "DeleteNode", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetValue handles PUT /graphs/{name}/nodes/{id}/values/{field}.
func (s *Server) SetValue(w http.ResponseWriter, r *http.Request) {
	id, ok := s.intParam(w, r, "id")
	if !ok {
		return
	}
	var body SetValueRequest
	if !s.decode(w, r, &body) {
		return
	}
	field := chi.URLParam(r, "field")
	err := s.mutate(r, "set-value", func(ed *mango.Editor) error {
		return ed.SetValue(id, field, flow.String(body.Value))
	})
	if err != nil {
		s.fail(w, "SetValue", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pull handles GET /graphs/{name}/nodes/{id}/pull.
func (s *Server) Pull(w http.ResponseWriter, r *http.Request) {
	id, ok := s.intParam(w, r, "id")
	if !ok {
		return
	}
	var out flow.Data
	err := s.Sessions.Edit(r.Context(), chi.URLParam(r, "name"), func(ed *mango.Editor) error {
		if _, ok := ed.Graph().Node(id); !ok {
			return fmt.Errorf("node %d: %w", id, graph.ErrNodeNotFound)
		}
		out = ed.Pull(id)
		return nil
	})
	if err != nil {
		s.fail(w, "Pull", err)
		return
	}
	s.writeJSON(w, http.StatusOK, NewPullResult(out))
}

// Connect handles POST /graphs/{name}/connections.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var body ConnectRequest
	if !s.decode(w, r, &body) {
		return
	}
	err := s.mutate(r, "connect", func(ed *mango.Editor) error {
		return ed.Connect(body.From, body.To, body.Slot)
	})
	if err != nil {
		s.fail(w, "Connect", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// Disconnect handles DELETE /graphs/{name}/connections/{from}/{to}.
func (s *Server) Disconnect(w http.ResponseWriter, r *http.Request) {
	from, ok := s.intParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := s.intParam(w, r, "to")
	if !ok {
		return
	}
	if err := s.mutate(r, "disconnect", func(ed *mango.Editor) error { return ed.Disconnect(from, to) }); err != nil {
		s.fail(w, "Disconnect", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Undo handles POST /graphs/{name}/undo.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, "undo", (*mango.Editor).Undo)
}

// Redo handles POST /graphs/{name}/redo.
func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, "redo", (*mango.Editor).Redo)
}

func (s *Server) step(w http.ResponseWriter, r *http.Request, op string, fn func(*mango.Editor) (bool, error)) {
	var applied bool
	err := s.mutate(r, op, func(ed *mango.Editor) error {
		var err error
		applied, err = fn(ed)
		return err
	})
	if err != nil {
		s.fail(w, op, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

// Save handles POST /graphs/{name}/save.
func (s *Server) Save(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.Sessions.Save(r.Context(), name); err != nil {
		s.fail(w, "Save", err)
		return
	}
	s.Streams.Broadcast(name, Event{Graph: name, Op: "save"})
	w.WriteHeader(http.StatusNoContent)
}

// mutate runs fn in the session of the request and broadcasts op on success.
func (s *Server) mutate(r *http.Request, op string, fn func(*mango.Editor) error) error {
	name := chi.URLParam(r, "name")
	if err := s.Sessions.Edit(r.Context(), name, fn); err != nil {
		return err
	}
	s.Streams.Broadcast(name, Event{Graph: name, Op: op})
	return nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

func (s *Server) intParam(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid %s", key), http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err, "status", status)
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, graph.ErrNodeNotFound),
		errors.Is(err, registry.ErrNodeNotFound),
		errors.Is(err, commands.ErrConnectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrDuplicateNode),
		errors.Is(err, commands.ErrNoUpstream),
		errors.Is(err, commands.ErrNoDownstream),
		errors.Is(err, commands.ErrNoSelection):
		return http.StatusConflict
	case errors.Is(err, registry.ErrUnknownType),
		errors.Is(err, nodes.ErrMissingSlot),
		errors.Is(err, nodes.ErrInvalidSlot),
		errors.Is(err, nodes.ErrUnknownField),
		errors.Is(err, nodes.ErrFieldType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
