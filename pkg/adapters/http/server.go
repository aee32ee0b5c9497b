package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/aretw0/thicket/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a ports.SelectionService over HTTP.
type Server struct {
	Service ports.SelectionService
	Streams *StreamManager

	trees   ports.Watchable
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics serves the metrics of gatherer on GET /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}
}

// WithTreeEvents streams tree change notifications of w on GET /events.
func WithTreeEvents(w ports.Watchable) Option {
	return func(s *Server) {
		s.trees = w
	}
}

// NewServer creates a Server over svc.
func NewServer(svc ports.SelectionService, opts ...Option) *Server {
	s := &Server{
		Service: svc,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates the HTTP handler for svc.
func NewHandler(svc ports.SelectionService, opts ...Option) http.Handler {
	return NewServer(svc, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", s.GetSpec)
	r.Get("/events", s.SubscribeTreeEvents)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/trees", func(r chi.Router) {
		r.Get("/", s.ListTrees)
		r.Get("/{treeID}", s.GetTree)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.OpenSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/check", s.SetChecked)
			r.Post("/expand", s.ToggleExpansion)
			r.Post("/clear", s.ClearSelection)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionView is the JSON shape of a session returned by the API.
type SessionView struct {
	ID        string                      `json:"id"`
	TreeID    string                      `json:"tree_id,omitempty"`
	Version   uint64                      `json:"version"`
	States    map[string]domain.ItemState `json:"states"`
	Selected  []string                    `json:"selected"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// OpenRequest is the body of POST /sessions.
type OpenRequest struct {
	TreeID    string `json:"tree_id"`
	SessionID string `json:"session_id,omitempty"`
}

// CheckRequest is the body of POST /sessions/{id}/check.
type CheckRequest struct {
	ItemID  string `json:"item_id"`
	Checked *bool  `json:"checked"`
}

// ExpandRequest is the body of POST /sessions/{id}/expand.
type ExpandRequest struct {
	ItemID string `json:"item_id"`
}

type errorBody struct {
	Error string `json:"error"`
}

func viewOf(u *domain.Update) SessionView {
	return SessionView{
		ID:        u.Session.ID,
		TreeID:    u.Session.TreeID,
		Version:   u.Session.Version,
		States:    u.Session.States,
		Selected:  u.Selected,
		UpdatedAt: u.Session.UpdatedAt,
	}
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := Spec(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	} else if err != nil {
		s.logger.Error("openapi document unavailable", "err", err)
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "thicket-http",
		"version":     strings.TrimSpace(thicket.Version),
		"api_version": apiVersion,
	})
}

// GetSpec handles GET /openapi.yaml.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(RawSpec())
}

// ListTrees handles GET /trees.
func (s *Server) ListTrees(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Service.ListTrees(r.Context())
	if err != nil {
		s.writeError(w, "list trees", err)
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(ids))
}

// GetTree handles GET /trees/{treeID}.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	id, err := runner.SanitizeID(chi.URLParam(r, "treeID"))
	if err != nil {
		s.writeError(w, "get tree", err)
		return
	}
	tr, err := s.Service.Tree(r.Context(), id)
	if err != nil {
		s.writeError(w, "get tree", err)
		return
	}
	s.writeJSON(w, http.StatusOK, tr)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Service.ListSessions(r.Context())
	if err != nil {
		s.writeError(w, "list sessions", err)
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(ids))
}

// OpenSession handles POST /sessions.
func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	var body OpenRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, "open session", err)
		return
	}
	if body.TreeID == "" && body.SessionID == "" {
		s.writeError(w, "open session", badRequest("tree_id or session_id is required"))
		return
	}

	treeID, sessionID := body.TreeID, body.SessionID
	var err error
	if treeID != "" {
		if treeID, err = runner.SanitizeID(treeID); err != nil {
			s.writeError(w, "open session", err)
			return
		}
	}
	if sessionID != "" {
		if sessionID, err = runner.SanitizeID(sessionID); err != nil {
			s.writeError(w, "open session", err)
			return
		}
	}

	up, err := s.Service.Open(r.Context(), treeID, sessionID)
	if err != nil {
		s.writeError(w, "open session", err)
		return
	}
	s.logger.Info("session opened", "session_id", up.Session.ID, "tree_id", up.Session.TreeID)
	s.writeJSON(w, http.StatusOK, viewOf(up))
}

// GetSession handles GET /sessions/{sessionID}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "get session", func(sessionID string) (*domain.Update, error) {
		return s.Service.Get(r.Context(), sessionID)
	})
}

// DeleteSession handles DELETE /sessions/{sessionID}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := runner.SanitizeID(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, "delete session", err)
		return
	}
	if err := s.Service.Delete(r.Context(), sessionID); err != nil {
		s.writeError(w, "delete session", err)
		return
	}
	s.Streams.Close(sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// SetChecked handles POST /sessions/{sessionID}/check.
func (s *Server) SetChecked(w http.ResponseWriter, r *http.Request) {
	var body CheckRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, "set checked", err)
		return
	}
	if body.Checked == nil {
		s.writeError(w, "set checked", badRequest("checked is required"))
		return
	}
	itemID, err := runner.SanitizeID(body.ItemID)
	if err != nil {
		s.writeError(w, "set checked", err)
		return
	}
	s.mutate(w, r, "set checked", func(sessionID string) (*domain.Update, error) {
		return s.Service.SetChecked(r.Context(), sessionID, itemID, *body.Checked)
	})
}

// ToggleExpansion handles POST /sessions/{sessionID}/expand.
func (s *Server) ToggleExpansion(w http.ResponseWriter, r *http.Request) {
	var body ExpandRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, "toggle expansion", err)
		return
	}
	itemID, err := runner.SanitizeID(body.ItemID)
	if err != nil {
		s.writeError(w, "toggle expansion", err)
		return
	}
	s.mutate(w, r, "toggle expansion", func(sessionID string) (*domain.Update, error) {
		return s.Service.ToggleExpansion(r.Context(), sessionID, itemID)
	})
}

// ClearSelection handles POST /sessions/{sessionID}/clear.
func (s *Server) ClearSelection(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "clear selection", func(sessionID string) (*domain.Update, error) {
		return s.Service.ClearAll(r.Context(), sessionID)
	})
}

// mutate runs fn on the session named in the path, broadcasts the resulting
// diff and writes the session view.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op string, fn func(sessionID string) (*domain.Update, error)) {
	sessionID, err := runner.SanitizeID(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, op, err)
		return
	}
	up, err := fn(sessionID)
	if err != nil {
		s.logger.Debug(op+" rejected", "session_id", sessionID, "err", err)
		s.writeError(w, op, err)
		return
	}
	s.publish(up)
	s.writeJSON(w, http.StatusOK, viewOf(up))
}

func (s *Server) publish(up *domain.Update) {
	if up.Diff == nil {
		return
	}
	payload, err := json.Marshal(up.Diff)
	if err != nil {
		s.logger.Error("encode diff", "session_id", up.Session.ID, "err", err)
		return
	}
	s.Streams.Broadcast(up.Session.ID, string(payload))
}

// SubscribeEvents handles GET /sessions/{sessionID}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	sessionID, err := runner.SanitizeID(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, "subscribe", err)
		return
	}

	var watch []string
	if raw := r.URL.Query().Get("watch"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				watch = append(watch, f)
			}
		}
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	sseHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("sse subscribed", "session_id", sessionID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("sse client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				fmt.Fprintf(w, "event: closed\ndata: %s\n\n", sessionID)
				flusher.Flush()
				return
			}
			if !matches(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// SubscribeTreeEvents handles GET /events, streaming ids of changed trees.
func (s *Server) SubscribeTreeEvents(w http.ResponseWriter, r *http.Request) {
	if s.trees == nil {
		s.writeJSON(w, http.StatusNotImplemented, errorBody{Error: "tree loader does not support watching"})
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	events, err := s.trees.Watch(r.Context())
	if err != nil {
		s.writeError(w, "watch trees", err)
		return
	}

	sseHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case id, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: tree\ndata: %s\n\n", id)
			flusher.Flush()
		}
	}
}

func sseHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// matches reports whether a diff payload touches any of the watched fields.
// An empty watch list matches everything.
func matches(msg string, watch []string) bool {
	if len(watch) == 0 {
		return true
	}
	var diff domain.SessionDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watch {
		switch field {
		case "states":
			if len(diff.States) > 0 || len(diff.Dropped) > 0 {
				return true
			}
		case "selection":
			if diff.Selection != nil {
				return true
			}
		case "version":
			if diff.Version != nil {
				return true
			}
		}
	}
	return false
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error { return &requestError{msg: msg} }

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// StatusOf maps an error to the HTTP status returned for it.
func StatusOf(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr),
		errors.Is(err, runner.ErrInputTooLarge),
		errors.Is(err, runner.ErrInvalidUTF8),
		errors.Is(err, runner.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrTreeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrItemDisabled),
		errors.Is(err, domain.ErrNotExpandable),
		errors.Is(err, domain.ErrTreeMismatch):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDuplicateID),
		errors.Is(err, domain.ErrEmptyID):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
