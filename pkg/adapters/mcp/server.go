package mcp

import (
	"context"
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
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	treesURI        = "thicket://trees"
	treeTemplateURI = "thicket://trees/{id}"
)

// Server exposes a ports.SelectionService as an MCP server.
type Server struct {
	service   ports.SelectionService
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(svc ports.SelectionService, opts ...Option) *Server {
	s := &Server{
		service: svc,
		logger:  logging.NewNop(),
		mcpServer: server.NewMCPServer("thicket-mcp", strings.TrimSpace(thicket.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down mcp server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_trees",
		mcp.WithDescription("List the ids of the selection trees that can be opened."),
		mcp.WithOutputSchema[TreeList](),
	), mcp.NewStructuredToolHandler(s.handleListTrees))

	s.mcpServer.AddTool(mcp.NewTool("open_session",
		mcp.WithDescription("Open a selection session on a tree, or resume an existing session."),
		mcp.WithString("tree_id", mcp.Description("Tree to start from (optional when resuming)")),
		mcp.WithString("session_id", mcp.Description("Session to resume or create (generated when omitted)")),
		mcp.WithOutputSchema[SelectionResult](),
	), mcp.NewStructuredToolHandler(s.handleOpen))

	s.mcpServer.AddTool(mcp.NewTool("set_checked",
		mcp.WithDescription("Check or uncheck an item. Checking a parent checks its whole subtree."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithString("item_id", mcp.Required(), mcp.Description("Item id")),
		mcp.WithBoolean("checked", mcp.Required(), mcp.Description("Target checked state")),
		mcp.WithOutputSchema[SelectionResult](),
	), mcp.NewStructuredToolHandler(s.handleSetChecked))

	s.mcpServer.AddTool(mcp.NewTool("toggle_expansion",
		mcp.WithDescription("Expand or collapse an item of an expandable tree."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithString("item_id", mcp.Required(), mcp.Description("Item id")),
		mcp.WithOutputSchema[SelectionResult](),
	), mcp.NewStructuredToolHandler(s.handleToggleExpansion))

	s.mcpServer.AddTool(mcp.NewTool("clear_selection",
		mcp.WithDescription("Uncheck every item of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithOutputSchema[SelectionResult](),
	), mcp.NewStructuredToolHandler(s.handleClear))

	s.mcpServer.AddTool(mcp.NewTool("get_selection",
		mcp.WithDescription("Return the current item states and selected ids of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithOutputSchema[SelectionResult](),
	), mcp.NewStructuredToolHandler(s.handleGetSelection))
}

func (s *Server) handleListTrees(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (TreeList, error) {
	ids, err := s.service.ListTrees(ctx)
	if err != nil {
		return TreeList{}, fmt.Errorf("list trees: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return TreeList{Trees: ids}, nil
}

func (s *Server) handleOpen(ctx context.Context, _ mcp.CallToolRequest, raw map[string]any) (SelectionResult, error) {
	var args OpenArgs
	if err := decodeArgs(raw, &args); err != nil {
		return SelectionResult{}, err
	}
	if args.TreeID == "" && args.SessionID == "" {
		return SelectionResult{}, errors.New("tree_id or session_id is required")
	}
	up, err := s.service.Open(ctx, args.TreeID, args.SessionID)
	if err != nil {
		return SelectionResult{}, fmt.Errorf("open session: %w", err)
	}
	s.logger.Info("session opened", "session_id", up.Session.ID, "tree_id", up.Session.TreeID)
	return resultOf(up), nil
}

func (s *Server) handleSetChecked(ctx context.Context, _ mcp.CallToolRequest, raw map[string]any) (SelectionResult, error) {
	var args CheckArgs
	if err := decodeArgs(raw, &args); err != nil {
		return SelectionResult{}, err
	}
	up, err := s.service.SetChecked(ctx, args.SessionID, args.ItemID, args.Checked)
	if err != nil {
		return SelectionResult{}, err
	}
	return resultOf(up), nil
}

func (s *Server) handleToggleExpansion(ctx context.Context, _ mcp.CallToolRequest, raw map[string]any) (SelectionResult, error) {
	var args ItemArgs
	if err := decodeArgs(raw, &args); err != nil {
		return SelectionResult{}, err
	}
	up, err := s.service.ToggleExpansion(ctx, args.SessionID, args.ItemID)
	if err != nil {
		return SelectionResult{}, err
	}
	return resultOf(up), nil
}

func (s *Server) handleClear(ctx context.Context, _ mcp.CallToolRequest, raw map[string]any) (SelectionResult, error) {
	var args SessionArgs
	if err := decodeArgs(raw, &args); err != nil {
		return SelectionResult{}, err
	}
	up, err := s.service.ClearAll(ctx, args.SessionID)
	if err != nil {
		return SelectionResult{}, err
	}
	return resultOf(up), nil
}

func (s *Server) handleGetSelection(ctx context.Context, _ mcp.CallToolRequest, raw map[string]any) (SelectionResult, error) {
	var args SessionArgs
	if err := decodeArgs(raw, &args); err != nil {
		return SelectionResult{}, err
	}
	up, err := s.service.Get(ctx, args.SessionID)
	if err != nil {
		return SelectionResult{}, err
	}
	return resultOf(up), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(treesURI, "Available selection trees",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.service.ListTrees(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list trees: %w", err)
		}
		return jsonResource(treesURI, TreeList{Trees: ids})
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(treeTemplateURI, "Selection tree definition",
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, treesURI+"/")
		tr, err := s.service.Tree(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load tree %q: %w", id, err)
		}
		return jsonResource(request.Params.URI, tr)
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func resultOf(up *domain.Update) SelectionResult {
	selected := up.Selected
	if selected == nil {
		selected = []string{}
	}
	return SelectionResult{
		SessionID: up.Session.ID,
		TreeID:    up.Session.TreeID,
		Version:   up.Session.Version,
		States:    up.Session.States,
		Selected:  selected,
		Changed:   up.Diff != nil,
	}
}
