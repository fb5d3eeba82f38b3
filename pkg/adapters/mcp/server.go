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

	"github.com/aretw0/heartsquest"
	"github.com/aretw0/heartsquest/internal/presentation/graph"
	"github.com/aretw0/heartsquest/pkg/content"
	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/ports"
	"github.com/aretw0/heartsquest/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

const (
	graphURI   = "heartsquest://graph"
	mermaidURI = "heartsquest://graph/mermaid"
)

// SessionResponse aligns with the OpenAPI schema of POST /sessions.
type SessionResponse struct {
	SessionID string      `json:"session_id" jsonschema_description:"The session the view belongs to"`
	View      domain.View `json:"view" jsonschema_description:"The current screen of the session"`
}

// IntentResponse aligns with the OpenAPI schema of POST /sessions/{id}/intents.
type IntentResponse struct {
	SessionID string         `json:"session_id"`
	Outcome   domain.Outcome `json:"outcome" jsonschema_description:"Whether the intent changed the session"`
	View      domain.View    `json:"view" jsonschema_description:"The screen after the intent"`
}

// SessionArgs selects a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// IntentArgs is a domain.Intent addressed to a session.
type IntentArgs struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Text      string `json:"text,omitempty"`
	Node      string `json:"node,omitempty"`
	Game      string `json:"game,omitempty"`
	Action    string `json:"action,omitempty"`
	Index     int    `json:"index,omitempty"`
	Value     string `json:"value,omitempty"`
}

func (a IntentArgs) intent() domain.Intent {
	return domain.Intent{
		Kind:   domain.IntentKind(a.Kind),
		Text:   a.Text,
		Node:   domain.StepID(a.Node),
		Game:   a.Game,
		Action: a.Action,
		Index:  a.Index,
		Value:  a.Value,
	}
}

// Engine defines what the MCP server needs from the quest engine.
type Engine interface {
	Create(ctx context.Context) (string, ports.Flow, error)
	Resume(ctx context.Context, sessionID string) (ports.Flow, error)
	List(ctx context.Context) ([]string, error)
	Table() *content.Table
}

// Server wraps the quest engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("heartsquest-mcp", strings.TrimSpace(heartsquest.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: start_session
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a new quest session and return its first screen."),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleStartSession))

	// TOOL: get_view
	s.mcpServer.AddTool(mcp.NewTool("get_view",
		mcp.WithDescription("Get the current screen of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID returned by start_session")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetView))

	// TOOL: send_intent
	s.mcpServer.AddTool(mcp.NewTool("send_intent",
		mcp.WithDescription("Send a player intent to a session. Intents that do not apply to the current screen are ignored (accepted=false)."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("kind", mcp.Required(),
			mcp.Enum("start", "answer", "submit", "select", "continue", "action", "frame", "reset"),
			mcp.Description("Intent kind")),
		mcp.WithString("text", mcp.Description("Answer text for answer/submit")),
		mcp.WithString("node", mcp.Description("Map node for select")),
		mcp.WithString("game", mcp.Description("Mini-game name for action")),
		mcp.WithString("action", mcp.Description("Mini-game action, see view.actions")),
		mcp.WithNumber("index", mcp.Description("Action argument index, or the frame count")),
		mcp.WithString("value", mcp.Description("Action argument value")),
		mcp.WithOutputSchema[IntentResponse](),
	), mcp.NewStructuredToolHandler(s.handleSendIntent))

	// TOOL: list_sessions
	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List the IDs of stored sessions."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.engine.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		return mcp.NewToolResultText(strings.Join(ids, "\n")), nil
	})

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the full step graph."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.engine.Table().Graph())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("graph failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleStartSession(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (SessionResponse, error) {
	id, flow, err := s.engine.Create(ctx)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return SessionResponse{SessionID: id, View: flow.View()}, nil
}

func (s *Server) handleGetView(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	flow, err := s.engine.Resume(ctx, args.SessionID)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("get view failed: %w", err)
	}
	return SessionResponse{SessionID: args.SessionID, View: flow.View()}, nil
}

func (s *Server) handleSendIntent(ctx context.Context, _ mcp.CallToolRequest, args IntentArgs) (IntentResponse, error) {
	flow, err := s.engine.Resume(ctx, args.SessionID)
	if err != nil {
		return IntentResponse{}, fmt.Errorf("send intent failed: %w", err)
	}

	rich, err := runner.DispatchAndView(ctx, flow, args.intent())
	if err != nil {
		s.logger.Warn("MCP SendIntent: Intent rejected", "session_id", args.SessionID, "kind", args.Kind, "err", err)
		return IntentResponse{}, fmt.Errorf("intent rejected: %w", err)
	}
	return IntentResponse{SessionID: args.SessionID, Outcome: rich.Outcome, View: rich.View}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: heartsquest://graph
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Step Graph",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Table().Graph())
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: heartsquest://graph/mermaid
	s.mcpServer.AddResource(mcp.NewResource(mermaidURI, "Step Graph (Mermaid)",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      mermaidURI,
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(s.engine.Table().Graph(), nil),
			},
		}, nil
	})
}
