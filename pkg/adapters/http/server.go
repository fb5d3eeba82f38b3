package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/aretw0/heartsquest"
	"github.com/aretw0/heartsquest/internal/presentation/graph"
	"github.com/aretw0/heartsquest/pkg/content"
	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/ports"
	"github.com/aretw0/heartsquest/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
)

// maxIntentBytes bounds the body of an intent request.
const maxIntentBytes = 64 << 10

// Engine defines what the HTTP adapter needs from the quest engine.
type Engine interface {
	Create(ctx context.Context) (string, ports.Flow, error)
	Resume(ctx context.Context, sessionID string) (ports.Flow, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
	Table() *content.Table
}

// Server serves the routes described by openapi.yaml.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	Logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{
		Engine: engine,
		Logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams = NewStreamManager(server.Logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/graph", server.GetGraph)
	r.Get("/graph/mermaid", server.GetGraphMermaid)
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", server.ListSessions)
		r.Post("/", server.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", server.withSession(server.GetSession))
			r.Delete("/", server.DeleteSession)
			r.Post("/intents", server.withSession(server.SendIntent))
			r.Get("/events", server.withSession(server.SubscribeEvents))
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Hearts Quest API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

// sessionHandler is a route bound to the live flow of the {id} session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sessionID string, flow ports.Flow)

// withSession binds the {id} path parameter and resumes its flow.
// Unknown sessions are 404: only POST /sessions creates one.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		flow, err := s.Engine.Resume(r.Context(), sessionID)
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("Session error: %v", err), http.StatusInternalServerError)
			s.Logger.Error("Resume failed", "session_id", sessionID, "err", err)
			return
		}
		next(w, r, sessionID, flow)
	}
}

func sessionParam(r *http.Request) (string, error) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", fmt.Errorf("Invalid format for parameter id: %w", err)
	}
	return id, nil
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "heartsquest-http",
		"version":     strings.TrimSpace(heartsquest.Version),
		"api_version": apiVersion,
		"quest":       s.Engine.Table().Title,
	})
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Table().Graph())
}

// GetGraphMermaid handles the GET /graph/mermaid request.
func (s *Server) GetGraphMermaid(w http.ResponseWriter, r *http.Request) {
	var sessionID *string
	if err := runtime.BindQueryParameter("form", true, false, "session_id", r.URL.Query(), &sessionID); err != nil {
		http.Error(w, fmt.Sprintf("Invalid format for parameter session_id: %v", err), http.StatusBadRequest)
		return
	}

	var overlay *graph.GraphOverlay
	if sessionID != nil && *sessionID != "" {
		flow, err := s.Engine.Resume(r.Context(), *sessionID)
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("Session error: %v", err), http.StatusInternalServerError)
			return
		}
		overlay = graph.OverlayFrom(flow.Snapshot())
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(s.Engine.Table().Graph(), overlay))
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("List sessions failed", "err", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, flow, err := s.Engine.Create(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Create error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("Create session failed", "err", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": id,
		"view":       flow.View(),
	})
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, _ string, flow ports.Flow) {
	s.writeJSON(w, http.StatusOK, flow.View())
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.Streams.CloseSession(sessionID)
	if err := s.Engine.Delete(r.Context(), sessionID); err != nil {
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("Delete session failed", "session_id", sessionID, "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendIntent handles the POST /sessions/{id}/intents request.
func (s *Server) SendIntent(w http.ResponseWriter, r *http.Request, sessionID string, flow ports.Flow) {
	var intent domain.Intent
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIntentBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&intent); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("SendIntent: Invalid request body", "session_id", sessionID, "err", err)
		return
	}

	resp, err := runner.DispatchAndView(r.Context(), flow, intent)
	switch {
	case errors.Is(err, domain.ErrFlowClosed):
		http.Error(w, "Session closed", http.StatusConflict)
		return
	case err != nil:
		http.Error(w, fmt.Sprintf("Intent rejected: %v", err), http.StatusBadRequest)
		s.Logger.Warn("SendIntent: Intent rejected", "session_id", sessionID, "kind", intent.Kind, "err", err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// SubscribeEvents handles the GET /sessions/{id}/events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, sessionID string, flow ports.Flow) {
	var watch []string
	if err := runtime.BindQueryParameter("form", false, false, "watch", r.URL.Query(), &watch); err != nil {
		http.Error(w, fmt.Sprintf("Invalid format for parameter watch: %v", err), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.Logger.Info("SSE: Subscribing to Session Updates", "session_id", sessionID)
	ch, cancel := s.Streams.Subscribe(sessionID, flow)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !watched(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// watched reports whether a diff touches one of the watched fields.
// Full loads and rewinds always pass.
func watched(msg string, fields []string) bool {
	var diff domain.ProgressDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	if diff.Rewind {
		return true
	}
	has := map[string]bool{
		"current_step":     diff.CurrentStep != nil,
		"highest_unlocked": diff.HighestUnlocked != nil,
		"answer":           diff.Answer != nil,
		"completed":        len(diff.Completed) > 0,
		"history":          len(diff.History) > 0,
		"games":            len(diff.Games) > 0,
	}
	return slices.ContainsFunc(fields, func(f string) bool {
		return has[strings.TrimSpace(f)]
	})
}
