// Package server provides the HTTP REST API for the resume editor.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-editor/internal/config"
	"github.com/jonathan/resume-editor/internal/db"
	"github.com/jonathan/resume-editor/internal/editor"
	"github.com/jonathan/resume-editor/internal/logger"
	"github.com/jonathan/resume-editor/internal/server/middleware"
	"github.com/jonathan/resume-editor/internal/server/ratelimit"
	"github.com/jonathan/resume-editor/internal/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 2 << 20

// DocumentStore is the durable storage collaborator.
type DocumentStore interface {
	GetDocument(ctx context.Context, id uuid.UUID) (*db.DocumentRecord, error)
	SaveDocument(ctx context.Context, id uuid.UUID, doc *types.Document) error
	ListDocuments(ctx context.Context, limit int) ([]db.DocumentSummary, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) (bool, error)
}

// DraftStore keeps autosave copies between explicit saves.
type DraftStore interface {
	SaveDocument(ctx context.Context, id uuid.UUID, doc *types.Document) error
	Load(ctx context.Context, id uuid.UUID) (json.RawMessage, error)
	Discard(ctx context.Context, id uuid.UUID) error
}

// Deps are the collaborators a Server is built from. Every field is optional:
// without Store, documents live only in open sessions; without Tokens,
// document routes are unauthenticated.
type Deps struct {
	Store    DocumentStore
	Drafts   DraftStore
	Registry *editor.Registry
	Tokens   middleware.TokenValidator
	Limiter  *ratelimit.Limiter
	Logger   *logger.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	cfg        config.Config
	store      DocumentStore
	drafts     DraftStore
	registry   *editor.Registry
	limiter    *ratelimit.Limiter
	log        *logger.Logger
}

// New creates a new server instance
func New(cfg config.Config, deps Deps) *Server {
	s := &Server{
		cfg:      cfg,
		store:    deps.Store,
		drafts:   deps.Drafts,
		registry: deps.Registry,
		limiter:  deps.Limiter,
		log:      deps.Logger,
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.registry == nil {
		s.registry = editor.NewRegistry(editor.WithLogger(s.log))
	}

	auth := func(h http.HandlerFunc) http.Handler { return h }
	if deps.Tokens != nil {
		authMW := middleware.AuthMiddleware(deps.Tokens)
		auth = func(h http.HandlerFunc) http.Handler { return authMW(h) }
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Stateless document operations
	mux.HandleFunc("POST /migrate", s.handleMigrate)
	mux.HandleFunc("POST /import", s.handleImport)
	mux.HandleFunc("POST /paginate", s.handlePaginate)

	// Editing sessions
	mux.Handle("GET /documents", auth(s.handleListDocuments))
	mux.Handle("GET /documents/{id}", auth(s.handleGetDocument))
	mux.Handle("PUT /documents/{id}", auth(s.handlePutDocument))
	mux.Handle("DELETE /documents/{id}", auth(s.handleDeleteDocument))
	mux.Handle("POST /documents/{id}/revert", auth(s.handleRevert))
	mux.Handle("POST /documents/{id}/undo", auth(s.handleUndo))
	mux.Handle("POST /documents/{id}/redo", auth(s.handleRedo))
	mux.Handle("POST /documents/{id}/save", auth(s.handleSave))
	mux.Handle("POST /documents/{id}/layout", auth(s.handleLayout))

	var handler http.Handler = s.withCORS(mux)
	handler = s.withLogging(handler)
	if s.limiter != nil {
		handler = s.withRateLimit(handler)
	}
	s.handler = handler

	port := cfg.Port
	if port == 0 {
		port = config.DefaultPort
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if s.limiter != nil {
		s.limiter.Stop()
	}
	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		kv := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", r.RemoteAddr,
		}
		if rec.status >= http.StatusInternalServerError {
			s.log.Error("request failed", kv...)
			return
		}
		s.log.Info("request", kv...)
	})
}

// withRateLimit rejects clients that exceed their per-endpoint budget.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.limiter.Allow(clientID(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
		}
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds()+0.999)))
			}
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID extracts the client identifier from the request.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, ErrorResponse{Error: message})
}

// errorFrom writes err with the status HTTPStatus assigns to it.
func (s *Server) errorFrom(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request error", "error", err)
		s.errorResponse(w, status, "internal error")
		return
	}
	var resp ErrorResponse
	resp.Error = err.Error()
	resp.Fields = fieldErrors(err)
	s.jsonResponse(w, status, resp)
}
