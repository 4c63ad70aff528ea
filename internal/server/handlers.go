package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/resume-editor/internal/migration"
	"github.com/jonathan/resume-editor/internal/pagination"
	"github.com/jonathan/resume-editor/internal/schemas"
	"github.com/jonathan/resume-editor/internal/types"
)

// MigrateResponse is returned by /migrate
type MigrateResponse struct {
	Document *types.Document `json:"document"`
	From     string          `json:"from"`
	Steps    []string        `json:"steps"`
}

// ImportResponse is returned by /import
type ImportResponse struct {
	ID       uuid.UUID       `json:"id"`
	Document *types.Document `json:"document"`
	From     string          `json:"from"`
	Stored   bool            `json:"stored"`
}

// readBody reads a bounded request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return body, nil
}

// handleMigrate lifts any stored document into the current shape.
func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	doc, report, err := migration.Migrate(json.RawMessage(body))
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, MigrateResponse{
		Document: doc,
		From:     report.From.String(),
		Steps:    report.Steps,
	})
}

// handleImport checks an uploaded document's structure, migrates it and
// opens an editing session for it.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	if !json.Valid(body) {
		s.errorFrom(w, &migration.InvalidDocumentError{Message: "document is not valid JSON"})
		return
	}
	if err := schemas.ValidateImport(body); err != nil {
		s.errorFrom(w, err)
		return
	}

	doc, report, err := migration.Migrate(json.RawMessage(body))
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	id := uuid.New()
	session := s.registry.Open(id, doc)
	doc = session.Document()
	stored := false
	if s.store != nil {
		if err := s.store.SaveDocument(r.Context(), id, doc); err != nil {
			s.log.Warn("imported document not stored", "document_id", id.String(), "error", err)
		} else {
			stored = true
		}
	}

	s.jsonResponse(w, http.StatusCreated, ImportResponse{
		ID:       id,
		Document: doc,
		From:     report.From.String(),
		Stored:   stored,
	})
}

// handlePaginate lays out geometry reported by a renderer.
func (s *Server) handlePaginate(w http.ResponseWriter, r *http.Request) {
	var req types.PaginateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Capacity == 0 {
		req.Capacity = s.pageCapacity()
	}
	if err := req.Validate(); err != nil {
		s.errorFrom(w, err)
		return
	}

	layout := pagination.Paginate(req.Blocks, req.ContentHeight, req.Capacity, s.engineOptions()...)
	s.jsonResponse(w, http.StatusOK, layout)
}

func (s *Server) pageCapacity() float64 {
	if s.cfg.PageCapacity > 0 {
		return s.cfg.PageCapacity
	}
	return pagination.DefaultCapacity
}

func (s *Server) engineOptions() []pagination.Option {
	opts := []pagination.Option{pagination.WithLogger(s.log)}
	if s.cfg.MaxIterations > 0 {
		opts = append(opts, pagination.WithMaxIterations(s.cfg.MaxIterations))
	}
	return opts
}
