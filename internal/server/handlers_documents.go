package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-editor/internal/db"
	"github.com/jonathan/resume-editor/internal/editor"
	"github.com/jonathan/resume-editor/internal/migration"
	"github.com/jonathan/resume-editor/internal/pagination"
	"github.com/jonathan/resume-editor/internal/types"
)

// draftTimeout bounds a single background autosave.
const draftTimeout = 5 * time.Second

// DocumentResponse describes an open document
type DocumentResponse struct {
	ID           uuid.UUID       `json:"id"`
	Document     *types.Document `json:"document"`
	Notice       string          `json:"notice,omitempty"`
	MigratedFrom string          `json:"migrated_from"`
	CanUndo      bool            `json:"can_undo"`
	CanRedo      bool            `json:"can_redo"`
}

// SaveResponse reports how many stores accepted a save
type SaveResponse struct {
	ID     uuid.UUID `json:"id"`
	Saved  int       `json:"saved"`
	Stores int       `json:"stores"`
}

// ListResponse is returned by GET /documents
type ListResponse struct {
	Documents []db.DocumentSummary `json:"documents"`
}

func documentResponse(session *editor.Session) DocumentResponse {
	return DocumentResponse{
		ID:           session.ID(),
		Document:     session.Document(),
		Notice:       session.Notice(),
		MigratedFrom: session.MigratedFrom().String(),
		CanUndo:      session.CanUndo(),
		CanRedo:      session.CanRedo(),
	}
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

// session returns the open session for id, loading it from the draft store
// or durable storage when it is not open yet.
func (s *Server) session(ctx context.Context, id uuid.UUID) (*editor.Session, error) {
	session, _, err := s.registry.GetOrOpen(id, func() (any, error) {
		return s.loadRaw(ctx, id)
	})
	return session, err
}

// loadRaw reads the unmigrated content for id. A newer draft wins over the
// stored copy.
func (s *Server) loadRaw(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	if s.drafts != nil {
		draft, err := s.drafts.Load(ctx, id)
		if err != nil {
			s.log.Warn("draft load failed", "document_id", id.String(), "error", err)
		}
		if draft != nil {
			return draft, nil
		}
	}
	if s.store != nil {
		rec, err := s.store.GetDocument(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec.Content, nil
		}
	}
	return nil, &ErrNotFound{ID: id}
}

// sessionFor resolves the request's document, writing the error reply when it
// cannot.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	id, err := pathID(r)
	if err != nil {
		s.errorFrom(w, err)
		return nil, false
	}
	session, err := s.session(r.Context(), id)
	if err != nil {
		s.errorFrom(w, err)
		return nil, false
	}
	return session, true
}

// handleListDocuments lists stored documents
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorFrom(w, &ErrNoStore{})
		return
	}

	limit := db.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.errorFrom(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	docs, err := s.store.ListDocuments(r.Context(), limit)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	if docs == nil {
		docs = []db.DocumentSummary{}
	}
	s.jsonResponse(w, http.StatusOK, ListResponse{Documents: docs})
}

// handleGetDocument opens a document for editing
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, documentResponse(session))
}

// handlePutDocument replaces the document content as one edit. Unknown ids
// start a new session.
func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	doc, err := migration.EnsureCurrent(json.RawMessage(body))
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	fromBody := false
	session, opened, err := s.registry.GetOrOpen(id, func() (any, error) {
		raw, err := s.loadRaw(r.Context(), id)
		var notFound *ErrNotFound
		if errors.As(err, &notFound) {
			fromBody = true
			return doc, nil
		}
		return raw, err
	})
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	if !opened || !fromBody {
		session.Edit(func(current *types.Document) {
			*current = *doc
		})
	}

	s.autosave(id, session.Document())
	s.jsonResponse(w, http.StatusOK, documentResponse(session))
}

// autosave writes a draft in the background. Failures are logged only.
func (s *Server) autosave(id uuid.UUID, doc *types.Document) {
	if s.drafts == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), draftTimeout)
		defer cancel()
		if err := s.drafts.SaveDocument(ctx, id, doc); err != nil {
			s.log.Warn("draft autosave failed", "document_id", id.String(), "error", err)
		}
	}()
}

// handleDeleteDocument closes the session and removes the stored copy
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	deleted := false
	if s.store != nil {
		deleted, err = s.store.DeleteDocument(r.Context(), id)
		if err != nil {
			s.errorFrom(w, err)
			return
		}
	}
	if s.drafts != nil {
		if err := s.drafts.Discard(r.Context(), id); err != nil {
			s.log.Warn("draft discard failed", "document_id", id.String(), "error", err)
		}
	}
	if closed := s.registry.Close(id); !closed && !deleted {
		s.errorFrom(w, &ErrNotFound{ID: id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRevert discards unsaved edits, the draft and the undo history,
// reloading the stored copy.
func (s *Server) handleRevert(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorFrom(w, &ErrNoStore{})
		return
	}
	session, ok := s.sessionFor(w, r)
	if !ok {
		return
	}

	id := session.ID()
	rec, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	if rec == nil {
		s.errorFrom(w, &ErrNotFound{ID: id})
		return
	}
	if err := session.Replace(rec.Content); err != nil {
		s.errorFrom(w, err)
		return
	}
	if s.drafts != nil {
		if err := s.drafts.Discard(r.Context(), id); err != nil {
			s.log.Warn("draft discard failed", "document_id", id.String(), "error", err)
		}
	}
	s.jsonResponse(w, http.StatusOK, documentResponse(session))
}

// handleUndo steps the document back one history entry
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	session.Undo()
	s.jsonResponse(w, http.StatusOK, documentResponse(session))
}

// handleRedo steps the document forward one history entry
func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	session.Redo()
	s.jsonResponse(w, http.StatusOK, documentResponse(session))
}

// handleSave commits pending edits and writes the document to every
// configured store.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFor(w, r)
	if !ok {
		return
	}

	var stores []editor.Store
	if s.store != nil {
		stores = append(stores, s.store)
	}
	if s.drafts != nil {
		stores = append(stores, s.drafts)
	}
	if len(stores) == 0 {
		s.errorFrom(w, &ErrNoStore{})
		return
	}

	saved := session.Save(r.Context(), stores...)
	s.jsonResponse(w, http.StatusOK, SaveResponse{
		ID:     session.ID(),
		Saved:  saved,
		Stores: len(stores),
	})
}

// handleLayout paginates the document from geometry measured by the client's
// renderer.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFor(w, r)
	if !ok {
		return
	}

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

	layout, err := session.Layout(r.Context(), pagination.NewFlowSurface(req.Blocks, req.ContentHeight))
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, layout)
}
