// Package editor ties the document lifecycle together: a raw stored value is
// migrated once on load, edits go through the undo history, and every change
// can be laid out into pages and handed to storage.
package editor

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/resume-editor/internal/history"
	"github.com/jonathan/resume-editor/internal/logger"
	"github.com/jonathan/resume-editor/internal/migration"
	"github.com/jonathan/resume-editor/internal/pagination"
	"github.com/jonathan/resume-editor/internal/types"
)

// UnreadableNotice is shown when a stored document could not be migrated and
// the session started from an empty document instead.
const UnreadableNotice = "The previous document could not be read and was replaced with an empty one."

// Store receives the current document for persistence.
type Store interface {
	SaveDocument(ctx context.Context, id uuid.UUID, doc *types.Document) error
}

// Option configures a Session
type Option func(*Session)

// WithID sets the document identifier. A random one is assigned otherwise.
func WithID(id uuid.UUID) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithHistory passes options through to the history manager.
func WithHistory(opts ...history.Option) Option {
	return func(s *Session) {
		s.historyOpts = append(s.historyOpts, opts...)
	}
}

// WithEngine sets the pagination engine used by Layout.
func WithEngine(e *pagination.Engine) Option {
	return func(s *Session) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// Session is one open document.
type Session struct {
	id          uuid.UUID
	history     *history.Manager[*types.Document]
	historyOpts []history.Option
	engine      *pagination.Engine
	log         *logger.Logger

	mu     sync.RWMutex
	notice string
	from   migration.Version
}

// Open migrates raw and starts a session on the result. Input that cannot be
// read as a document never fails the load: the session starts empty and
// Notice explains what happened.
func Open(raw any, opts ...Option) *Session {
	s := &Session{
		id:  uuid.New(),
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = pagination.New(pagination.DefaultCapacity, pagination.WithLogger(s.log))
	}
	s.log = s.log.With("document_id", s.id.String())

	doc, report, err := migration.Migrate(raw)
	if err != nil {
		var invalid *migration.InvalidDocumentError
		if errors.As(err, &invalid) {
			s.log.Warn("stored document unreadable, starting empty", "error", invalid.Message)
		} else {
			s.log.Error("document load failed, starting empty", "error", err)
		}
		doc = types.NewDocument()
		s.notice = UnreadableNotice
	} else {
		s.from = report.From
		s.log.Debug("document loaded", "from", report.From.String(), "steps", report.Steps)
	}

	s.history = history.New(doc, s.historyOpts...)
	return s
}

// ID returns the document identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Notice returns a user-facing message about the load, or "".
func (s *Session) Notice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notice
}

// MigratedFrom returns the schema version the document was stored in.
func (s *Session) MigratedFrom() migration.Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.from
}

// Document returns a copy of the visible document.
func (s *Session) Document() *types.Document {
	return s.history.Value().Clone()
}

// Edit applies fn to a copy of the visible document and records the result.
func (s *Session) Edit(fn func(doc *types.Document)) {
	s.history.Update(func(cur *types.Document) *types.Document {
		next := cur.Clone()
		fn(next)
		return next
	})
}

// Replace loads raw into the session, discarding the undo history. The
// session is left unchanged when raw cannot be read.
func (s *Session) Replace(raw any) error {
	doc, report, err := migration.Migrate(raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.from = report.From
	s.notice = ""
	s.mu.Unlock()
	s.history.Reset(doc)
	s.log.Debug("document replaced", "from", report.From.String())
	return nil
}

// Undo steps back one history entry.
func (s *Session) Undo() {
	s.history.Undo()
}

// Redo steps forward one history entry.
func (s *Session) Redo() {
	s.history.Redo()
}

// CanUndo reports whether Undo would change the document.
func (s *Session) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would change the document.
func (s *Session) CanRedo() bool {
	return s.history.CanRedo()
}

// Flush commits a pending edit to the history immediately.
func (s *Session) Flush() bool {
	return s.history.Flush()
}

// History exposes the underlying history manager.
func (s *Session) History() *history.Manager[*types.Document] {
	return s.history
}

// Layout paginates the rendered form of the current document.
func (s *Session) Layout(ctx context.Context, surface pagination.Surface) (types.Layout, error) {
	return s.engine.Recompute(ctx, surface)
}

// Save commits any pending edit and hands the document to every store.
// Storage may fail silently (full quota, unavailable backend); failures are
// logged and never surface to the editing flow. It reports how many stores
// accepted the document.
func (s *Session) Save(ctx context.Context, stores ...Store) int {
	s.history.Flush()
	doc := s.history.Value()

	saved := 0
	for _, store := range stores {
		if store == nil {
			continue
		}
		if err := store.SaveDocument(ctx, s.id, doc); err != nil {
			s.log.Warn("document save failed", "error", err)
			continue
		}
		saved++
	}
	return saved
}
