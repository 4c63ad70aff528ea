// Package db provides PostgreSQL storage for resume documents.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resume-editor/internal/types"
)

// schemaSQL creates the documents table. Content is stored exactly as last
// saved; readers migrate it on load.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id             UUID PRIMARY KEY,
	schema_version INTEGER NOT NULL DEFAULT 0,
	content        JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS documents_updated_at_idx ON documents (updated_at DESC);
`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the tables used by the editor if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// GetDocument retrieves the stored record for id. It returns nil, nil when no
// document is stored under id.
func (db *DB) GetDocument(ctx context.Context, id uuid.UUID) (*DocumentRecord, error) {
	var rec DocumentRecord
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, schema_version, content, created_at, updated_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.SchemaVersion, &content, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	rec.Content = json.RawMessage(content)
	return &rec, nil
}

// SaveDocument upserts doc under id.
func (db *DB) SaveDocument(ctx context.Context, id uuid.UUID, doc *types.Document) error {
	content, version, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	return db.SaveRaw(ctx, id, version, content)
}

// SaveRaw upserts already-encoded content under id. It is used when importing
// documents that should be kept in the shape they arrived in.
func (db *DB) SaveRaw(ctx context.Context, id uuid.UUID, schemaVersion int, content []byte) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO documents (id, schema_version, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET schema_version = $2, content = $3, updated_at = NOW()`,
		id, schemaVersion, content,
	)
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", id, err)
	}
	return nil
}

// ListDocuments returns summaries of the most recently updated documents.
func (db *DB) ListDocuments(ctx context.Context, limit int) ([]DocumentSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, COALESCE(content->'basics'->>'name', content->>'name', ''), schema_version, updated_at
		 FROM documents ORDER BY updated_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	summaries := []DocumentSummary{}
	for rows.Next() {
		var s DocumentSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.SchemaVersion, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return summaries, nil
}

// DeleteDocument removes the document stored under id. It reports whether a
// document was removed.
func (db *DB) DeleteDocument(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func encodeDocument(doc *types.Document) ([]byte, int, error) {
	if doc == nil {
		return nil, 0, fmt.Errorf("cannot save nil document")
	}
	content, err := json.Marshal(doc)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal document: %w", err)
	}
	return content, doc.SchemaVersion, nil
}
