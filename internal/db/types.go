package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit caps ListDocuments when no limit is given.
const DefaultListLimit = 50

// DocumentRecord is a stored document row. Content is the JSON exactly as it
// was saved and may be in any schema version.
type DocumentRecord struct {
	ID            uuid.UUID       `json:"id"`
	SchemaVersion int             `json:"schema_version"`
	Content       json.RawMessage `json:"content"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// DocumentSummary is a listing entry.
type DocumentSummary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	SchemaVersion int       `json:"schema_version"`
	UpdatedAt     time.Time `json:"updated_at"`
}
