package db

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-editor/internal/types"
)

func TestEncodeDocument(t *testing.T) {
	doc := types.NewDocument()
	doc.Basics.Name = "Jane Doe"

	content, version, err := encodeDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, types.CurrentSchemaVersion, version)

	var decoded types.Document
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, *doc, decoded)
}

func TestEncodeDocument_Nil(t *testing.T) {
	_, _, err := encodeDocument(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil document")
}

func TestSchemaSQL(t *testing.T) {
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS documents")
	assert.Contains(t, schemaSQL, "content        JSONB NOT NULL")
}

func TestDocumentRecord_JSON(t *testing.T) {
	rec := DocumentRecord{SchemaVersion: 1, Content: json.RawMessage(`{"name":"Jane"}`)}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"content":{"name":"Jane"}`)
	assert.Contains(t, string(data), `"schema_version":1`)
}
