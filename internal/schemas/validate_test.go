package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-editor/internal/migration"
	"github.com/jonathan/resume-editor/internal/types"
)

func TestValidateDocument_NewDocument(t *testing.T) {
	assert.NoError(t, ValidateDocument(types.NewDocument()))
}

func TestValidateDocument_MigratedLegacy(t *testing.T) {
	doc, err := migration.EnsureCurrent(map[string]interface{}{
		"name":       "Jane Doe",
		"linkedin":   "jane-doe",
		"skills":     []interface{}{"Go", "SQL"},
		"experience": []interface{}{map[string]interface{}{"company": "Acme", "highlights": []interface{}{"Shipped"}}},
		"education":  []interface{}{map[string]interface{}{"school": "MIT", "courses": []interface{}{"Algorithms"}}},
		"languages":  []interface{}{"English"},
	})
	require.NoError(t, err)
	assert.NoError(t, ValidateDocument(doc))
}

func TestValidateDocument_RejectsWrongShape(t *testing.T) {
	doc := map[string]interface{}{
		"schemaVersion": 1,
		"basics":        "Jane",
	}
	err := ValidateDocument(doc)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	fields := make([]string, 0, len(validationErr.Errors))
	for _, fe := range validationErr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "schemaVersion")
	assert.Contains(t, fields, "basics")
}

func TestValidateImport(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "legacy flat", raw: `{"name":"Jane","skills":["Go"],"experience":[]}`},
		{name: "intermediate", raw: `{"schemaVersion":1,"basics":{"name":"Jane"},"skills":[{"name":"Go"}]}`},
		{name: "empty object", raw: `{}`},
		{name: "array root", raw: `[1,2]`, wantErr: true},
		{name: "basics not object", raw: `{"basics":"Jane"}`, wantErr: true},
		{name: "negative version", raw: `{"schemaVersion":-1}`, wantErr: true},
		{name: "work not array", raw: `{"work":{"name":"Acme"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImport([]byte(tt.raw))
			if tt.wantErr {
				var validationErr *ValidationError
				assert.True(t, errors.As(err, &validationErr), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateImport_MalformedJSON(t *testing.T) {
	err := ValidateImport([]byte("{ invalid json }"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode document")
}

func writeSchema(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateAgainst(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeSchema(t, dir, "house.schema.json", `{
		"type": "object",
		"properties": {
			"basics": {
				"type": "object",
				"properties": {"email": {"type": "string", "minLength": 1}}
			}
		}
	}`)

	doc := types.NewDocument()
	err := ValidateAgainst(schemaPath, doc)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr), "got %v", err)
	require.Len(t, validationErr.Errors, 1)
	assert.Equal(t, "basics.email", validationErr.Errors[0].Field)

	doc.Basics.Email = "jane@example.com"
	assert.NoError(t, ValidateAgainst(schemaPath, doc))
}

func TestValidateAgainst_RelativeRef(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "name.json", `{"type": "string", "minLength": 1}`)
	schemaPath := writeSchema(t, dir, "root.json", `{
		"type": "object",
		"properties": {"basics": {"type": "object", "properties": {"name": {"$ref": "name.json"}}}}
	}`)

	doc := types.NewDocument()
	assert.Error(t, ValidateAgainst(schemaPath, doc))

	doc.Basics.Name = "Jane"
	assert.NoError(t, ValidateAgainst(schemaPath, doc))
}

func TestValidateAgainst_BadSchema(t *testing.T) {
	dir := t.TempDir()

	err := ValidateAgainst(filepath.Join(dir, "missing.json"), types.NewDocument())
	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = ValidateAgainst(writeSchema(t, dir, "broken.json", `{"type":`), types.NewDocument())
	assert.True(t, errors.As(err, &loadErr), "got %v", err)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "basics", Message: "Invalid type"},
		{Field: "(root)", Message: "skills is required"},
	}}
	assert.Equal(t, "validation failed:\n  1. basics: Invalid type\n  2. (root): skills is required\n", err.Error())
}
