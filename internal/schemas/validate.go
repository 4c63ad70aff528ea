// Package schemas provides JSON Schema validation for stored and imported documents.
package schemas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	shipped "github.com/jonathan/resume-editor/schemas"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

type compiled struct {
	once   sync.Once
	name   string
	schema *gojsonschema.Schema
	err    error
}

func (c *compiled) load() (*gojsonschema.Schema, error) {
	c.once.Do(func() {
		data, err := shipped.FS.ReadFile(c.name)
		if err != nil {
			c.err = &SchemaLoadError{Path: c.name, Message: "schema not embedded", Cause: err}
			return
		}
		c.schema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			c.err = &SchemaLoadError{Path: c.name, Message: "invalid schema", Cause: err}
		}
	})
	return c.schema, c.err
}

var (
	documentSchema = &compiled{name: shipped.Document}
	importSchema   = &compiled{name: shipped.Import}
)

// ValidateDocument checks a value in the current document shape, typically a
// *types.Document, against the shipped document schema.
func ValidateDocument(doc interface{}) error {
	return validateWith(documentSchema, gojsonschema.NewGoLoader(doc))
}

// ValidateImport checks that raw JSON is structurally importable: an object
// whose well-known fields have the expected JSON types. It accepts every
// editor version's shape.
func ValidateImport(raw []byte) error {
	return validateWith(importSchema, gojsonschema.NewBytesLoader(raw))
}

func validateWith(c *compiled, document gojsonschema.JSONLoader) error {
	schema, err := c.load()
	if err != nil {
		return err
	}
	result, err := schema.Validate(document)
	if err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return resultError(result)
}

// ValidateAgainst checks doc against the JSON Schema file at schemaPath.
// Relative $ref values resolve against the schema's directory.
func ValidateAgainst(schemaPath string, doc interface{}) error {
	absPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to resolve schema path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return &SchemaLoadError{Path: absPath, Message: "schema file not readable", Cause: err}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(absPath)))
	if err != nil {
		return &SchemaLoadError{Path: absPath, Message: "invalid schema", Cause: err}
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return resultError(result)
}

func resultError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
