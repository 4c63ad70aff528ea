package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resume-editor/internal/migration"
	"github.com/jonathan/resume-editor/internal/schemas"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

// FieldError points at one offending request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrNotFound indicates the document is neither open nor stored
type ErrNotFound struct {
	ID uuid.UUID
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("document not found: %s", e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNoStore indicates an operation needs durable storage that is not configured
type ErrNoStore struct{}

func (e *ErrNoStore) Error() string {
	return "document storage is not configured"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound    *ErrNotFound
		validation  *ErrValidation
		noStore     *ErrNoStore
		invalidDoc  *migration.InvalidDocumentError
		schemaErr   *schemas.ValidationError
		fieldsErr   validator.ValidationErrors
		tooLargeErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &fieldsErr):
		return http.StatusBadRequest
	case errors.As(err, &invalidDoc), errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &noStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fieldErrors lists the offending fields carried by err, if any.
func fieldErrors(err error) []FieldError {
	var schemaErr *schemas.ValidationError
	if errors.As(err, &schemaErr) {
		out := make([]FieldError, 0, len(schemaErr.Errors))
		for _, fe := range schemaErr.Errors {
			out = append(out, FieldError{Field: fe.Field, Message: fe.Message})
		}
		return out
	}

	var fieldsErr validator.ValidationErrors
	if errors.As(err, &fieldsErr) {
		out := make([]FieldError, 0, len(fieldsErr))
		for _, fe := range fieldsErr {
			out = append(out, FieldError{
				Field:   strings.ToLower(fe.Namespace()),
				Message: fmt.Sprintf("failed '%s' validation", fe.Tag()),
			})
		}
		return out
	}

	var validation *ErrValidation
	if errors.As(err, &validation) {
		return []FieldError{{Field: validation.Field, Message: validation.Message}}
	}
	return nil
}
