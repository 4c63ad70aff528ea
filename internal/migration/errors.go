// Package migration lifts stored resume documents of any editor version into the current schema.
package migration

import "fmt"

// InvalidDocumentError is returned when the input is not minimally shaped as a
// document object (nil, a scalar, an array at the root, or undecodable JSON).
type InvalidDocumentError struct {
	Message string
	Cause   error
}

func (e *InvalidDocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid document: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid document: %s", e.Message)
}

func (e *InvalidDocumentError) Unwrap() error {
	return e.Cause
}
