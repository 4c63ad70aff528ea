// Package types provides type definitions for structured data used throughout the resume editor.
package types

import (
	"github.com/go-playground/validator/v10"
)

// Block is a measurable unit of rendered content.
// Top and Bottom are measured against the top of the content container.
// Blocks are recomputed on every layout pass and never persisted.
type Block struct {
	Ordinal int     `json:"ordinal" validate:"gte=0"`
	Top     float64 `json:"top" validate:"gte=0"`
	Bottom  float64 `json:"bottom" validate:"gtefield=Top"`
	Atomic  bool    `json:"atomic"`
}

// Height returns the rendered height of the block.
func (b Block) Height() float64 {
	return b.Bottom - b.Top
}

// Page is a fixed-capacity viewport over the flowed content.
type Page struct {
	Index  int     `json:"index"`
	Offset float64 `json:"offset"`
	Height float64 `json:"height"`
}

// Layout is the result of one pagination pass.
type Layout struct {
	Capacity      float64         `json:"capacity"`
	Corrections   map[int]float64 `json:"corrections"`
	ContentHeight float64         `json:"content_height"`
	PageCount     int             `json:"page_count"`
	Pages         []Page          `json:"pages"`
	Iterations    int             `json:"iterations"`
	Converged     bool            `json:"converged"`
}

// PaginateRequest is the input for a pagination run over supplied geometry.
type PaginateRequest struct {
	Capacity      float64 `json:"capacity" validate:"gt=0"`
	ContentHeight float64 `json:"content_height" validate:"gte=0"`
	Blocks        []Block `json:"blocks" validate:"dive"`
}

// Validate validates the PaginateRequest using the validator.
func (r *PaginateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
