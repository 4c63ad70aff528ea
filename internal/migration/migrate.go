package migration

import (
	"github.com/jonathan/resume-editor/internal/types"
)

// step lifts a document object from one shape to the next.
type step struct {
	from  Version
	to    Version
	name  string
	apply func(map[string]any) map[string]any
}

// chain lists the object-to-object steps in order. Normalization into the
// typed current document always runs last.
var chain = []step{
	{from: VersionLegacy, to: VersionIntermediate, name: "lift-legacy", apply: liftLegacy},
}

// Report describes what a migration did
type Report struct {
	From  Version  `json:"from"`
	Steps []string `json:"steps"`
}

// Migrate lifts raw into the current schema and reports the steps taken.
// raw may be a decoded JSON value, JSON bytes, or a types.Document.
// The input is never mutated.
func Migrate(raw any) (*types.Document, Report, error) {
	m, err := toMap(raw)
	if err != nil {
		return nil, Report{}, err
	}

	version := detect(m)
	report := Report{From: version, Steps: []string{}}

	for _, s := range chain {
		if version != s.from {
			continue
		}
		m = s.apply(m)
		version = s.to
		report.Steps = append(report.Steps, s.name)
	}

	report.Steps = append(report.Steps, "normalize")
	return normalize(m), report, nil
}

// EnsureCurrent returns raw in the current schema shape. It is idempotent:
// EnsureCurrent(EnsureCurrent(x)) equals EnsureCurrent(x).
// Structurally invalid input yields an *InvalidDocumentError.
func EnsureCurrent(raw any) (*types.Document, error) {
	doc, _, err := Migrate(raw)
	return doc, err
}
