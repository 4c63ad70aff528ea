// Package schemas holds the JSON Schema documents shipped with the editor.
package schemas

import "embed"

// Schema file names.
const (
	Document = "document.schema.json"
	Import   = "import.schema.json"
)

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
