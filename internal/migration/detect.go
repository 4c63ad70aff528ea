package migration

import "github.com/jonathan/resume-editor/internal/types"

// Version identifies a stored document shape.
type Version int

const (
	// VersionLegacy is the flat shape written before documents carried a schema tag.
	VersionLegacy Version = 0
	// VersionIntermediate is the sectioned shape with grouped skills and highlight lists.
	VersionIntermediate Version = 1
	// VersionCurrent is the normalized shape.
	VersionCurrent Version = types.CurrentSchemaVersion
)

func (v Version) String() string {
	switch v {
	case VersionLegacy:
		return "legacy"
	case VersionIntermediate:
		return "intermediate"
	case VersionCurrent:
		return "current"
	default:
		return "unknown"
	}
}

const schemaVersionKey = "schemaVersion"

// DetectVersion classifies raw without migrating it.
func DetectVersion(raw any) (Version, error) {
	m, err := toMap(raw)
	if err != nil {
		return VersionLegacy, err
	}
	return detect(m), nil
}

func detect(m map[string]any) Version {
	if tag, ok := m[schemaVersionKey]; ok {
		n, isNumber := number(tag)
		switch {
		case !isNumber, n == float64(VersionIntermediate):
			return VersionIntermediate
		case n != float64(VersionLegacy):
			// Unknown tags are handled as current-schema input.
			return VersionCurrent
		}
	}
	if isLegacy(m) {
		return VersionLegacy
	}
	return VersionIntermediate
}

// isLegacy reports whether an untagged document carries the flat legacy fingerprint.
func isLegacy(m map[string]any) bool {
	if obj(m["basics"]) != nil {
		return false
	}
	if _, ok := m["name"].(string); ok {
		return true
	}
	if list(m["experience"]) != nil {
		return true
	}
	skills := list(m["skills"])
	if len(skills) == 0 {
		return false
	}
	for _, s := range skills {
		if _, ok := s.(string); !ok {
			return false
		}
	}
	return true
}
