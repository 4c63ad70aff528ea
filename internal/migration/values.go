package migration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/resume-editor/internal/types"
)

// toMap turns the raw input into a read-only object view without copying maps
// that are already decoded.
func toMap(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, &InvalidDocumentError{Message: "document is empty"}
	case map[string]any:
		return v, nil
	case []any:
		return nil, &InvalidDocumentError{Message: "array at document root"}
	case json.RawMessage:
		return decodeObject(v)
	case []byte:
		return decodeObject(v)
	case types.Document:
		return structToMap(&v)
	case *types.Document:
		if v == nil {
			return nil, &InvalidDocumentError{Message: "document is empty"}
		}
		return structToMap(v)
	case string, bool, float64, float32, int, int64, json.Number:
		return nil, &InvalidDocumentError{Message: fmt.Sprintf("document root is a %T, not an object", raw)}
	default:
		return structToMap(raw)
	}
}

func decodeObject(data []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &InvalidDocumentError{Message: "document is empty"}
	}
	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return nil, &InvalidDocumentError{Message: "failed to decode JSON", Cause: err}
	}
	if decoded == nil {
		return nil, &InvalidDocumentError{Message: "document is empty"}
	}
	return toMap(decoded)
}

func structToMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &InvalidDocumentError{Message: fmt.Sprintf("unsupported document type %T", v), Cause: err}
	}
	return decodeObject(data)
}

// obj returns v as an object, or nil.
func obj(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// list returns v as a list of values, or nil.
func list(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out
	default:
		return nil
	}
}

// objList returns the object items of v, skipping anything else.
func objList(v any) []map[string]any {
	items := list(v)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m := obj(item); m != nil {
			out = append(out, m)
		}
	}
	return out
}

// str stringifies scalars; objects, lists and nil become "".
func str(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// field reads the first non-empty scalar among keys.
func field(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := str(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// strList returns the non-blank scalar items of v. Never nil.
func strList(v any) []string {
	items := list(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := str(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
