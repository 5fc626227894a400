package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Format is the serialisation of a pathway document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

// Parse decodes a document into a generic tree.
// JSON and YAML produce the same shapes: objects are map[string]any, arrays are []any.
func Parse(data []byte, format Format) (map[string]any, error) {
	var raw any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
		if dec.More() {
			return nil, fmt.Errorf("failed to parse json: trailing data after document")
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	tree, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document root must be an object, got %T", raw)
	}
	return tree, nil
}

// normalize rewrites YAML-specific shapes so that the rest of the compiler only sees
// JSON-compatible values.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return v
	}
}
