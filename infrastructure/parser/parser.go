// Package parser reads host configuration documents in YAML, TOML, or JSON
// into a generic tree of JSON-compatible values.
package parser

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/superfaceai/one-sdk-sub004/domain/ports"
)

// ForFormat returns the parser for a format name: "yaml", "yml", "toml", or
// "json".
func ForFormat(format string) (ports.ConfigParser, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return NewYAMLParser(), nil
	case "toml":
		return NewTOMLParser(), nil
	case "json":
		return NewJSONParser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

// ForPath picks a parser from the file extension of path.
func ForPath(path string) (ports.ConfigParser, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("config file %q has no extension", path)
	}
	return ForFormat(ext)
}

// normalize re-encodes a decoded document through JSON so every parser
// yields the same value types: map[string]any, []any, string, float64,
// bool, and nil.
func normalize(format string, v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s document is not JSON compatible: %w", format, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s document must be a mapping: %w", format, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}
