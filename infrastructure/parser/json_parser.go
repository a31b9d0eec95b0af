package parser

import (
	"encoding/json"
	"fmt"

	"github.com/superfaceai/one-sdk-sub004/domain/ports"
)

// JSONParser implements ports.ConfigParser for JSON.
type JSONParser struct{}

// NewJSONParser creates a new JSONParser.
func NewJSONParser() ports.ConfigParser {
	return &JSONParser{}
}

func (p *JSONParser) Parse(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func (p *JSONParser) Format() string { return "json" }
