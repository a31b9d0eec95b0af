package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/superfaceai/one-sdk-sub004/domain/ports"
)

// YAMLParser implements ports.ConfigParser for YAML.
type YAMLParser struct{}

// NewYAMLParser creates a new YAMLParser.
func NewYAMLParser() ports.ConfigParser {
	return &YAMLParser{}
}

// Parse unmarshals a YAML mapping.
func (p *YAMLParser) Parse(data []byte) (map[string]any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return normalize(p.Format(), raw)
}

func (p *YAMLParser) Format() string { return "yaml" }
