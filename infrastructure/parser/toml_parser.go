package parser

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/superfaceai/one-sdk-sub004/domain/ports"
)

// TOMLParser implements ports.ConfigParser for TOML.
type TOMLParser struct{}

// NewTOMLParser creates a new TOMLParser.
func NewTOMLParser() ports.ConfigParser {
	return &TOMLParser{}
}

// Parse decodes a TOML document. Datetimes become RFC 3339 strings.
func (p *TOMLParser) Parse(data []byte) (map[string]any, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	return normalize(p.Format(), raw)
}

func (p *TOMLParser) Format() string { return "toml" }
