// Package schema generates JSON Schemas for host configuration documents.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
)

// GenerateSchema creates a JSON schema from a Go struct. Only fields tagged
// jsonschema:"required" are required, so documents may leave out anything
// that has a default.
func GenerateSchema(v any) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:             true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return jsonBytes, nil
}

// HostConfigSchema returns the schema of entities.HostConfig documents.
func HostConfigSchema() ([]byte, error) {
	return GenerateSchema(&entities.HostConfig{})
}
