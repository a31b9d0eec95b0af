package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema_RequiredFromTags(t *testing.T) {
	type Config struct {
		Host string `json:"host" jsonschema:"required"`
		Port int    `json:"port"`
	}

	data, err := GenerateSchema(Config{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []any{"host"}, decoded["required"])
	assert.Contains(t, decoded["properties"], "port")
}

func TestHostConfigSchema(t *testing.T) {
	data, err := HostConfigSchema()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "object", decoded["type"])
	assert.NotContains(t, decoded, "required")

	props, ok := decoded["properties"].(map[string]any)
	require.True(t, ok)
	for _, field := range []string{"strategy", "codec", "base_url", "security", "grants", "exchange_timeout_ms", "poll_budget"} {
		assert.Contains(t, props, field)
	}

	strategy := props["strategy"].(map[string]any)
	assert.Equal(t, []any{"blocking", "polling", "cooperative"}, strategy["enum"])
}
