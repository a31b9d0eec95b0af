package entities

import "fmt"

// SecurityType names how a SecurityConfig is applied to a request.
type SecurityType string

const (
	SecurityAPIKey SecurityType = "apikey"
	SecurityBasic  SecurityType = "basic"
	SecurityBearer SecurityType = "bearer"
)

// APIKeyPlacement is where an api key is placed.
type APIKeyPlacement string

const (
	APIKeyInHeader APIKeyPlacement = "header"
	APIKeyInQuery  APIKeyPlacement = "query"
)

// SecurityConfig is a named credential the guest can reference from an
// http-call by ID. The secret values never cross into the guest.
type SecurityConfig struct {
	ID       string          `json:"id" yaml:"id" toml:"id" validate:"required"`
	Type     SecurityType    `json:"type" yaml:"type" toml:"type" validate:"required,oneof=apikey basic bearer"`
	In       APIKeyPlacement `json:"in,omitempty" yaml:"in,omitempty" toml:"in,omitempty" validate:"omitempty,oneof=header query"`
	Name     string          `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	APIKey   string          `json:"apikey,omitempty" yaml:"apikey,omitempty" toml:"apikey,omitempty"`
	Username string          `json:"username,omitempty" yaml:"username,omitempty" toml:"username,omitempty"`
	Password string          `json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty"`
	Token    string          `json:"token,omitempty" yaml:"token,omitempty" toml:"token,omitempty"`
}

// Check reports missing fields for the configured type.
func (s SecurityConfig) Check() error {
	switch s.Type {
	case SecurityAPIKey:
		if s.Name == "" || s.APIKey == "" {
			return fmt.Errorf("security %q: apikey requires name and apikey", s.ID)
		}
	case SecurityBasic:
		if s.Username == "" {
			return fmt.Errorf("security %q: basic requires username", s.ID)
		}
	case SecurityBearer:
		if s.Token == "" {
			return fmt.Errorf("security %q: bearer requires token", s.ID)
		}
	default:
		return fmt.Errorf("security %q: unsupported type %q", s.ID, s.Type)
	}
	return nil
}
