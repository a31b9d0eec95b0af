package host

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/superfaceai/one-sdk-sub004/application/validation"
	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
	"github.com/superfaceai/one-sdk-sub004/infrastructure/parser"
)

type loaderConfig struct {
	parser    ports.ConfigParser
	validator ports.DocumentValidator
}

// Loader orchestrates the configuration loading pipeline: parse, check the
// document against the schema, overlay it on the defaults, then validate
// the result.
type Loader struct {
	config loaderConfig
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithParser fixes the document format. Without it, LoadFile picks the
// parser from the file extension and Load expects YAML.
func WithParser(p ports.ConfigParser) LoaderOption {
	return func(c *loaderConfig) {
		c.parser = p
	}
}

// WithDocumentValidator replaces the schema check.
func WithDocumentValidator(v ports.DocumentValidator) LoaderOption {
	return func(c *loaderConfig) {
		c.validator = v
	}
}

// NewLoader creates a Loader. The default document validator compiles the
// HostConfig schema, which is the only way this can fail.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	var cfg loaderConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.validator == nil {
		v, err := validation.NewHostConfigValidator()
		if err != nil {
			return nil, err
		}
		cfg.validator = v
	}
	return &Loader{config: cfg}, nil
}

// Load reads a configuration document. Fields the document leaves out keep
// their defaults.
func (l *Loader) Load(data []byte) (entities.HostConfig, error) {
	p := l.config.parser
	if p == nil {
		p = parser.NewYAMLParser()
	}
	return l.load(p, data)
}

// LoadFile reads the configuration document at path.
func (l *Loader) LoadFile(path string) (entities.HostConfig, error) {
	p := l.config.parser
	if p == nil {
		var err error
		if p, err = parser.ForPath(path); err != nil {
			return entities.HostConfig{}, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.HostConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	return l.load(p, data)
}

func (l *Loader) load(p ports.ConfigParser, data []byte) (entities.HostConfig, error) {
	doc, err := p.Parse(data)
	if err != nil {
		return entities.HostConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := l.config.validator.Validate(doc); err != nil {
		return entities.HostConfig{}, err
	}

	cfg := entities.DefaultHostConfig()
	raw, err := json.Marshal(doc)
	if err != nil {
		return entities.HostConfig{}, fmt.Errorf("failed to marshal config document: %w", err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return entities.HostConfig{}, &sdkerrors.ConfigError{Err: err}
	}

	if err := validation.ValidateStruct(cfg); err != nil {
		return entities.HostConfig{}, err
	}
	for _, sec := range cfg.Security {
		if err := sec.Check(); err != nil {
			return entities.HostConfig{}, &sdkerrors.ConfigError{Field: "security", Err: err}
		}
	}
	return cfg, nil
}
