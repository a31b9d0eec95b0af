package entities

import "time"

// Strategy names accepted by HostConfig.Strategy.
const (
	StrategyBlocking    = "blocking"
	StrategyPolling     = "polling"
	StrategyCooperative = "cooperative"
)

// Codec names accepted by HostConfig.Codec.
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// HostConfig holds the per-host settings applied to every guest instance.
// Durations are expressed in milliseconds so the same document can be
// written in YAML, TOML, or JSON.
type HostConfig struct {
	Grants *GrantSet `json:"grants,omitempty" yaml:"grants,omitempty" toml:"grants,omitempty"`

	// BaseURL resolves relative http-call URLs.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" toml:"base_url,omitempty" validate:"omitempty,url"`

	// Strategy selects how a blocked guest call waits for host work.
	Strategy string `json:"strategy" yaml:"strategy" toml:"strategy" validate:"oneof=blocking polling cooperative" jsonschema:"enum=blocking,enum=polling,enum=cooperative"`

	// Codec selects the envelope encoding.
	Codec string `json:"codec" yaml:"codec" toml:"codec" validate:"oneof=json cbor" jsonschema:"enum=json,enum=cbor"`

	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" toml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`

	Security []SecurityConfig `json:"security,omitempty" yaml:"security,omitempty" toml:"security,omitempty" validate:"dive"`

	// ExchangeTimeoutMillis bounds each host operation. Zero disables it.
	ExchangeTimeoutMillis int `json:"exchange_timeout_ms" yaml:"exchange_timeout_ms" toml:"exchange_timeout_ms" validate:"gte=0"`

	// MaxRequestSize caps the size of a single request envelope in bytes.
	MaxRequestSize int `json:"max_request_size" yaml:"max_request_size" toml:"max_request_size" validate:"gt=0"`

	// PollBudget is the number of polls a polling wait may spend. Zero
	// derives it from the exchange timeout, see PollAttempts.
	PollBudget int `json:"poll_budget" yaml:"poll_budget" toml:"poll_budget" validate:"gte=0"`

	PollIntervalMillis int `json:"poll_interval_ms" yaml:"poll_interval_ms" toml:"poll_interval_ms" validate:"gt=0"`

	// MaxConcurrentOperations limits host tasks per instance. Zero means unlimited.
	MaxConcurrentOperations int `json:"max_concurrent_operations" yaml:"max_concurrent_operations" toml:"max_concurrent_operations" validate:"gte=0"`
}

// DefaultHostConfig returns the default configuration.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		Strategy:              StrategyBlocking,
		Codec:                 CodecJSON,
		LogLevel:              "info",
		ExchangeTimeoutMillis: 30_000,
		MaxRequestSize:        8 << 20,
		PollIntervalMillis:    1,
	}
}

// ExchangeTimeout returns the per-operation timeout.
func (c HostConfig) ExchangeTimeout() time.Duration {
	return time.Duration(c.ExchangeTimeoutMillis) * time.Millisecond
}

// PollInterval returns the pause between two polls.
func (c HostConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

// defaultPollWindow bounds a derived polling wait when the exchange timeout
// is disabled.
const defaultPollWindow = 5 * time.Minute

// PollAttempts returns the polling budget. An explicit PollBudget is used
// as is. Otherwise the polls cover the exchange timeout plus a tenth (at
// least a second), so the timeout fails a slow operation before the budget
// runs out.
func (c HostConfig) PollAttempts() int {
	if c.PollBudget > 0 {
		return c.PollBudget
	}
	interval := c.PollInterval()
	if interval <= 0 {
		interval = time.Millisecond
	}
	window := c.ExchangeTimeout()
	if window > 0 {
		window += max(window/10, time.Second)
	} else {
		window = defaultPollWindow
	}
	return int(window/interval) + 1
}

// SecurityByID returns the security configuration with the given ID.
func (c HostConfig) SecurityByID(id string) (SecurityConfig, bool) {
	for _, s := range c.Security {
		if s.ID == id {
			return s, true
		}
	}
	return SecurityConfig{}, false
}

// HostConfigOption is a functional option for HostConfig.
type HostConfigOption func(*HostConfig)

// WithExchangeTimeout sets the per-operation timeout. Zero disables it.
func WithExchangeTimeout(d time.Duration) HostConfigOption {
	return func(c *HostConfig) {
		if d >= 0 {
			c.ExchangeTimeoutMillis = int(d / time.Millisecond)
		}
	}
}

// WithMaxRequestSize caps request envelope size.
func WithMaxRequestSize(n int) HostConfigOption {
	return func(c *HostConfig) {
		if n > 0 {
			c.MaxRequestSize = n
		}
	}
}

// WithPollBudget sets the number of polls a polling wait may spend.
func WithPollBudget(n int) HostConfigOption {
	return func(c *HostConfig) {
		if n > 0 {
			c.PollBudget = n
		}
	}
}

// WithPollInterval sets the pause between polls.
func WithPollInterval(d time.Duration) HostConfigOption {
	return func(c *HostConfig) {
		if d >= time.Millisecond {
			c.PollIntervalMillis = int(d / time.Millisecond)
		}
	}
}

// WithStrategy selects blocking, polling, or cooperative waiting.
func WithStrategy(name string) HostConfigOption {
	return func(c *HostConfig) {
		c.Strategy = name
	}
}

// WithCodec selects the envelope codec.
func WithCodec(name string) HostConfigOption {
	return func(c *HostConfig) {
		c.Codec = name
	}
}

// WithMaxConcurrentOperations limits concurrent host tasks per instance.
func WithMaxConcurrentOperations(n int) HostConfigOption {
	return func(c *HostConfig) {
		if n >= 0 {
			c.MaxConcurrentOperations = n
		}
	}
}

// WithBaseURL sets the URL relative http-call URLs resolve against.
func WithBaseURL(u string) HostConfigOption {
	return func(c *HostConfig) {
		c.BaseURL = u
	}
}

// WithSecurity adds named security configurations.
func WithSecurity(configs ...SecurityConfig) HostConfigOption {
	return func(c *HostConfig) {
		c.Security = append(c.Security, configs...)
	}
}

// WithGrants merges grants into the configuration.
func WithGrants(g *GrantSet) HostConfigOption {
	return func(c *HostConfig) {
		if c.Grants == nil {
			c.Grants = &GrantSet{}
		}
		c.Grants.Merge(g)
	}
}

// NewHostConfig creates a HostConfig from defaults and options.
func NewHostConfig(opts ...HostConfigOption) HostConfig {
	cfg := DefaultHostConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
