// Package policy decides whether a guest instance may reach a network
// host or a file path, based on the doublestar globs in its GrantSet.
package policy

import (
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
)

type policyConfig struct {
	denialHandler   ports.DenialHandler
	cwd             string
	resolveSymlinks bool
}

func defaultPolicyConfig() policyConfig {
	return policyConfig{
		resolveSymlinks: true,
		denialHandler:   NewSlogDenialHandler(nil),
	}
}

// Option configures the Policy.
type Option func(*policyConfig)

// WithWorkingDirectory sets the directory relative paths resolve against.
// Without it relative paths are denied.
func WithWorkingDirectory(cwd string) Option {
	return func(c *policyConfig) {
		c.cwd = cwd
	}
}

// WithSymlinkResolution enables/disables symlink resolution. Default is true.
func WithSymlinkResolution(enabled bool) Option {
	return func(c *policyConfig) {
		c.resolveSymlinks = enabled
	}
}

// WithDenialHandler sets the denial handler.
func WithDenialHandler(h ports.DenialHandler) Option {
	return func(c *policyConfig) {
		c.denialHandler = h
	}
}

// Policy is a stateless grant checker. Compiled grant sets are cached by
// pointer, so a GrantSet must not be mutated after its first check.
type Policy struct {
	cache  sync.Map // *entities.GrantSet -> *compiledGrantSet
	config policyConfig
}

var _ ports.Policy = (*Policy)(nil)

type compiledGrantSet struct {
	networkRules []compiledNetworkRule
	fsRules      []compiledFSRule
}

type compiledNetworkRule struct {
	hosts []string
	ports []portRange
}

type compiledFSRule struct {
	read  []string
	write []string
}

type portRange struct {
	min, max int
}

// NewPolicy creates a new Policy.
func NewPolicy(opts ...Option) *Policy {
	cfg := defaultPolicyConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Policy{config: cfg}
}

func (p *Policy) compiled(grants *entities.GrantSet) *compiledGrantSet {
	if grants == nil {
		return nil
	}
	if v, ok := p.cache.Load(grants); ok {
		return v.(*compiledGrantSet)
	}

	c := &compiledGrantSet{}
	if grants.Network != nil {
		for _, rule := range grants.Network.Rules {
			c.networkRules = append(c.networkRules, compiledNetworkRule{
				hosts: validPatterns(rule.Hosts),
				ports: parsePorts(rule.Ports),
			})
		}
	}
	if grants.FS != nil {
		for _, rule := range grants.FS.Rules {
			c.fsRules = append(c.fsRules, compiledFSRule{
				read:  validPatterns(rule.Read),
				write: validPatterns(rule.Write),
			})
		}
	}

	p.cache.Store(grants, c)
	return c
}

func validPatterns(in []string) []string {
	var out []string
	for _, pattern := range in {
		if doublestar.ValidatePattern(pattern) {
			out = append(out, pattern)
		}
	}
	return out
}

func parsePorts(in []string) []portRange {
	var out []portRange
	for _, spec := range in {
		spec = strings.TrimSpace(spec)
		if spec == "*" {
			out = append(out, portRange{0, 65535})
			continue
		}
		if lo, hi, ok := strings.Cut(spec, "-"); ok {
			minPort, err1 := strconv.Atoi(strings.TrimSpace(lo))
			maxPort, err2 := strconv.Atoi(strings.TrimSpace(hi))
			if err1 == nil && err2 == nil {
				out = append(out, portRange{minPort, maxPort})
			}
			continue
		}
		if val, err := strconv.Atoi(spec); err == nil {
			out = append(out, portRange{val, val})
		}
	}
	return out
}

func matchAny(patterns []string, value string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, value); matched {
			return true
		}
	}
	return false
}

// CheckNetwork reports whether some rule matches both host and port.
func (p *Policy) CheckNetwork(req entities.NetworkRequest, grants *entities.GrantSet) bool {
	c := p.compiled(grants)
	if c == nil {
		p.config.denialHandler.OnDenial("network", req, "no grants")
		return false
	}

	host := strings.ToLower(req.Host)
	for _, rule := range c.networkRules {
		if !matchAny(rule.hosts, host) {
			continue
		}
		for _, pr := range rule.ports {
			if req.Port >= pr.min && req.Port <= pr.max {
				return true
			}
		}
	}

	p.config.denialHandler.OnDenial("network", req, "host/port not allowed")
	return false
}

// CheckFileSystem reports whether the cleaned, absolute path matches a
// glob for the requested operation.
func (p *Policy) CheckFileSystem(req entities.FileSystemRequest, grants *entities.GrantSet) bool {
	c := p.compiled(grants)
	if c == nil {
		p.config.denialHandler.OnDenial("fs", req, "no grants")
		return false
	}

	path := filepath.Clean(req.Path)
	if !filepath.IsAbs(path) {
		if p.config.cwd == "" {
			p.config.denialHandler.OnDenial("fs", req, "relative path without working directory")
			return false
		}
		path = filepath.Join(p.config.cwd, path)
	}
	if p.config.resolveSymlinks {
		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			path = resolved
		}
	}

	for _, rule := range c.fsRules {
		patterns := rule.read
		if req.Operation == "write" {
			patterns = rule.write
		}
		if matchAny(patterns, path) {
			return true
		}
	}

	p.config.denialHandler.OnDenial("fs", req, "path not allowed")
	return false
}
