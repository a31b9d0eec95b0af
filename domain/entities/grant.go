package entities

// GrantSet is the set of capabilities granted to one guest instance.
// A nil or empty set denies everything.
type GrantSet struct {
	Network *NetworkCapability    `json:"network,omitempty" yaml:"network,omitempty" toml:"network,omitempty"`
	FS      *FileSystemCapability `json:"fs,omitempty" yaml:"fs,omitempty" toml:"fs,omitempty"`
}

// NetworkCapability lists the hosts and ports the guest may call.
type NetworkCapability struct {
	Rules []NetworkRule `json:"rules" yaml:"rules" toml:"rules" jsonschema:"required"`
}

// NetworkRule matches a request when both a host pattern and a port entry match.
type NetworkRule struct {
	Hosts []string `json:"hosts" yaml:"hosts" toml:"hosts" jsonschema:"required"`
	Ports []string `json:"ports" yaml:"ports" toml:"ports" jsonschema:"required"` // "80", "8000-9000", "*"
}

// FileSystemCapability lists the path globs the guest may open.
type FileSystemCapability struct {
	Rules []FileSystemRule `json:"rules" yaml:"rules" toml:"rules" jsonschema:"required"`
}

// FileSystemRule holds doublestar globs per access mode.
type FileSystemRule struct {
	Read  []string `json:"read,omitempty" yaml:"read,omitempty" toml:"read,omitempty"`
	Write []string `json:"write,omitempty" yaml:"write,omitempty" toml:"write,omitempty"`
}

// IsEmpty returns true if no rules are present.
func (g *GrantSet) IsEmpty() bool {
	if g == nil {
		return true
	}
	if g.Network != nil && len(g.Network.Rules) > 0 {
		return false
	}
	if g.FS != nil && len(g.FS.Rules) > 0 {
		return false
	}
	return true
}

// Merge appends the rules of other to g.
func (g *GrantSet) Merge(other *GrantSet) {
	if other == nil {
		return
	}
	if other.Network != nil && len(other.Network.Rules) > 0 {
		if g.Network == nil {
			g.Network = &NetworkCapability{}
		}
		g.Network.Rules = append(g.Network.Rules, other.Network.Rules...)
	}
	if other.FS != nil && len(other.FS.Rules) > 0 {
		if g.FS == nil {
			g.FS = &FileSystemCapability{}
		}
		g.FS.Rules = append(g.FS.Rules, other.FS.Rules...)
	}
}

// Clone returns a deep copy of the GrantSet.
func (g *GrantSet) Clone() *GrantSet {
	if g == nil {
		return nil
	}
	clone := &GrantSet{}
	if g.Network != nil {
		clone.Network = &NetworkCapability{Rules: make([]NetworkRule, len(g.Network.Rules))}
		for i, rule := range g.Network.Rules {
			clone.Network.Rules[i] = NetworkRule{
				Hosts: append([]string(nil), rule.Hosts...),
				Ports: append([]string(nil), rule.Ports...),
			}
		}
	}
	if g.FS != nil {
		clone.FS = &FileSystemCapability{Rules: make([]FileSystemRule, len(g.FS.Rules))}
		for i, rule := range g.FS.Rules {
			clone.FS.Rules[i] = FileSystemRule{
				Read:  append([]string(nil), rule.Read...),
				Write: append([]string(nil), rule.Write...),
			}
		}
	}
	return clone
}
