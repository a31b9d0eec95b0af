package entities

import (
	"net/url"
	"sort"
	"strings"
)

// Multimap maps a name to an ordered list of values. It is the shape of both
// HTTP headers and query parameters on the wire.
type Multimap map[string][]string

// NormalizeHeaders folds header names to lower case, merging the values of
// names that differ only by case. Value order is preserved within a name.
func NormalizeHeaders(in map[string][]string) Multimap {
	out := make(Multimap, len(in))
	for _, name := range sortedKeys(in) {
		key := strings.ToLower(name)
		out[key] = append(out[key], in[name]...)
	}
	return out
}

// HeadersFromSingle builds a normalized multimap from single-valued headers.
func HeadersFromSingle(in map[string]string) Multimap {
	out := make(Multimap, len(in))
	for _, name := range sortedKeys(in) {
		key := strings.ToLower(name)
		out[key] = append(out[key], in[name])
	}
	return out
}

// Get returns the first value for name, or "" when absent. Lookup is case
// insensitive.
func (m Multimap) Get(name string) string {
	values := m.Values(name)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Values returns all values for name. Lookup is case insensitive.
func (m Multimap) Values(name string) []string {
	if v, ok := m[name]; ok {
		return v
	}
	lower := strings.ToLower(name)
	if v, ok := m[lower]; ok {
		return v
	}
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

// Add appends a value under the lower-cased name.
func (m Multimap) Add(name, value string) {
	key := strings.ToLower(name)
	m[key] = append(m[key], value)
}

// Set replaces all values of name with a single value.
func (m Multimap) Set(name, value string) {
	m.Del(name)
	m[strings.ToLower(name)] = []string{value}
}

// Del removes every value of name regardless of case.
func (m Multimap) Del(name string) {
	for k := range m {
		if strings.EqualFold(k, name) {
			delete(m, k)
		}
	}
}

// Has reports whether any value exists for name.
func (m Multimap) Has(name string) bool {
	return len(m.Values(name)) > 0
}

// Clone returns a deep copy.
func (m Multimap) Clone() Multimap {
	if m == nil {
		return nil
	}
	out := make(Multimap, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Encode renders the multimap in application/x-www-form-urlencoded form.
// Names are emitted in sorted order; repeated values keep their order, so
// {a: [1, 2]} becomes "a=1&a=2".
func (m Multimap) Encode() string {
	var sb strings.Builder
	for _, name := range sortedKeys(m) {
		for _, value := range m[name] {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(name))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(value))
		}
	}
	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
