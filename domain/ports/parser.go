package ports

// ConfigParser turns a configuration document into a generic tree of
// JSON-compatible values.
type ConfigParser interface {
	Parse(data []byte) (map[string]any, error)
	// Format names the document format, e.g. "yaml".
	Format() string
}
