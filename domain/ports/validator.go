package ports

// DocumentValidator checks a parsed configuration document before it is
// decoded into typed configuration.
type DocumentValidator interface {
	Validate(doc map[string]any) error
}
