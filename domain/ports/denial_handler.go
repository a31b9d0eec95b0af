package ports

// DenialHandler is called when a policy check denies a request.
type DenialHandler interface {
	// OnDenial receives the kind ("network", "fs"), the denied request, and
	// a human-readable reason.
	OnDenial(kind string, request any, reason string)
}
