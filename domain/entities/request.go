package entities

// NetworkRequest is what the policy sees of an outgoing http-call.
type NetworkRequest struct {
	Host string
	Port int
}

// FileSystemRequest is what the policy sees of a file-open.
type FileSystemRequest struct {
	Path      string
	Operation string // "read", "write"
}
