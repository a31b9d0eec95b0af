package entities

import "io"

// HTTPRequest is a fully resolved outgoing request handed to the Network
// capability. URL already carries the query string and any security values.
type HTTPRequest struct {
	Headers Multimap
	Method  string
	URL     string
	Body    []byte
}

// HTTPResponse is the head of a response plus its unread body. Whoever
// receives it owns Body and must close it.
type HTTPResponse struct {
	Headers Multimap
	Body    io.ReadCloser
	Status  int
}

// Close releases the body. It lets an undelivered response be dropped like
// any other io.Closer.
func (r *HTTPResponse) Close() error {
	if r == nil || r.Body == nil {
		return nil
	}
	return r.Body.Close()
}

// OpenOptions selects the mode of a file opened through the FileSystem
// capability.
type OpenOptions struct {
	Read     bool `json:"read,omitempty"`
	Write    bool `json:"write,omitempty"`
	Create   bool `json:"create,omitempty"`
	Truncate bool `json:"truncate,omitempty"`
	Append   bool `json:"append,omitempty"`
}

// Writable reports whether the options imply write access.
func (o OpenOptions) Writable() bool {
	return o.Write || o.Create || o.Truncate || o.Append
}
