// Package wireformat defines the envelopes exchanged between a guest and
// its host through the single message-exchange call, and the codecs that
// carry them. Every request names its kind in a "kind" field; every
// response is either {kind: "ok", ...} or {kind: "error", error: "..."}.
// These types are the ABI contract and must stay backward compatible:
// unknown fields are ignored in both directions.
package wireformat

import "github.com/superfaceai/one-sdk-sub004/domain/entities"

// Kind discriminates request envelopes.
type Kind string

const (
	KindTakeContext      Kind = "take-context"
	KindSetOutputSuccess Kind = "set-output-success"
	KindSetOutputFailure Kind = "set-output-failure"
	KindHTTPCall         Kind = "http-call"
	KindHTTPCallHead     Kind = "http-call-head"
	KindStreamRead       Kind = "stream-read"
	KindStreamWrite      Kind = "stream-write"
	KindStreamClose      Kind = "stream-close"
	KindFileOpen         Kind = "file-open"
	KindPrint            Kind = "print"
	KindAbort            Kind = "abort"
)

// Request is the sealed set of request envelopes. Kinds outside the core
// set decode to *Unknown.
type Request interface {
	Kind() Kind
	isRequest()
}

// TakeContext asks for the invocation input.
type TakeContext struct{}

// SetOutputSuccess records the successful result of the invocation.
type SetOutputSuccess struct {
	Output any `json:"output"`
}

// SetOutputFailure records a domain-level failure result.
type SetOutputFailure struct {
	Output any `json:"output"`
}

// HTTPCall starts an HTTP exchange. Headers and Query are multimaps; Body
// is omitted when the request has none. Security names a host-side
// credential to apply.
type HTTPCall struct {
	Headers  map[string][]string `json:"headers,omitempty"`
	Query    map[string][]string `json:"query,omitempty"`
	Method   string              `json:"method"`
	URL      string              `json:"url"`
	Security string              `json:"security,omitempty"`
	Body     []byte              `json:"body,omitempty"`
}

// HTTPCallHead waits for the response head of an exchange.
type HTTPCallHead struct {
	Handle uint32 `json:"handle"`
}

// StreamRead reads up to MaxLen bytes. An empty result means end of stream.
type StreamRead struct {
	Handle uint32 `json:"handle"`
	MaxLen int    `json:"max_len"`
}

// StreamWrite writes Data to a writable stream.
type StreamWrite struct {
	Data   []byte `json:"data"`
	Handle uint32 `json:"handle"`
}

// StreamClose releases a handle.
type StreamClose struct {
	Handle uint32 `json:"handle"`
}

// FileOpen opens a file as a stream handle.
type FileOpen struct {
	Path string `json:"path"`
	entities.OpenOptions
}

// Print emits a diagnostic line from the guest.
type Print struct {
	Message string `json:"message"`
}

// Abort ends the guest run.
type Abort struct{}

// Unknown carries a request whose kind is not part of the core set. Raw is
// the whole envelope in the codec it arrived in.
type Unknown struct {
	Name Kind
	Raw  []byte
}

func (*TakeContext) Kind() Kind      { return KindTakeContext }
func (*SetOutputSuccess) Kind() Kind { return KindSetOutputSuccess }
func (*SetOutputFailure) Kind() Kind { return KindSetOutputFailure }
func (*HTTPCall) Kind() Kind         { return KindHTTPCall }
func (*HTTPCallHead) Kind() Kind     { return KindHTTPCallHead }
func (*StreamRead) Kind() Kind       { return KindStreamRead }
func (*StreamWrite) Kind() Kind      { return KindStreamWrite }
func (*StreamClose) Kind() Kind      { return KindStreamClose }
func (*FileOpen) Kind() Kind         { return KindFileOpen }
func (*Print) Kind() Kind            { return KindPrint }
func (*Abort) Kind() Kind            { return KindAbort }
func (u *Unknown) Kind() Kind        { return u.Name }

func (*TakeContext) isRequest()      {}
func (*SetOutputSuccess) isRequest() {}
func (*SetOutputFailure) isRequest() {}
func (*HTTPCall) isRequest()         {}
func (*HTTPCallHead) isRequest()     {}
func (*StreamRead) isRequest()       {}
func (*StreamWrite) isRequest()      {}
func (*StreamClose) isRequest()      {}
func (*FileOpen) isRequest()         {}
func (*Print) isRequest()            {}
func (*Abort) isRequest()            {}
func (*Unknown) isRequest()          {}

var requestTypes = map[Kind]func() Request{
	KindTakeContext:      func() Request { return &TakeContext{} },
	KindSetOutputSuccess: func() Request { return &SetOutputSuccess{} },
	KindSetOutputFailure: func() Request { return &SetOutputFailure{} },
	KindHTTPCall:         func() Request { return &HTTPCall{} },
	KindHTTPCallHead:     func() Request { return &HTTPCallHead{} },
	KindStreamRead:       func() Request { return &StreamRead{} },
	KindStreamWrite:      func() Request { return &StreamWrite{} },
	KindStreamClose:      func() Request { return &StreamClose{} },
	KindFileOpen:         func() Request { return &FileOpen{} },
	KindPrint:            func() Request { return &Print{} },
	KindAbort:            func() Request { return &Abort{} },
}

// IsCore reports whether k is one of the built-in kinds.
func IsCore(k Kind) bool {
	_, ok := requestTypes[k]
	return ok
}
