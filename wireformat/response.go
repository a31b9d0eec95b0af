package wireformat

import (
	"errors"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
)

// Response kinds.
const (
	ResponseOK    = "ok"
	ResponseError = "error"
)

// Response is the single reply to a request. Only the fields relevant to
// the request kind are set.
type Response struct {
	Context    any                 `json:"context,omitempty"`
	Result     any                 `json:"result,omitempty"`
	Headers    map[string][]string `json:"headers,omitempty"`
	Kind       string              `json:"kind"`
	Error      string              `json:"error,omitempty"`
	ErrorType  string              `json:"error_type,omitempty"`
	Data       []byte              `json:"data,omitempty"`
	Status     int                 `json:"status,omitempty"`
	Written    int                 `json:"written,omitempty"`
	Handle     uint32              `json:"handle,omitempty"`
	BodyStream uint32              `json:"body_stream,omitempty"`
}

// OK returns an empty success response.
func OK() Response {
	return Response{Kind: ResponseOK}
}

// Failure builds an error response. ErrorType carries the error category so
// the guest can rebuild a typed error.
func Failure(err error) Response {
	detail := sdkerrors.ToErrorDetail(err)
	return Response{Kind: ResponseError, Error: err.Error(), ErrorType: detail.Type}
}

// IsOK reports whether the response is a success.
func (r Response) IsOK() bool {
	return r.Kind == ResponseOK
}

// Err rebuilds the error carried by an error response, or returns nil.
// Protocol and resource failures come back as their typed errors so callers
// can treat them as fatal.
func (r Response) Err() error {
	switch r.Kind {
	case ResponseOK:
		return nil
	case ResponseError:
	default:
		return &sdkerrors.ProtocolError{Err: errors.New("unexpected response kind " + r.Kind)}
	}

	cause := errors.New(r.Error)
	switch r.ErrorType {
	case "protocol":
		return &sdkerrors.ProtocolError{Err: cause}
	case "resource":
		return &sdkerrors.ResourceError{Err: cause}
	case "capability", "timeout":
		return &sdkerrors.CapabilityError{Err: cause}
	case "abort":
		return &sdkerrors.AbortError{}
	default:
		return cause
	}
}
