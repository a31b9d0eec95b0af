// Package errors provides the error taxonomy shared by the host and the guest.
// All error types support unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// Sentinel causes wrapped by the typed errors below.
var (
	ErrUnknownKind        = stdErrors.New("unknown kind")
	ErrExchangeInFlight   = stdErrors.New("another exchange is in flight")
	ErrRequestTooLarge    = stdErrors.New("request envelope too large")
	ErrAborted            = stdErrors.New("instance aborted")
	ErrHandleNotFound     = stdErrors.New("handle not found")
	ErrWrongResource      = stdErrors.New("handle refers to a different resource")
	ErrTableClosed        = stdErrors.New("resource table closed")
	ErrOperationPending   = stdErrors.New("operation already pending")
	ErrOperationDiscarded = stdErrors.New("operation discarded")
	ErrBridgeClosed       = stdErrors.New("bridge closed")
	ErrPollBudget         = stdErrors.New("poll budget exhausted")
	ErrDenied             = stdErrors.New("denied by policy")
	ErrNotConfigured      = stdErrors.New("capability not configured")
)

// DetailedError is implemented by every error type in this package.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to a structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{Message: err.Error(), Type: "internal"}
}

// IsFatal reports whether err must abort the current guest call rather than
// be handed to it as a value.
func IsFatal(err error) bool {
	var pe *ProtocolError
	var re *ResourceError
	var ae *AbortError
	return stdErrors.As(err, &pe) || stdErrors.As(err, &re) || stdErrors.As(err, &ae)
}

// ProtocolError is a malformed envelope, an unknown kind, or a breach of the
// one-exchange-at-a-time rule.
type ProtocolError struct {
	Err  error
	Kind string
}

func (e *ProtocolError) Error() string {
	if stdErrors.Is(e.Err, ErrUnknownKind) && e.Kind != "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Kind)
	}
	return e.Err.Error()
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ProtocolError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "protocol", Code: e.Kind}
}

// ResourceError is the use of a handle outside its lifetime or as the wrong
// resource variant.
type ResourceError struct {
	Err    error
	Op     string
	Handle uint32
}

func (e *ResourceError) Error() string {
	if e.Handle == 0 && e.Op == "" {
		return e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s on handle %d: %v", e.Op, e.Handle, e.Err)
	}
	return fmt.Sprintf("handle %d: %v", e.Handle, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ResourceError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    "resource",
		Code:    e.Op,
		Details: map[string]any{"handle": e.Handle},
	}
}

// CapabilityError is a failure of a host capability: network, filesystem,
// timers, or a policy denial.
type CapabilityError struct {
	Err        error
	Capability string // "network", "filesystem", "timers"
	Op         string
	Target     string
}

func (e *CapabilityError) Error() string {
	if e.Capability == "" {
		return e.Err.Error()
	}
	if e.Target != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Capability, e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Capability, e.Op, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

func (e *CapabilityError) Timeout() bool {
	var te *TimeoutError
	if stdErrors.As(e.Err, &te) {
		return true
	}
	if t, ok := e.Err.(interface{ Timeout() bool }); ok {
		return t.Timeout()
	}
	return false
}

// ToErrorDetail implements DetailedError.
func (e *CapabilityError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message:   e.Error(),
		Type:      "capability",
		Code:      e.Capability + ":" + e.Op,
		IsTimeout: e.Timeout(),
	}
}

// TimeoutError is a host operation that outlived its deadline.
type TimeoutError struct {
	Operation string
	Duration  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timeout after %v", e.Operation, e.Duration)
}

func (e *TimeoutError) Timeout() bool {
	return true
}

// ToErrorDetail implements DetailedError.
func (e *TimeoutError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "timeout", Code: e.Operation, IsTimeout: true}
}

// ContentTypeError is a request body that cannot be encoded for its
// declared content type.
type ContentTypeError struct {
	ContentType string
	Reason      string
}

func (e *ContentTypeError) Error() string {
	if e.ContentType == "" {
		return fmt.Sprintf("content type not set: %s", e.Reason)
	}
	return fmt.Sprintf("content type %q: %s", e.ContentType, e.Reason)
}

// ToErrorDetail implements DetailedError.
func (e *ContentTypeError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "content_type", Code: e.ContentType}
}

// EncodingError is an unsupported text encoding or undecodable input.
type EncodingError struct {
	Err      error
	Encoding string
}

func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encoding %q: %v", e.Encoding, e.Err)
	}
	return fmt.Sprintf("unsupported encoding %q", e.Encoding)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *EncodingError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "encoding", Code: e.Encoding}
}

// AbortError reports that the guest ended its run with abort.
type AbortError struct {
	Instance string
}

func (e *AbortError) Error() string {
	if e.Instance != "" {
		return fmt.Sprintf("guest %s aborted", e.Instance)
	}
	return "guest aborted"
}

func (e *AbortError) Unwrap() error {
	return ErrAborted
}

// ToErrorDetail implements DetailedError.
func (e *AbortError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "abort"}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}

// SchemaError represents a schema generation or validation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "validation", Code: "schema"}
}

// WireFormatError is an envelope that could not be encoded or decoded.
type WireFormatError struct {
	Err       error
	Operation string // "encode", "decode"
	Codec     string
}

func (e *WireFormatError) Error() string {
	return fmt.Sprintf("%s %s envelope: %v", e.Codec, e.Operation, e.Err)
}

func (e *WireFormatError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *WireFormatError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "protocol", Code: "wire_format"}
}
