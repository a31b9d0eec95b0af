package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtocolError_UnknownKind(t *testing.T) {
	err := &ProtocolError{Kind: "teleport", Err: ErrUnknownKind}

	assert.Equal(t, "unknown kind: teleport", err.Error())
	assert.True(t, errors.Is(err, ErrUnknownKind))
	assert.True(t, IsFatal(err))
	assert.Equal(t, "protocol", ToErrorDetail(err).Type)
}

func TestProtocolError_Malformed(t *testing.T) {
	err := &ProtocolError{Err: fmt.Errorf("malformed envelope: %w", errors.New("unexpected EOF"))}
	assert.Equal(t, "malformed envelope: unexpected EOF", err.Error())
}

func TestResourceError(t *testing.T) {
	err := &ResourceError{Handle: 7, Op: "stream-read", Err: ErrHandleNotFound}

	assert.Equal(t, "stream-read on handle 7: handle not found", err.Error())
	assert.True(t, errors.Is(err, ErrHandleNotFound))
	assert.True(t, IsFatal(fmt.Errorf("wrapped: %w", err)))

	detail := ToErrorDetail(err)
	assert.Equal(t, "resource", detail.Type)
	assert.Equal(t, uint32(7), detail.Details["handle"])

	noOp := &ResourceError{Handle: 3, Err: ErrWrongResource}
	assert.Equal(t, "handle 3: handle refers to a different resource", noOp.Error())
}

func TestCapabilityError(t *testing.T) {
	base := errors.New("connection refused")
	err := &CapabilityError{Capability: "network", Op: "fetch", Target: "api.example.com", Err: base}

	assert.Equal(t, "network fetch failed for api.example.com: connection refused", err.Error())
	assert.True(t, errors.Is(err, base))
	assert.False(t, IsFatal(err))
	assert.False(t, err.Timeout())

	var capErr *CapabilityError
	require.True(t, errors.As(fmt.Errorf("outer: %w", err), &capErr))
	assert.Equal(t, "network", capErr.Capability)
}

func TestCapabilityError_Timeout(t *testing.T) {
	err := &CapabilityError{
		Capability: "timers",
		Op:         "await",
		Err:        &TimeoutError{Operation: "http-call", Duration: 5 * time.Second},
	}

	assert.Equal(t, "timers await failed: http-call timeout after 5s", err.Error())
	assert.True(t, err.Timeout())
	assert.True(t, ToErrorDetail(err).IsTimeout)
}

func TestContentTypeError(t *testing.T) {
	err := &ContentTypeError{ContentType: "application/xml", Reason: "body must be bytes"}
	assert.Equal(t, `content type "application/xml": body must be bytes`, err.Error())

	unset := &ContentTypeError{Reason: "body must be bytes"}
	assert.Equal(t, "content type not set: body must be bytes", unset.Error())
}

func TestEncodingError(t *testing.T) {
	assert.Equal(t, `unsupported encoding "latin1"`, (&EncodingError{Encoding: "latin1"}).Error())

	base := errors.New("illegal base64 data at input byte 3")
	err := &EncodingError{Encoding: "base64", Err: base}
	assert.True(t, errors.Is(err, base))
	assert.Equal(t, "encoding", ToErrorDetail(err).Type)
}

func TestAbortError(t *testing.T) {
	err := &AbortError{Instance: "abc"}
	assert.Equal(t, "guest abc aborted", err.Error())
	assert.True(t, errors.Is(err, ErrAborted))
	assert.True(t, IsFatal(err))
}

func TestToErrorDetail_Generic(t *testing.T) {
	assert.Nil(t, ToErrorDetail(nil))

	detail := ToErrorDetail(errors.New("boom"))
	assert.Equal(t, "internal", detail.Type)
	assert.Equal(t, "boom", detail.Message)
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "strategy", Err: errors.New("must be one of blocking polling cooperative")}
	assert.Equal(t, "config validation failed for field 'strategy': must be one of blocking polling cooperative", err.Error())
}
