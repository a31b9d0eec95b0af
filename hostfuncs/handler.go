package hostfuncs

import (
	"context"
	"fmt"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/wireformat"
)

// HostFunc is a typed extension handler. The request is decoded from the
// whole envelope, so the "kind" field is ignored unless Req declares it.
type HostFunc[Req any, Resp any] func(context.Context, Req) (Resp, error)

// ByteHandler accepts an encoded request envelope and returns an encoded
// response envelope. A returned error is turned into an error envelope by
// the dispatcher.
type ByteHandler func(context.Context, []byte) ([]byte, error)

// NewTypedHandler wraps fn into a ByteHandler. The envelope codec is taken
// from the context. A successful result travels in the "result" field of an
// ok envelope; an error becomes an error envelope.
func NewTypedHandler[Req any, Resp any](fn HostFunc[Req, Resp]) ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		codec := CodecFrom(ctx)

		var req Req
		if err := codec.Unmarshal(payload, &req); err != nil {
			return nil, &sdkerrors.ProtocolError{
				Kind: HostContextFrom(ctx, "").Kind(),
				Err:  fmt.Errorf("malformed request: %w", err),
			}
		}

		result, err := fn(ctx, req)
		if err != nil {
			return wireformat.EncodeResponse(codec, wireformat.Failure(err))
		}

		resp := wireformat.OK()
		resp.Result = result
		return wireformat.EncodeResponse(codec, resp)
	}
}
