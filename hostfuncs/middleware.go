package hostfuncs

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/superfaceai/one-sdk-sub004/wireformat"
)

// Middleware wraps a ByteHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps outermost).
type Middleware func(next ByteHandler) ByteHandler

// chain applies mw to h so that mw[0] runs first.
func chain(h ByteHandler, mw []Middleware) ByteHandler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// PanicRecoveryMiddleware converts a panic in a handler into an error
// envelope instead of crashing the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					perr := &PanicError{Kind: HostContextFrom(ctx, "").Kind(), Value: r, Stack: debug.Stack()}
					resp, err = wireformat.EncodeResponse(CodecFrom(ctx), wireformat.Failure(perr))
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware logs every exchange at debug level, and failures at
// warn level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			hc := HostContextFrom(ctx, "")
			start := time.Now()
			resp, err := next(ctx, payload)
			attrs := []any{
				"kind", hc.Kind(),
				"instance", hc.InstanceID(),
				"request_bytes", len(payload),
				"duration", time.Since(start),
			}
			if err != nil {
				logger.WarnContext(ctx, "exchange failed", append(attrs, "error", err)...)
				return resp, err
			}
			logger.DebugContext(ctx, "exchange served", append(attrs, "response_bytes", len(resp))...)
			return resp, nil
		}
	}
}
