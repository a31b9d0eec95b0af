// Package hostfuncs implements the host side of the message exchange.
// It has no WebAssembly runtime dependency; infrastructure/wazero feeds it
// request envelopes read from guest memory.
//
// A Dispatcher serves one guest instance. Each call to Exchange decodes one
// request envelope, runs it and encodes exactly one response envelope. The
// dispatcher owns the instance's resource table, sync bridge, invocation
// context and output, and admits one exchange at a time.
//
// Core kinds (take-context, set-output-*, http-call, http-call-head,
// stream-*, file-open, print, abort) are built in. Hosts add kinds of their
// own with a HandlerRegistry:
//
//	registry, err := hostfuncs.NewRegistry(
//		hostfuncs.WithHandler("lookup", func(ctx context.Context, req LookupRequest) (Item, error) {
//			return store.Get(ctx, req.ID)
//		}),
//		hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
//	)
//	d, err := hostfuncs.NewDispatcher(ctx, caps, hostfuncs.WithRegistry(registry))
//
// A kind that is neither core nor registered gets the error response
// "unknown kind: <kind>".
package hostfuncs
