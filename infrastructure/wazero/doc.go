// Package wazero exports the message exchange to guest modules running in
// the wazero runtime.
//
// A guest imports a single function:
//
//	(import "sf_host_unstable" "message_exchange" (func (param i64) (result i64)))
//
// The parameter is the request envelope packed as ptr<<32|len into the
// guest's linear memory. The host serves it with the Exchanger bound to the
// calling module, copies the response into memory obtained from the guest's
// "allocate" export, and returns it packed the same way. The guest owns the
// response memory and releases it with its "deallocate" export.
//
// # Basic Usage
//
//	router := wazero.NewRouter()
//	if err := wazero.RegisterExchange(ctx, runtime, router); err != nil {
//	    return err
//	}
//	router.Bind("instance-1", dispatcher)
//	mod, err := runtime.InstantiateWithConfig(ctx, wasmBytes,
//	    moduleConfig.WithName("instance-1"))
//
// Once the exchanger reports Aborted, the module is closed with
// AbortExitCode and the guest call in progress returns a sys.ExitError.
package wazero
