package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/hostfuncs"
	wazeroadapter "github.com/superfaceai/one-sdk-sub004/infrastructure/wazero"
)

// Instance is one running guest module and the dispatcher serving it.
type Instance struct {
	module     api.Module
	dispatcher *hostfuncs.Dispatcher
	executor   *Executor
	closeErr   error
	id         string
	closeOnce  sync.Once
}

// ID returns the instance identifier.
func (i *Instance) ID() string { return i.id }

// Dispatcher returns the dispatcher serving this instance.
func (i *Instance) Dispatcher() *hostfuncs.Dispatcher { return i.dispatcher }

// Memory returns the guest's linear memory.
func (i *Instance) Memory() api.Memory { return i.module.Memory() }

// Output returns what the guest recorded with set-output-success or
// set-output-failure.
func (i *Instance) Output() (hostfuncs.Output, bool) { return i.dispatcher.Output() }

// Call invokes an exported function. A guest that aborted yields an
// AbortError; a clean exit with code 0 is not an error.
func (i *Instance) Call(ctx context.Context, export string, params ...uint64) ([]uint64, error) {
	fn := i.module.ExportedFunction(export)
	if fn == nil {
		return nil, fmt.Errorf("export %q not found", export)
	}

	results, err := fn.Call(wazeroadapter.WithInstanceName(ctx, i.id), params...)
	if err == nil {
		return results, nil
	}

	var exit *sys.ExitError
	if errors.As(err, &exit) {
		if i.dispatcher.Aborted() {
			return nil, &sdkerrors.AbortError{Instance: i.id}
		}
		if exit.ExitCode() == 0 {
			return results, nil
		}
	}
	return nil, fmt.Errorf("guest %s: %s: %w", i.id, export, err)
}

// Run calls a parameterless entry point, "_start" when entry is empty.
func (i *Instance) Run(ctx context.Context, entry string) error {
	if entry == "" {
		entry = "_start"
	}
	_, err := i.Call(ctx, entry)
	return err
}

// Close releases the instance's handles, then its pending operations, then
// the module. It is safe to call more than once.
func (i *Instance) Close(ctx context.Context) error {
	i.closeOnce.Do(func() {
		i.executor.forget(i.id)
		i.closeErr = errors.Join(i.dispatcher.Close(), i.module.Close(ctx))
	})
	return i.closeErr
}
