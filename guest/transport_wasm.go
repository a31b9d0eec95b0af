//go:build wasip1

package guest

import (
	"runtime"

	"github.com/superfaceai/one-sdk-sub004/internal/abi"
)

//go:wasmimport sf_host_unstable message_exchange
//nolint:revive // intentional snake_case to match WASM import convention
func message_exchange(request uint64) uint64

type hostTransport struct{}

// Exchange hands the request to the host. The host writes the response into
// memory it allocated through our allocate export; we copy it out and free it.
func (hostTransport) Exchange(request []byte) ([]byte, error) {
	packed := abi.PtrFromBytes(request)
	defer abi.DeallocatePacked(packed)

	respPacked := message_exchange(packed)
	runtime.KeepAlive(request)

	data := abi.BytesFromPtr(respPacked)
	abi.DeallocatePacked(respPacked)
	return data, nil
}
