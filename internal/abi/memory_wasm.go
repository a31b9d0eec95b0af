//go:build wasip1

package abi

import "unsafe"

var pins = NewPins(MaxTotalAllocations)

// allocate reserves guest memory the host can write into. The buffer stays
// pinned until deallocate.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}
	buf := make([]byte, size)
	//nolint:gosec // G103: linear memory offsets are 32-bit
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0])))
	if err := pins.Pin(ptr, buf); err != nil {
		panic(err.Error())
	}
	return ptr
}

// deallocate unpins memory returned by allocate.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, _ uint32) {
	pins.Unpin(ptr)
}

// FreeAllTracked unpins every allocation.
func FreeAllTracked() {
	pins.Reset()
}

// PtrFromBytes copies data into pinned memory and returns it packed.
func PtrFromBytes(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	size := uint32(len(data))
	ptr := allocate(size)
	copy(memory(ptr, size), data)
	return PackPtrLen(ptr, size)
}

// BytesFromPtr copies the packed region out of linear memory.
func BytesFromPtr(packed uint64) []byte {
	ptr, length := UnpackPtrLen(packed)
	if ptr == 0 || length == 0 {
		return nil
	}
	return append([]byte(nil), memory(ptr, length)...)
}

// DeallocatePacked unpins a packed region.
func DeallocatePacked(packed uint64) {
	ptr, length := UnpackPtrLen(packed)
	if ptr != 0 && length > 0 {
		deallocate(ptr, length)
	}
}

func memory(ptr, length uint32) []byte {
	//nolint:gosec // G103: Valid unsafe.Pointer use for WASM linear memory access
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length)
}
