// Package abi holds the memory conventions shared by the guest and the
// host: pointers and lengths travel packed into one uint64, and guest
// memory handed to the host is pinned until the guest frees it.
package abi

import "fmt"

// PtrHighBits is the shift of the pointer inside a packed value.
const PtrHighBits = 32

// MaxTotalAllocations caps the guest memory pinned at any one time.
const MaxTotalAllocations = 100 * 1024 * 1024 // 100 MB

// PackPtrLen packs a pointer and length into a single uint64, pointer in
// the high 32 bits. Panics if ptr is 0 and length is not.
func PackPtrLen(ptr, length uint32) uint64 {
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid pack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return (uint64(ptr) << PtrHighBits) | uint64(length)
}

// UnpackPtrLen reverses PackPtrLen. Panics on a null pointer with a
// non-zero length.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> PtrHighBits)
	length = uint32(packed)
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid unpack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return ptr, length
}
