// Package mem provides explicit memory allocation for column buffers.
//
// Every allocation in the library goes through an Allocator handle passed in
// by the caller; there is no package-level default resource.
package mem

import (
	"context"
	"unsafe"

	"github.com/warpcol/warpcol/resource"
)

// Alignment is the byte alignment of allocated buffers (64 bytes, one cache
// line and the widest SIMD register width).
const Alignment = 64

// Allocator supplies memory for column element buffers and validity masks.
type Allocator interface {
	// Allocate returns a zeroed buffer of the given size.
	Allocate(ctx context.Context, size int) ([]byte, error)

	// Deallocate returns a buffer obtained from Allocate.
	Deallocate(buf []byte)
}

// HostAllocator allocates 64-byte aligned host memory.
type HostAllocator struct{}

func (HostAllocator) Allocate(_ context.Context, size int) ([]byte, error) {
	return AllocAligned(size), nil
}

func (HostAllocator) Deallocate([]byte) {}

// TrackingAllocator wraps an inner allocator and accounts every allocation
// against a resource.Controller, enforcing its memory limit.
type TrackingAllocator struct {
	Inner Allocator
	Ctrl  *resource.Controller
}

func (a TrackingAllocator) Allocate(ctx context.Context, size int) ([]byte, error) {
	if err := a.Ctrl.AcquireMemory(ctx, int64(size)); err != nil {
		return nil, err
	}
	buf, err := a.Inner.Allocate(ctx, size)
	if err != nil {
		a.Ctrl.ReleaseMemory(int64(size))
		return nil, err
	}
	return buf, nil
}

func (a TrackingAllocator) Deallocate(buf []byte) {
	a.Inner.Deallocate(buf)
	a.Ctrl.ReleaseMemory(int64(len(buf)))
}

// AllocAligned allocates a byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure
// alignment. The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	// Allocate size + alignment so an aligned offset always exists within
	// the buffer.
	totalSize := size + Alignment
	buf := make([]byte, totalSize)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size)]
}

// Cast reinterprets a byte buffer as a slice of T. The buffer must come from
// AllocAligned (or an Allocator), which guarantees alignment for any
// fixed-width element type.
func Cast[T any](buf []byte) []T {
	if len(buf) == 0 {
		return nil
	}
	elemSize := int(unsafe.Sizeof(*new(T)))
	ptr := unsafe.Pointer(&buf[0])                     //nolint:gosec // reinterpreting allocator memory
	return unsafe.Slice((*T)(ptr), len(buf)/elemSize) //nolint:gosec // reinterpreting allocator memory
}

// Bytes is the inverse of Cast: it reinterprets a slice of T as its backing
// bytes, for handing a typed buffer back to an Allocator.
func Bytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	elemSize := int(unsafe.Sizeof(*new(T)))
	ptr := unsafe.Pointer(&s[0])                          //nolint:gosec // reinterpreting allocator memory
	return unsafe.Slice((*byte)(ptr), len(s)*elemSize) //nolint:gosec // reinterpreting allocator memory
}
