// Package warpcol provides an in-memory columnar table library with
// massively parallel primitives for Go.
//
// Tables are stored column-major: an ordered set of equal-length typed
// columns, each with an optional bit-packed validity mask (bit k set means
// element k is non-null). Kernels execute on a simulated device — a bounded
// worker pool covering a capped 2-D logical grid with strided loops, with
// 32-lane synchronization groups whose ballot collective packs per-lane
// booleans into mask words.
//
// # Quick Start
//
//	ctx := context.Background()
//	alloc := mem.HostAllocator{}
//
//	a, _ := warpcol.NewColumn(ctx, alloc, []int32{1, 2, 3}, nil)
//	b, _ := warpcol.NewColumn(ctx, alloc, []int32{4, 5, 6}, nil)
//	in, _ := warpcol.NewTable(a, b)
//	defer in.Release()
//
//	out, _ := warpcol.Transpose(ctx, in.View())
//	defer out.Release()
//	// out has 3 columns of 2 elements: [1 4], [2 5], [3 6]
//
// # Null Handling
//
// Transpose preserves validity exactly: if any input column contains nulls,
// every output column receives a validity mask and exact null counts; if no
// input column does, no output column carries a mask. Null counts are
// accumulated atomically during the mask kernel and read back after the
// call's single blocking synchronization.
//
// # Memory
//
// All allocations go through an explicit mem.Allocator handle (default: the
// 64-byte aligned host allocator). Pair mem.TrackingAllocator with a
// resource.Controller to enforce memory and launch-concurrency limits.
package warpcol
