// Package device models the parallel execution engine: a fixed pool of
// workers running kernels over a capped 2-D logical grid, organized into
// 32-lane lockstep groups with ballot collectives.
//
// Kernels are launched asynchronously onto a Stream; the single blocking
// point is Stream.Synchronize. Grid dimensions are clamped to per-axis caps,
// so kernels cover oversized problems with strided loops rather than relying
// on one worker per element.
package device

import (
	"runtime"

	"github.com/warpcol/warpcol/internal/bitmask"
	"github.com/warpcol/warpcol/resource"
)

const (
	// WarpSize is the number of lanes in one synchronization group. It must
	// equal the validity mask word width so that mask words and column bands
	// stay aligned.
	WarpSize = bitmask.WordBits

	// MaxGridDimX and MaxGridDimY cap the logical grid per axis. Larger
	// problems are covered by kernel-side striding.
	MaxGridDimX = 256
	MaxGridDimY = 64
)

// Options configures a Device.
type Options struct {
	// Workers is the number of OS-thread-backed workers executing grid cells.
	// Defaults to GOMAXPROCS.
	Workers int

	// Controller optionally gates stream creation and enforces the
	// concurrent-launch limit. Nil means unlimited.
	Controller *resource.Controller
}

// Info describes a device.
type Info struct {
	Name     string
	Workers  int
	WarpSize int
	Popcount string
}

// Device executes kernels over a logical grid using a bounded worker pool.
type Device struct {
	workers int
	ctrl    *resource.Controller
}

// New creates a device.
func New(optFns ...func(o *Options)) *Device {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	return &Device{
		workers: opts.Workers,
		ctrl:    opts.Controller,
	}
}

// Info reports the device description.
func (d *Device) Info() Info {
	return Info{
		Name:     "host",
		Workers:  d.workers,
		WarpSize: WarpSize,
		Popcount: bitmask.ActiveKernel(),
	}
}

// GridDims returns grid dimensions for an nx-by-ny problem, clamped to the
// per-axis caps. Kernels must stride by the returned dimensions.
func GridDims(nx, ny int) (dimX, dimY int) {
	dimX = min(nx, MaxGridDimX)
	dimY = min(ny, MaxGridDimY)
	return dimX, dimY
}

// GroupCount returns the number of synchronization groups to launch for n
// independent group-sized work items, clamped to one grid pass.
func GroupCount(n int) int {
	return min(n, MaxGridDimX)
}
