package warpcol

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/warpcol/warpcol/internal/device"
	"github.com/warpcol/warpcol/internal/kernels"
)

// Transpose returns the row/column-swapped table: output column j holds input
// row j, so output.Column(j) element i equals input.Column(i) element j. All
// input columns must share one fixed-width element type.
//
// If any input column contains nulls, every output column receives a validity
// mask, even columns whose transposed row has none; otherwise no output
// column carries a mask. The policy is deliberately all-or-nothing rather
// than per-column.
//
// The input view is borrowed for the duration of the call and never mutated.
// The returned table is newly allocated through the call's allocator and
// owned by the caller. The call blocks until all kernel work has finished.
func Transpose(ctx context.Context, input TableView, optFns ...Option) (*Table, error) {
	o := newOptions(optFns...)

	start := time.Now()
	out, err := transpose(ctx, &o, input)
	o.metrics.RecordTranspose(input.NumRows(), input.NumColumns(), time.Since(start), err)
	return out, err
}

func transpose(ctx context.Context, o *options, input TableView) (*Table, error) {
	ncols := input.NumColumns()
	nrows := input.NumRows()

	// Degenerate shapes produce an empty table, not an error.
	if ncols == 0 || nrows == 0 {
		return &Table{}, nil
	}

	// Structural validation happens before any allocation or launch.
	dt := input.Column(0).DType()
	for i := 1; i < ncols; i++ {
		if actual := input.Column(i).DType(); actual != dt {
			return nil, &ErrTypeMismatch{Column: i, Expected: dt, Actual: actual}
		}
	}
	if !dt.FixedWidth() {
		return nil, &ErrUnsupportedType{DType: dt}
	}

	hasNulls := false
	for i := 0; i < ncols; i++ {
		if input.Column(i).HasNulls() {
			hasNulls = true
			break
		}
	}

	// Output shape: one output column per input row, one element per input
	// column, masks per the uniform policy.
	outCols := make([]*Column, nrows)
	for j := range outCols {
		col, err := newFixedWidthColumn(ctx, o.alloc, dt, ncols, hasNulls)
		if err != nil {
			releaseAll(outCols[:j])
			return nil, err
		}
		outCols[j] = col
	}

	dev := o.device()
	stream, err := dev.NewStream(ctx)
	if err != nil {
		releaseAll(outCols)
		return nil, fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}

	dimX, dimY := device.GridDims(ncols, nrows)
	o.logger.WithShape(nrows, ncols).Debug("launching transpose kernels",
		"dtype", dt.String(), "masks", hasNulls, "gridX", dimX, "gridY", dimY)

	if err := dispatchValueTranspose(dt, stream, input, outCols, dimX, dimY); err != nil {
		_ = stream.Synchronize()
		releaseAll(outCols)
		return nil, err
	}

	var counts []atomic.Int32
	if hasNulls {
		counts = make([]atomic.Int32, nrows)

		masks := make([][]uint32, ncols)
		for i := range masks {
			masks[i] = input.Column(i).Mask()
		}
		dstMasks := make([][]uint32, nrows)
		for j := range dstMasks {
			dstMasks[j] = outCols[j].mask
		}

		groups := device.GroupCount(nrows)
		stream.LaunchGroups(groups, kernels.MaskTranspose(masks, nrows, ncols, dstMasks, counts, groups))
	}

	// The one blocking wait. Null counts are read back only once all kernel
	// work has completed.
	if err := stream.Synchronize(); err != nil {
		releaseAll(outCols)
		return nil, fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}

	if hasNulls {
		for j := range outCols {
			outCols[j].nullCount = int(counts[j].Load())
		}
	}

	return &Table{cols: outCols, rows: ncols}, nil
}

func releaseAll(cols []*Column) {
	for _, c := range cols {
		if c != nil {
			c.Release()
		}
	}
}
