package warpcol

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/warpcol/warpcol/internal/bitmask"
	"github.com/warpcol/warpcol/internal/device"
	"github.com/warpcol/warpcol/internal/kernels"
	"github.com/warpcol/warpcol/mem"
)

// UnpackBools expands the validity bits [offset, offset+length) of a
// bit-packed mask into a dense Bool column (true = bit set). The result
// carries no mask of its own.
//
// A zero length returns an empty column without touching mask, so a nil mask
// is tolerated in that one case. A nonzero length with a nil mask is an
// error.
func UnpackBools(ctx context.Context, mask []uint32, offset, length int, optFns ...Option) (*Column, error) {
	o := newOptions(optFns...)

	start := time.Now()
	col, err := unpackBools(ctx, &o, mask, offset, length)
	o.metrics.RecordUnpack(length, time.Since(start), err)
	return col, err
}

func unpackBools(ctx context.Context, o *options, mask []uint32, offset, length int) (*Column, error) {
	if length == 0 {
		return &Column{dtype: Bool, alloc: o.alloc}, nil
	}
	if length < 0 || offset < 0 {
		return nil, fmt.Errorf("%w: bit range [%d, %d)", ErrInvalidArgument, offset, offset+length)
	}
	if mask == nil {
		return nil, fmt.Errorf("%w: nil mask with length %d", ErrInvalidArgument, length)
	}
	if offset+length > len(mask)*bitmask.WordBits {
		return nil, fmt.Errorf("%w: bit range [%d, %d) exceeds mask of %d bits",
			ErrInvalidArgument, offset, offset+length, len(mask)*bitmask.WordBits)
	}

	col, err := newFixedWidthColumn(ctx, o.alloc, Bool, length, false)
	if err != nil {
		return nil, err
	}

	stream, err := o.device().NewStream(ctx)
	if err != nil {
		col.Release()
		return nil, fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}

	dimX, _ := device.GridDims(length, 1)
	stream.LaunchGrid(dimX, 1, kernels.UnpackBits(mask, offset, col.data, dimX))

	if err := stream.Synchronize(); err != nil {
		col.Release()
		return nil, fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}
	return col, nil
}

// BoolsToMask packs a Bool column into a validity mask: bit k is set when
// element k is true and itself valid. It returns the mask words and the
// number of clear bits. The inverse of UnpackBools for all-valid input.
func BoolsToMask(ctx context.Context, col ColumnView, optFns ...Option) ([]uint32, int, error) {
	o := newOptions(optFns...)

	if col.DType() != Bool {
		return nil, 0, fmt.Errorf("%w: cannot pack %s column as mask", ErrInvalidArgument, col.DType())
	}
	if col.Len() == 0 {
		return nil, 0, nil
	}

	maskBytes, err := o.alloc.Allocate(ctx, bitmask.WordsFor(col.Len())*4)
	if err != nil {
		return nil, 0, err
	}
	dst := mem.Cast[uint32](maskBytes)

	stream, err := o.device().NewStream(ctx)
	if err != nil {
		o.alloc.Deallocate(maskBytes)
		return nil, 0, fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}

	var unset atomic.Int32
	groups := device.GroupCount(len(dst))
	stream.LaunchGroups(groups, kernels.PackBools(col.data, col.mask, dst, &unset, groups))

	if err := stream.Synchronize(); err != nil {
		o.alloc.Deallocate(maskBytes)
		return nil, 0, fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}
	return dst, int(unset.Load()), nil
}

// NullRows returns the set of row indices containing at least one null.
func NullRows(v TableView) *roaring.Bitmap {
	out := roaring.New()
	for j := 0; j < v.NumRows(); j++ {
		for i := 0; i < v.NumColumns(); i++ {
			if !v.Column(i).Valid(j) {
				out.Add(uint32(j))
				break
			}
		}
	}
	return out
}

// ValidRows returns the set of row indices containing no nulls.
func ValidRows(v TableView) *roaring.Bitmap {
	out := NullRows(v)
	out.Flip(0, uint64(v.NumRows()))
	return out
}
