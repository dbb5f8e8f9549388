package warpcol

import (
	"context"
	"fmt"

	"github.com/warpcol/warpcol/internal/bitmask"
	"github.com/warpcol/warpcol/mem"
)

// Column is a contiguous sequence of fixed-width elements of one type, plus
// an optional bit-packed validity mask (bit k set = element k valid). A
// column owns its buffers and returns them to its allocator on Release.
type Column struct {
	dtype     DType
	length    int
	data      []byte
	mask      []uint32
	nullCount int
	alloc     mem.Allocator
}

// NewColumn builds a column from a slice of values. valids marks per-element
// validity; nil means every element is valid and no mask is allocated.
func NewColumn[T Element](ctx context.Context, alloc mem.Allocator, values []T, valids []bool) (*Column, error) {
	if valids != nil && len(valids) != len(values) {
		return nil, fmt.Errorf("%w: %d values with %d validity flags", ErrInvalidArgument, len(values), len(valids))
	}

	dt := dtypeOf[T]()
	col, err := newFixedWidthColumn(ctx, alloc, dt, len(values), valids != nil)
	if err != nil {
		return nil, err
	}

	copy(mem.Cast[T](col.data), values)

	if valids != nil {
		for k, ok := range valids {
			if ok {
				bitmask.Set(col.mask, k)
			}
		}
		col.nullCount = bitmask.CountUnsetBits(col.mask, 0, len(values))
	}
	return col, nil
}

// newFixedWidthColumn allocates an uninitialized column of the given shape
// through the explicit allocator handle.
func newFixedWidthColumn(ctx context.Context, alloc mem.Allocator, dt DType, length int, withMask bool) (*Column, error) {
	if !dt.FixedWidth() {
		return nil, &ErrUnsupportedType{DType: dt}
	}

	data, err := alloc.Allocate(ctx, length*dt.Size())
	if err != nil {
		return nil, err
	}

	var mask []uint32
	if withMask {
		maskBytes, err := alloc.Allocate(ctx, bitmask.WordsFor(length)*4)
		if err != nil {
			alloc.Deallocate(data)
			return nil, err
		}
		mask = mem.Cast[uint32](maskBytes)
	}

	return &Column{
		dtype:  dt,
		length: length,
		data:   data,
		mask:   mask,
		alloc:  alloc,
	}, nil
}

// DType returns the element type.
func (c *Column) DType() DType { return c.dtype }

// Len returns the element count.
func (c *Column) Len() int { return c.length }

// HasMask reports whether the column carries a validity mask.
func (c *Column) HasMask() bool { return c.mask != nil }

// NullCount returns the recorded number of null elements. It is 0 for
// columns without a mask.
func (c *Column) NullCount() int { return c.nullCount }

// HasNulls reports whether the column contains at least one null.
func (c *Column) HasNulls() bool { return c.mask != nil && c.nullCount > 0 }

// Valid reports element k's validity. Columns without a mask are all-valid.
func (c *Column) Valid(k int) bool {
	return c.mask == nil || bitmask.IsSet(c.mask, k)
}

// Release returns the column's buffers to its allocator. The column must not
// be used afterwards.
func (c *Column) Release() {
	if c.alloc == nil {
		return
	}
	c.alloc.Deallocate(c.data)
	if c.mask != nil {
		c.alloc.Deallocate(mem.Bytes(c.mask))
	}
	c.data = nil
	c.mask = nil
	c.length = 0
	c.nullCount = 0
}

// View returns a non-owning read view of the column.
func (c *Column) View() ColumnView {
	return ColumnView{
		dtype:     c.dtype,
		length:    c.length,
		data:      c.data,
		mask:      c.mask,
		nullCount: c.nullCount,
	}
}

// ColumnView is a borrowed, read-only view of a column. It is valid only as
// long as the underlying column.
type ColumnView struct {
	dtype     DType
	length    int
	data      []byte
	mask      []uint32
	nullCount int
}

// DType returns the element type.
func (v ColumnView) DType() DType { return v.dtype }

// Len returns the element count.
func (v ColumnView) Len() int { return v.length }

// HasMask reports whether the column carries a validity mask.
func (v ColumnView) HasMask() bool { return v.mask != nil }

// NullCount returns the recorded number of null elements.
func (v ColumnView) NullCount() int { return v.nullCount }

// HasNulls reports whether the column contains at least one null.
func (v ColumnView) HasNulls() bool { return v.mask != nil && v.nullCount > 0 }

// Valid reports element k's validity.
func (v ColumnView) Valid(k int) bool {
	return v.mask == nil || bitmask.IsSet(v.mask, k)
}

// Mask returns the raw validity words, nil when absent. Callers must not
// mutate them.
func (v ColumnView) Mask() []uint32 { return v.mask }

// Values reinterprets a column's elements as a typed slice. T must match the
// column's DType width. The slice aliases column memory; treat it as
// read-only for views.
func Values[T Element](v ColumnView) []T {
	return mem.Cast[T](v.data)[:v.length]
}
