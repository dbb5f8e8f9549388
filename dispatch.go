package warpcol

import (
	"github.com/warpcol/warpcol/internal/device"
	"github.com/warpcol/warpcol/internal/kernels"
	"github.com/warpcol/warpcol/mem"
)

// dispatchValueTranspose maps the table's runtime element type onto the
// generic value kernel. The switch is exhaustive over the sealed DType set;
// variable-width types are rejected before dispatch ever runs.
func dispatchValueTranspose(dt DType, s *device.Stream, in TableView, out []*Column, dimX, dimY int) error {
	switch dt {
	case Bool:
		launchValueTranspose[bool](s, in, out, dimX, dimY)
	case Int8:
		launchValueTranspose[int8](s, in, out, dimX, dimY)
	case Int16:
		launchValueTranspose[int16](s, in, out, dimX, dimY)
	case Int32:
		launchValueTranspose[int32](s, in, out, dimX, dimY)
	case Int64:
		launchValueTranspose[int64](s, in, out, dimX, dimY)
	case Uint8:
		launchValueTranspose[uint8](s, in, out, dimX, dimY)
	case Uint16:
		launchValueTranspose[uint16](s, in, out, dimX, dimY)
	case Uint32:
		launchValueTranspose[uint32](s, in, out, dimX, dimY)
	case Uint64:
		launchValueTranspose[uint64](s, in, out, dimX, dimY)
	case Float32:
		launchValueTranspose[float32](s, in, out, dimX, dimY)
	case Float64:
		launchValueTranspose[float64](s, in, out, dimX, dimY)
	default:
		return &ErrUnsupportedType{DType: dt}
	}
	return nil
}

func launchValueTranspose[T Element](s *device.Stream, in TableView, out []*Column, dimX, dimY int) {
	src := make([][]T, in.NumColumns())
	for i := range src {
		src[i] = Values[T](in.Column(i))
	}
	dst := make([][]T, len(out))
	for j := range dst {
		dst[j] = mem.Cast[T](out[j].data)[:out[j].length]
	}
	s.LaunchGrid(dimX, dimY, kernels.ValueTranspose(src, dst, dimX, dimY))
}
