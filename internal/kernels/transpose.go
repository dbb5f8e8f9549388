// Package kernels holds the grid kernels executed by the device. Each
// function returns a kernel closure bound to its buffers; the caller launches
// it with the matching grid shape.
package kernels

import (
	"math/bits"
	"sync/atomic"

	"github.com/warpcol/warpcol/internal/bitmask"
	"github.com/warpcol/warpcol/internal/device"
)

// ValueTranspose returns the 2-D grid kernel computing
// dst[j][i] = src[i][j]. Grid X covers source columns, grid Y source rows;
// workers stride both axes so problems larger than one grid pass are covered.
// Every destination cell is written by exactly one worker, so no
// synchronization is needed. Validity is not consulted: payload bytes under
// null positions are copied verbatim.
func ValueTranspose[T any](src, dst [][]T, strideX, strideY int) func(gx, gy int) {
	return func(gx, gy int) {
		for i := gx; i < len(src); i += strideX {
			col := src[i]
			for j := gy; j < len(col); j += strideY {
				dst[j][i] = col[j]
			}
		}
	}
}

// MaskTranspose returns the group kernel transposing the validity masks of a
// table with the given shape. masks[i] is source column i's mask, nil meaning
// all-valid. Each group handles a strided set of source rows j; within a row
// it walks bands of WarpSize source columns. The active-lane ballot marks
// lanes backed by real columns, the validity ballot packs their bits into one
// mask word, the group leader stores the word at the band's index in
// dstMasks[j] and atomically adds the invalid count to counts[j].
//
// Band boundaries coincide with mask word boundaries because the group size
// equals the mask word width.
func MaskTranspose(masks [][]uint32, rows, cols int, dstMasks [][]uint32, counts []atomic.Int32, stride int) func(g *device.Group) {
	return func(g *device.Group) {
		for j := g.Index(); j < rows; j += stride {
			for band := 0; band*device.WarpSize < cols; band++ {
				base := band * device.WarpSize

				active := g.Ballot(func(lane int) bool {
					return base+lane < cols
				})
				word := g.Ballot(func(lane int) bool {
					i := base + lane
					if i >= cols {
						return false
					}
					m := masks[i]
					return m == nil || bitmask.IsSet(m, j)
				})

				dstMasks[j][band] = word
				invalid := bits.OnesCount32(active) - bits.OnesCount32(word)
				counts[j].Add(int32(invalid))
			}
		}
	}
}

// UnpackBits returns the 1-D grid kernel expanding mask bits
// [offset, offset+len(dst)) into dense bytes (1 = valid). Every output
// position is independent.
func UnpackBits(mask []uint32, offset int, dst []byte, stride int) func(gx, gy int) {
	return func(gx, _ int) {
		for k := gx; k < len(dst); k += stride {
			if bitmask.IsSet(mask, offset+k) {
				dst[k] = 1
			} else {
				dst[k] = 0
			}
		}
	}
}

// PackBools returns the group kernel packing dense boolean bytes into a
// validity mask. An element packs as set when its byte is nonzero and, if
// valid is non-nil, its own validity bit is set. Each group covers a strided
// set of mask words; unset counts the clear bits over the element range.
func PackBools(vals []byte, valid []uint32, dst []uint32, unset *atomic.Int32, stride int) func(g *device.Group) {
	return func(g *device.Group) {
		for w := g.Index(); w < len(dst); w += stride {
			base := w * device.WarpSize

			active := g.Ballot(func(lane int) bool {
				return base+lane < len(vals)
			})
			word := g.Ballot(func(lane int) bool {
				k := base + lane
				if k >= len(vals) {
					return false
				}
				if valid != nil && !bitmask.IsSet(valid, k) {
					return false
				}
				return vals[k] != 0
			})

			dst[w] = word
			unset.Add(int32(bits.OnesCount32(active) - bits.OnesCount32(word)))
		}
	}
}
