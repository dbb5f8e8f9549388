// Package bitmask implements the bit-packed validity representation shared by
// all columns: bit k set means element k is valid, bit k clear means null.
// Bits are packed into 32-bit words, matching the lane width of one
// synchronization group, so mask word boundaries line up with group boundaries.
package bitmask

import "math/bits"

const (
	// WordBits is the number of validity bits per mask word.
	WordBits = 32

	wordShift = 5
	bitMask   = WordBits - 1
)

// WordsFor returns the number of mask words needed to hold n bits.
func WordsFor(n int) int {
	return (n + WordBits - 1) / WordBits
}

// IsSet reports whether bit k is set.
func IsSet(words []uint32, k int) bool {
	return words[k>>wordShift]&(1<<(uint(k)&bitMask)) != 0
}

// Set sets bit k.
func Set(words []uint32, k int) {
	words[k>>wordShift] |= 1 << (uint(k) & bitMask)
}

// Clear clears bit k.
func Clear(words []uint32, k int) {
	words[k>>wordShift] &^= 1 << (uint(k) & bitMask)
}

// CountSetBits counts set bits in the bit range [offset, offset+length).
// Partial words at either end are masked before counting.
func CountSetBits(words []uint32, offset, length int) int {
	if length <= 0 {
		return 0
	}

	first := offset >> wordShift
	last := (offset + length - 1) >> wordShift

	if first == last {
		w := words[first] >> (uint(offset) & bitMask)
		w &= (1 << uint(length)) - 1
		return bits.OnesCount32(w)
	}

	count := bits.OnesCount32(words[first] >> (uint(offset) & bitMask))
	if last > first+1 {
		count += PopcountWords(words[first+1 : last])
	}
	tail := uint(offset+length) & bitMask
	w := words[last]
	if tail != 0 {
		w &= (1 << tail) - 1
	}
	return count + bits.OnesCount32(w)
}

// CountUnsetBits counts clear bits in the bit range [offset, offset+length).
func CountUnsetBits(words []uint32, offset, length int) int {
	if length <= 0 {
		return 0
	}
	return length - CountSetBits(words, offset, length)
}

// Kernel function pointer for bulk popcount. The generic implementation is
// the default; platform-specific init() functions override it with the
// unrolled version when the host advertises fast popcount.
var kernelPopcountWords = popcountWordsGeneric

// PopcountWords counts all set bits across whole words.
func PopcountWords(words []uint32) int {
	return kernelPopcountWords(words)
}

func popcountWordsGeneric(words []uint32) int {
	count := 0
	for _, w := range words {
		count += bits.OnesCount32(w)
	}
	return count
}

func popcountWordsUnrolled(words []uint32) int {
	count := 0
	i := 0
	for ; i+4 <= len(words); i += 4 {
		count += bits.OnesCount32(words[i])
		count += bits.OnesCount32(words[i+1])
		count += bits.OnesCount32(words[i+2])
		count += bits.OnesCount32(words[i+3])
	}
	for ; i < len(words); i++ {
		count += bits.OnesCount32(words[i])
	}
	return count
}
