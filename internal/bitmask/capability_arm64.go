//go:build arm64

package bitmask

func init() {
	// NEON (ASIMD) is baseline on arm64.
	hasNEON = true
	initCapabilities()
}
