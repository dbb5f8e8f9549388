package bitmask

// CPU feature flags, set by platform-specific init().
var (
	hasPopcnt bool
	hasNEON   bool
)

// activeKernel names the selected popcount path, for diagnostics.
var activeKernel = "generic"

// ActiveKernel reports which popcount implementation is in use.
func ActiveKernel() string {
	return activeKernel
}

func initCapabilities() {
	if hasPopcnt || hasNEON {
		kernelPopcountWords = popcountWordsUnrolled
		activeKernel = "unrolled"
	}
}
