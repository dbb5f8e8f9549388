//go:build !amd64 && !arm64

package bitmask

func init() {
	initCapabilities()
}
