// Package memzero wipes secret key bytes once they are no longer needed.
package memzero

import "runtime"

// Zero clears b in place.
func Zero(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}

// ZeroAll clears every buffer in bs.
func ZeroAll(bs ...[]byte) {
	for _, b := range bs {
		Zero(b)
	}
}
