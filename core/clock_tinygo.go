//go:build tinygo

package core

import "time"

var bootTime = time.Now()

// getMillis returns milliseconds since boot
func getMillis() uint32 {
	return uint32(time.Since(bootTime).Milliseconds())
}
