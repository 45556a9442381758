//go:build !tinygo

package core

var millis uint32

// getMillis returns the current time base (regular Go implementation)
func getMillis() uint32 {
	return millis
}

// SetNow sets the time base (for testing)
func SetNow(ms uint32) {
	millis = ms
}

// AdvanceNow moves the time base forward (for testing)
func AdvanceNow(ms uint32) {
	millis += ms
}
