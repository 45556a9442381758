package core

// Now returns the time base in milliseconds. Every measurement window in
// this firmware is expressed in milliseconds, so a 32-bit counter is
// plenty; elapsed-time arithmetic is wrap-safe.
func Now() uint32 {
	return getMillis()
}
