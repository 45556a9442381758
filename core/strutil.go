package core

// itoa converts an integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	negative := n < 0
	if negative {
		n = -n
	}

	// Count digits
	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}

	if negative {
		digits++
	}

	// Build string from right to left
	buf := make([]byte, digits)
	pos := digits - 1

	for n > 0 {
		buf[pos] = byte('0' + n%10)
		n /= 10
		pos--
	}

	if negative {
		buf[0] = '-'
	}

	return string(buf)
}

// Itoa is the exported form for target code that formats debug output.
func Itoa(n int) string {
	return itoa(n)
}

// Ftoa1 formats a non-negative float with one decimal place. Enough for
// debug output of wind speeds without pulling fmt into the firmware.
func Ftoa1(f float32) string {
	if f < 0 {
		f = 0
	}
	whole := int(f)
	frac := int((f - float32(whole)) * 10)
	return itoa(whole) + "." + itoa(frac)
}
