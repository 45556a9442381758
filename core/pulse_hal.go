package core

// PulsePin identifies the digital input carrying anemometer pulses.
type PulsePin uint32

// PulseCounter is the abstract edge counter used for wind speed. It
// accumulates rising edges independently of the ADC path, so pulses keep
// arriving while the converter belongs to some other consumer.
type PulseCounter interface {
	// Configure prepares the input pin and starts the counting hardware.
	Configure(pin PulsePin) error

	// Reset clears the accumulated count and enables counting.
	Reset()

	// Count returns the edges accumulated since the last Reset. The
	// count saturates at 255, well beyond anything the instrument can
	// produce in one sample window.
	Count() uint8

	// Disable stops accumulating edges until the next Reset.
	Disable()
}
