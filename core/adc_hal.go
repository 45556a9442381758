package core

// Channel identifies a selectable analog input on the ADC multiplexer.
type Channel uint8

// ChannelNone marks "no channel selected yet". It forces a mux write on
// the first conversion after power-up.
const ChannelNone Channel = 0xFF

// ADCDriver is the abstract timer/ADC interface that core code uses.
// Platform-specific implementations handle the actual registers.
//
// The sampling timer is deliberately programmed slower than the ADC's
// own conversion time, so a result is normally ready on every tick.
type ADCDriver interface {
	// Configure programs the periodic sampling timer and the ADC
	// conversion clock divider. Called once by the scheduler.
	Configure(tickPeriodUS uint32, clockDivider uint8) error

	// TriggerConversion starts a conversion on the selected channel.
	TriggerConversion()

	// ConversionReady reports whether a result is available to read.
	ConversionReady() bool

	// ReadResult returns the latest conversion result, scaled to 8 bits.
	ReadResult() uint8

	// SelectChannel switches the input multiplexer. The first few
	// samples after a switch are not trustworthy; consumers discard
	// them (see settleCount).
	SelectChannel(ch Channel)
}
