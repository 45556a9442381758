//go:build rp2040

package main

import (
	"device/rp"
	"machine"

	"windbridge/core"
)

// RPADCDriver implements core.ADCDriver at register level. TinyGo's
// machine.ADC.Get busy-waits for the conversion, which the sampling
// engine must never do; driving CS.START_ONCE and polling CS.READY
// directly keeps the trigger/ready/read cycle non-blocking.
type RPADCDriver struct {
	configured bool
}

// NewRPADCDriver constructs the driver but does not Configure it yet.
func NewRPADCDriver() *RPADCDriver {
	return &RPADCDriver{}
}

// Configure powers up the ADC, programs the conversion clock divider and
// puts the muxed vane pins into analog mode. The tick period is unused
// here: the RP2040 build paces ticks from the main loop, with
// ConversionReady providing the rate limit.
func (d *RPADCDriver) Configure(tickPeriodUS uint32, clockDivider uint8) error {
	if d.configured {
		return nil
	}

	machine.InitADC()

	// Each conversion takes 96 ADC clock cycles; the divider slows the
	// free clock down to the sampling rate we want.
	rp.ADC.DIV.Set(uint32(clockDivider) << rp.ADC_DIV_INT_Pos)

	// Channels 0-3 are muxed onto the ADC0-ADC3 pins.
	for _, pin := range []machine.Pin{machine.ADC0, machine.ADC1, machine.ADC2, machine.ADC3} {
		adc := machine.ADC{Pin: pin}
		if err := adc.Configure(machine.ADCConfig{}); err != nil {
			return err
		}
	}

	d.configured = true
	return nil
}

// TriggerConversion starts a single conversion on the selected channel.
func (d *RPADCDriver) TriggerConversion() {
	rp.ADC.CS.SetBits(rp.ADC_CS_START_ONCE)
}

// ConversionReady reports whether the last conversion has completed.
func (d *RPADCDriver) ConversionReady() bool {
	return rp.ADC.CS.HasBits(rp.ADC_CS_READY)
}

// ReadResult returns the latest result scaled to the 8-bit range the
// core works in.
func (d *RPADCDriver) ReadResult() uint8 {
	// Hardware result is 12 bits.
	return uint8(rp.ADC.RESULT.Get() >> 4)
}

// SelectChannel switches the input multiplexer.
func (d *RPADCDriver) SelectChannel(ch core.Channel) {
	rp.ADC.CS.ReplaceBits(
		uint32(ch)<<rp.ADC_CS_AINSEL_Pos,
		rp.ADC_CS_AINSEL_Msk,
		0,
	)
}
