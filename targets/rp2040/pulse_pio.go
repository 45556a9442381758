//go:build rp2040

package main

// PIO edge counter for the anemometer reed switch.
//
// The state machine waits for each rising edge and pushes one word into
// its RX FIFO; the mainline drains the FIFO and accumulates the count.
// Reed pulses arrive a few times per second at most, so the FIFO never
// gets close to full between polls.

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"windbridge/core"
)

// buildPulseProgram creates the edge counter program using AssemblerV0
func buildPulseProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Wait(0, rp2pio.WaitSrcPin, 0).Encode(), // 0: wait 0 pin 0
		asm.Wait(1, rp2pio.WaitSrcPin, 0).Encode(), // 1: wait 1 pin 0
		asm.Push(false, false).Encode(),            // 2: push noblock
		// .wrap
	}
}

const pulsePIOOrigin = 0 // Load at offset 0 for correct wrap addresses

// PIOPulseCounter implements core.PulseCounter on a PIO state machine.
type PIOPulseCounter struct {
	pio     *rp2pio.PIO
	sm      rp2pio.StateMachine
	pin     machine.Pin
	count   uint8
	enabled bool
}

// NewPIOPulseCounter creates the counter on the given PIO block (0 or 1)
// and state machine (0-3).
func NewPIOPulseCounter(pioNum, smNum uint8) *PIOPulseCounter {
	pioHW := rp2pio.PIO0
	if pioNum != 0 {
		pioHW = rp2pio.PIO1
	}
	return &PIOPulseCounter{
		pio: pioHW,
		sm:  pioHW.StateMachine(smNum),
	}
}

// Configure loads the program and starts the state machine watching pin.
func (c *PIOPulseCounter) Configure(pin core.PulsePin) error {
	c.pin = machine.Pin(pin)

	c.sm.TryClaim()

	program := buildPulseProgram()
	offset, err := c.pio.AddProgram(program, pulsePIOOrigin)
	if err != nil {
		return err
	}

	// The reed switch shorts the line to ground; idle is pulled high.
	c.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetInPins(c.pin)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)

	// Divide the clock right down; the edges of interest are
	// milliseconds apart and a slow clock doubles as a glitch filter
	// for reed switch bounce.
	cfg.SetClkDivIntFrac(65535, 0)

	c.sm.Init(offset, cfg)
	c.sm.SetEnabled(true)

	c.enabled = true
	return nil
}

// Reset clears the count and enables accumulation.
func (c *PIOPulseCounter) Reset() {
	c.drain(false)
	c.count = 0
	c.enabled = true
}

// Count returns the edges accumulated since the last Reset.
func (c *PIOPulseCounter) Count() uint8 {
	c.drain(c.enabled)
	return c.count
}

// Disable stops accumulating edges until the next Reset. The state
// machine keeps running; queued edges are discarded on the next drain.
func (c *PIOPulseCounter) Disable() {
	c.drain(c.enabled)
	c.enabled = false
}

// drain empties the RX FIFO, counting each queued edge if accumulate is
// set. The count saturates at 255.
func (c *PIOPulseCounter) drain(accumulate bool) {
	for !c.sm.IsRxFIFOEmpty() {
		c.sm.RxGet()
		if accumulate && c.count < 255 {
			c.count++
		}
	}
}
