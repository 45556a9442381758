//go:build rp2040

package main

import (
	"machine"

	"windbridge/core"
	"windbridge/tx20"
)

const (
	// The vane potentiometer is wired to GPIO26 / ADC0.
	vaneChannel = core.Channel(0)

	// The anemometer reed switch is wired to GPIO22.
	pulsePin = core.PulsePin(22)
)

var meter *core.Davis6410

func main() {
	err := machine.Serial.Configure(machine.UARTConfig{BaudRate: 115200})
	if err != nil {
		return
	}

	// Debug lines share the CDC stream with the TX20 datagrams; the host
	// resynchronises around them, but leave debug off unless bench
	// testing.
	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s))
		machine.Serial.Write([]byte("\r\n"))
	})

	adc := NewRPADCDriver()
	sched := core.NewScheduler(adc)

	counter := NewPIOPulseCounter(0, 0)
	meter = core.NewDavis6410(sched, counter, pulsePin, vaneChannel, 0)

	// The meter must be initialised before use.
	if err := meter.Initialise(); err != nil {
		core.DebugPrintln("init failed: " + err.Error())
		for {
		}
	}

	core.DebugPrintln("")
	core.DebugPrintln("Davis 6410 ==> TX20 Bridge")
	core.DebugPrintln("")

	// Start the first wind sample off. From then on the callback chains
	// the next reading itself.
	meter.StartSample(sendReading, nil)

	// Main loop. The tick is polled rather than interrupt-driven on the
	// RP2040: the loop spins far faster than the conversion completes,
	// so ConversionReady paces the sampling exactly as a slow timer
	// interrupt would.
	for {
		sched.Tick()
		meter.Service()
	}
}

// sendReading emits one completed reading as a TX20 datagram followed
// by CRLF, then starts the next sample.
func sendReading(mph float32, direction int, _ interface{}) {
	frame := tx20.Frame{
		Direction: uint8(direction),
		Speed:     tx20.SpeedUnits(mph),
	}

	packet := append(frame.Encode(), '\r', '\n')
	machine.Serial.Write(packet)

	core.DebugPrintln("wind: mph=" + core.Ftoa1(mph) + " direction=" + core.Itoa(direction))

	meter.StartSample(sendReading, nil)
}
