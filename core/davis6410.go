// Driver for the Davis 6410 wind meter.
//
// The instrument reports wind speed by closing a reed switch once per
// anemometer revolution and wind direction through a potentiometer
// wiper read on an ADC channel. A reading is a two-phase sequence:
// count reed pulses over a fixed window, then claim the ADC and sample
// the vane.
package core

// defaultSamplePeriod is the speed window in milliseconds. The 6410's
// datasheet rates the minimum wind speed of 1 mph at 1 revolution per 2.25
// seconds, so a 2.25 second window makes the raw pulse count equal to
// the wind speed in mph with no scaling arithmetic.
const defaultSamplePeriod = 2250

// directionStep maps an 8-bit vane reading onto 16 compass sectors.
const directionStep = 256 / 16

// MeterState is the measurement sequencing state.
type MeterState uint8

const (
	// StateIdle - no reading in progress.
	StateIdle MeterState = iota
	// StateNewSample - a reading has just been requested.
	StateNewSample
	// StateSamplingSpeed - counting reed pulses over the sample window.
	StateSamplingSpeed
	// StateSamplingDirection - speed window closed, waiting for a
	// settled vane sample from the ADC.
	StateSamplingDirection
	// StateSendFrame - reading complete, callback pending.
	StateSendFrame
)

// Davis6410 sequences pulse counting, ADC channel switching and vane
// sampling into one asynchronous reading delivered via callback.
//
// Service must be polled from the main loop as fast as possible; the
// vane sample arrives from the ADC tick between polls. The state word
// is shared with the tick, so mainline transitions happen inside
// critical sections.
type Davis6410 struct {
	task   *ADCTask
	pulses PulseCounter
	pin    PulsePin

	// Duration of the speed window in milliseconds.
	samplePeriod uint32

	initialised bool

	state       MeterState
	sampleStart uint32
	pulseCount  uint8
	direction   uint8

	// Callback and context for the reading in progress.
	fn  SampleFunc
	ctx interface{}
}

// NewDavis6410 creates the meter. counter accumulates reed pulses on
// speedPin; vane is the ADC channel wired to the direction
// potentiometer. samplePeriod is in milliseconds; 0 selects the default
// 2250 ms window.
func NewDavis6410(sched *Scheduler, counter PulseCounter, speedPin PulsePin, vane Channel, samplePeriod uint32) *Davis6410 {
	if samplePeriod == 0 {
		samplePeriod = defaultSamplePeriod
	}
	return &Davis6410{
		task:         NewADCTask(sched, vane, nil),
		pulses:       counter,
		pin:          speedPin,
		samplePeriod: samplePeriod,
	}
}

// Initialise sets up the hardware resources. Must be called once before
// the first reading; further calls are no-ops.
func (d *Davis6410) Initialise() error {
	if d.initialised {
		return nil
	}
	if err := d.task.sched.InitialiseOnce(); err != nil {
		return err
	}
	if err := d.pulses.Configure(d.pin); err != nil {
		return err
	}
	d.initialised = true
	return nil
}

// StartSample begins a new reading. The callback is invoked from a
// Service poll when the reading is ready. Returns false if a reading is
// already in progress.
func (d *Davis6410) StartSample(fn SampleFunc, ctx interface{}) bool {
	if !d.initialised {
		panic("davis6410 used before Initialise")
	}

	state := disableInterrupts()
	defer restoreInterrupts(state)

	if d.state != StateIdle {
		return false
	}
	d.fn = fn
	d.ctx = ctx
	d.state = StateNewSample
	return true
}

// AbortSample discards the reading in progress, releasing the ADC if
// the direction phase had claimed it. The pending callback never fires;
// the caller asked to throw the measurement away, not to report a
// partial one.
func (d *Davis6410) AbortSample() {
	state := disableInterrupts()
	if d.state != StateIdle {
		d.task.Release(d)
		d.pulses.Disable()
		d.fn = nil
		d.ctx = nil
		d.state = StateIdle
	}
	restoreInterrupts(state)
}

// Service drives the measurement forward. Poll from the main loop as
// fast as possible; nothing here blocks.
func (d *Davis6410) Service() {
	switch d.State() {
	case StateNewSample:
		d.pulses.Reset()
		state := disableInterrupts()
		d.sampleStart = Now()
		d.state = StateSamplingSpeed
		restoreInterrupts(state)

	case StateSamplingSpeed:
		if Now()-d.sampleStart < d.samplePeriod {
			return
		}

		// Speed window closed; freeze the count and claim the ADC for
		// the vane. The state moves first so a sample arriving between
		// the claim and the next poll is not lost.
		d.pulseCount = d.pulses.Count()
		d.pulses.Disable()

		state := disableInterrupts()
		d.state = StateSamplingDirection
		restoreInterrupts(state)

		if err := d.task.Claim(d); err != nil {
			// A half-configured converter means no vane sample will
			// ever arrive; give up on this reading.
			DebugPrintln("davis6410: adc claim failed")
			d.AbortSample()
		}

	case StateSendFrame:
		state := disableInterrupts()
		fn, ctx := d.fn, d.ctx
		d.fn = nil
		d.ctx = nil
		d.state = StateIdle
		restoreInterrupts(state)

		// The callback runs in mainline context with the meter already
		// idle, so it may immediately start the next reading.
		if fn != nil {
			fn(d.WindMPH(), d.WindDirection(), ctx)
		}
	}
}

// OnSample receives vane samples from the ADC tick once the direction
// phase has claimed the converter. Runs in interrupt context.
func (d *Davis6410) OnSample(sample uint8) {
	if d.state != StateSamplingDirection {
		return
	}
	if d.task.Discard() {
		return
	}
	d.direction = sample
	d.task.Release(d)
	d.state = StateSendFrame
}

// WindMPH returns the speed from the last completed reading. The window
// is sized so the pulse count is the speed in mph at the default
// period; other periods scale linearly.
func (d *Davis6410) WindMPH() float32 {
	return d.calculateWindMPH(d.pulseCount)
}

// calculateWindMPH converts a window pulse count to mph. Calibration
// data could be applied here in the future.
func (d *Davis6410) calculateWindMPH(pulses uint8) float32 {
	return float32(pulses) * defaultSamplePeriod / float32(d.samplePeriod)
}

// WindDirection returns the vane sector from the last completed
// reading, 0=N, 4=E, through 15.
func (d *Davis6410) WindDirection() int {
	return int(d.direction) / directionStep
}

// State returns the current measurement phase.
func (d *Davis6410) State() MeterState {
	state := disableInterrupts()
	s := d.state
	restoreInterrupts(state)
	return s
}
