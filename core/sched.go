// ADC sampling engine.
//
// The ADC runs continuously in the background: a periodic timer tick
// services the converter and hands each sample to whichever task
// currently owns the ADC. Tasks hook into the loop through ADCTask and
// acquire the samples as they are generated.
package core

// settleCount is the number of samples discarded after a channel switch,
// giving the ADC input time to settle on the new source.
const settleCount = 4

// Tick period and conversion clock divider programmed once at start-up.
// The tick rate must stay slower than the ADC conversion rate so a
// result is always ready when the tick fires.
const (
	tickPeriodUS    = 32
	adcClockDivider = 32
)

// Task is a consumer registered to receive ADC samples from one channel.
// OnSample is invoked from the timer tick while the task is active; it
// must complete in bounded time and never block.
type Task interface {
	OnSample(sample uint8)
}

// Scheduler owns the single hardware ADC and its channel multiplexer.
// At most one task is active at a time; a second task claiming the ADC
// silently supersedes the first. The superseded task simply stops
// receiving samples, it is not notified.
//
// selected, requested and active are shared with the timer tick.
// Mainline code mutates them only inside disableInterrupts critical
// sections, so the tick never observes a half-updated pair.
type Scheduler struct {
	drv ADCDriver

	// Channel currently configured in hardware.
	selected Channel

	// Channel the active task wants. The tick reconciles the two.
	requested Channel

	// Active consumer, or nil. The scheduler does not own the task's
	// lifetime; tasks deregister themselves via ReleaseIfActive.
	active Task

	initialised bool
}

// NewScheduler creates the scheduler for the one physical ADC on the
// device. drv must not be nil.
func NewScheduler(drv ADCDriver) *Scheduler {
	if drv == nil {
		panic("ADC driver not configured")
	}
	return &Scheduler{drv: drv, selected: ChannelNone}
}

// InitialiseOnce programs the sampling timer and conversion clock and
// starts the first conversion. Subsequent calls are no-ops.
func (s *Scheduler) InitialiseOnce() error {
	if s.initialised {
		return nil
	}
	if err := s.drv.Configure(tickPeriodUS, adcClockDivider); err != nil {
		return err
	}

	// Start the conversions off in the background.
	s.drv.TriggerConversion()

	s.initialised = true
	return nil
}

// RequestActive makes task the active consumer and routes the mux to ch.
// Idempotent for a task that is already active. Call from mainline code
// only; the tick itself never reassigns ownership.
func (s *Scheduler) RequestActive(task Task, ch Channel) {
	state := disableInterrupts()
	s.requested = ch
	if s.active != task {
		s.active = task
	}
	restoreInterrupts(state)
}

// ReleaseIfActive clears the active slot only if task still owns it, so
// a stale Stop cannot clobber a task that has since reclaimed the ADC.
func (s *Scheduler) ReleaseIfActive(task Task) {
	state := disableInterrupts()
	if s.active == task {
		s.active = nil
	}
	restoreInterrupts(state)
}

// Tick services the ADC on each timer interrupt: read the sample, switch
// the mux if a different channel was requested, start the next
// conversion and dispatch to the active task. Runs in interrupt context
// and must never block.
func (s *Scheduler) Tick() {
	// Nothing to do if the conversion hasn't finished. The tick rate is
	// slower than the converter, so this only happens on a misbehaving
	// ADC; skipping the tick is self-correcting.
	if !s.drv.ConversionReady() {
		return
	}

	sample := s.drv.ReadResult()

	// Change the channel if need be, then start the next conversion.
	// The sample just read still belongs to the old channel; the new
	// owner's settling window covers the switch-over.
	if s.requested != s.selected {
		s.drv.SelectChannel(s.requested)
		s.selected = s.requested
	}

	s.drv.TriggerConversion()

	if s.active != nil {
		s.active.OnSample(sample)
	}
}

// ADCTask carries the per-consumer bookkeeping every concrete task
// needs: which channel it samples, how many post-switch samples are
// still to be discarded, and an optional filter fed with the settled
// samples.
type ADCTask struct {
	sched  *Scheduler
	ch     Channel
	ignore uint8
	filter Filter
}

// NewADCTask creates a task for one ADC channel. filter may be nil for
// consumers that handle raw samples themselves.
func NewADCTask(sched *Scheduler, ch Channel, filter Filter) *ADCTask {
	return &ADCTask{sched: sched, ch: ch, filter: filter}
}

// Claim makes owner the active consumer of this task's channel and arms
// the settling discard window. owner is the concrete task embedding this
// helper; the scheduler dispatches to it, not to the helper.
func (t *ADCTask) Claim(owner Task) error {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	// Make sure the background sampling loop is running.
	if err := t.sched.InitialiseOnce(); err != nil {
		return err
	}

	t.ignore = settleCount
	t.sched.RequestActive(owner, t.ch)

	// Kick a conversion in case the previous owner left the ADC idle.
	t.sched.drv.TriggerConversion()
	return nil
}

// Release gives up ADC ownership if owner still holds it.
func (t *ADCTask) Release(owner Task) {
	t.sched.ReleaseIfActive(owner)
}

// Discard reports whether the settling window is still open, consuming
// one discard slot if so.
func (t *ADCTask) Discard() bool {
	if t.ignore > 0 {
		t.ignore--
		return true
	}
	return false
}

// OnSample feeds settled samples into the task's filter. Concrete tasks
// that want the raw values implement OnSample themselves and use
// Discard directly.
func (t *ADCTask) OnSample(sample uint8) {
	if t.Discard() {
		return
	}
	if t.filter != nil {
		t.filter.ProcessSample(sample)
	}
}
