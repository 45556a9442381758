package core

import (
	"testing"
)

// mockADC is a scripted ADCDriver for tests.
type mockADC struct {
	configCalls int
	ready       bool
	samples     []uint8
	pos         int
	selected    Channel
	selects     []Channel
	triggers    int
}

func newMockADC(samples ...uint8) *mockADC {
	return &mockADC{ready: true, samples: samples, selected: ChannelNone}
}

func (m *mockADC) Configure(tickPeriodUS uint32, clockDivider uint8) error {
	m.configCalls++
	return nil
}

func (m *mockADC) TriggerConversion() {
	m.triggers++
}

func (m *mockADC) ConversionReady() bool {
	return m.ready
}

func (m *mockADC) ReadResult() uint8 {
	if m.pos < len(m.samples) {
		v := m.samples[m.pos]
		m.pos++
		return v
	}
	if len(m.samples) > 0 {
		return m.samples[len(m.samples)-1]
	}
	return 0
}

func (m *mockADC) SelectChannel(ch Channel) {
	m.selected = ch
	m.selects = append(m.selects, ch)
}

// recorderTask collects every sample dispatched to it.
type recorderTask struct {
	samples []uint8
}

func (t *recorderTask) OnSample(sample uint8) {
	t.samples = append(t.samples, sample)
}

// recordFilter collects every settled sample forwarded by an ADCTask.
type recordFilter struct {
	samples []uint8
}

func (f *recordFilter) ProcessSample(sample uint8) {
	f.samples = append(f.samples, sample)
}

func TestInitialiseOnce(t *testing.T) {
	adc := newMockADC()
	sched := NewScheduler(adc)

	if err := sched.InitialiseOnce(); err != nil {
		t.Fatalf("InitialiseOnce failed: %v", err)
	}
	if err := sched.InitialiseOnce(); err != nil {
		t.Fatalf("second InitialiseOnce failed: %v", err)
	}

	if adc.configCalls != 1 {
		t.Errorf("Expected 1 Configure call, got %d", adc.configCalls)
	}
	if adc.triggers == 0 {
		t.Error("InitialiseOnce did not start a conversion")
	}
}

func TestSingleOwnership(t *testing.T) {
	adc := newMockADC(10, 20, 30, 40, 50, 60)
	sched := NewScheduler(adc)

	taskA := &recorderTask{}
	taskB := &recorderTask{}

	sched.RequestActive(taskA, 0)
	for i := 0; i < 3; i++ {
		sched.Tick()
	}

	if len(taskA.samples) != 3 {
		t.Fatalf("Expected 3 samples for task A, got %d", len(taskA.samples))
	}

	// Task B supersedes A; A is not notified and simply stops receiving.
	sched.RequestActive(taskB, 1)
	for i := 0; i < 3; i++ {
		sched.Tick()
	}

	if len(taskA.samples) != 3 {
		t.Errorf("Superseded task A still received samples, got %d", len(taskA.samples))
	}
	if len(taskB.samples) != 3 {
		t.Errorf("Expected 3 samples for task B, got %d", len(taskB.samples))
	}
}

func TestReleaseIfActiveStale(t *testing.T) {
	adc := newMockADC(1, 2, 3)
	sched := NewScheduler(adc)

	taskA := &recorderTask{}
	taskB := &recorderTask{}

	sched.RequestActive(taskA, 0)
	sched.RequestActive(taskB, 1)

	// A's stale stop must not clobber B's ownership.
	sched.ReleaseIfActive(taskA)
	sched.Tick()

	if len(taskB.samples) != 1 {
		t.Errorf("Expected task B to keep receiving after stale release, got %d samples", len(taskB.samples))
	}

	sched.ReleaseIfActive(taskB)
	sched.Tick()

	if len(taskB.samples) != 1 {
		t.Errorf("Released task B still received samples, got %d", len(taskB.samples))
	}
}

func TestNotReadySkipsTick(t *testing.T) {
	adc := newMockADC(1)
	sched := NewScheduler(adc)

	task := &recorderTask{}
	sched.RequestActive(task, 0)

	adc.ready = false
	triggersBefore := adc.triggers
	sched.Tick()

	if len(task.samples) != 0 {
		t.Error("Sample dispatched while conversion not ready")
	}
	if adc.triggers != triggersBefore {
		t.Error("Tick re-triggered a conversion that never completed")
	}

	// Self-correcting on the next tick.
	adc.ready = true
	sched.Tick()
	if len(task.samples) != 1 {
		t.Errorf("Expected 1 sample after recovery, got %d", len(task.samples))
	}
}

func TestChannelSwitch(t *testing.T) {
	adc := newMockADC(9)
	sched := NewScheduler(adc)

	task := &recorderTask{}
	sched.RequestActive(task, 3)

	sched.Tick()
	sched.Tick()

	if len(adc.selects) != 1 {
		t.Fatalf("Expected exactly 1 channel switch, got %d", len(adc.selects))
	}
	if adc.selects[0] != 3 {
		t.Errorf("Expected switch to channel 3, got %d", adc.selects[0])
	}
	if adc.selected != 3 {
		t.Errorf("Hardware channel register is %d, want 3", adc.selected)
	}
}

func TestSettlingDiscard(t *testing.T) {
	adc := newMockADC(1, 2, 3, 4, 5, 6, 7, 8)
	sched := NewScheduler(adc)

	filter := &recordFilter{}
	task := NewADCTask(sched, 2, filter)

	if err := task.Claim(task); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}

	for i := 0; i < 8; i++ {
		sched.Tick()
	}

	// The first settleCount samples never reach the filter.
	want := []uint8{5, 6, 7, 8}
	if len(filter.samples) != len(want) {
		t.Fatalf("Expected %d settled samples, got %d", len(want), len(filter.samples))
	}
	for i, v := range want {
		if filter.samples[i] != v {
			t.Errorf("Settled sample %d: got %d, want %d", i, filter.samples[i], v)
		}
	}
}

func TestReclaimRearmsSettling(t *testing.T) {
	adc := newMockADC(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	sched := NewScheduler(adc)

	filter := &recordFilter{}
	task := NewADCTask(sched, 2, filter)

	if err := task.Claim(task); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		sched.Tick()
	}
	task.Release(task)

	// Claiming again must discard another settling window.
	if err := task.Claim(task); err != nil {
		t.Fatalf("second Claim failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		sched.Tick()
	}

	want := []uint8{5, 10}
	if len(filter.samples) != len(want) {
		t.Fatalf("Expected %d settled samples, got %d: %v", len(want), len(filter.samples), filter.samples)
	}
	for i, v := range want {
		if filter.samples[i] != v {
			t.Errorf("Settled sample %d: got %d, want %d", i, filter.samples[i], v)
		}
	}
}
