package core

// Filter consumes raw ADC samples and produces a smoothed reading.
type Filter interface {
	// ProcessSample feeds one raw 8-bit sample into the filter.
	ProcessSample(sample uint8)
}

// MovingAverage smooths samples over a fixed window using integer
// arithmetic only.
type MovingAverage struct {
	window []uint8
	pos    int
	count  int
	sum    uint32
}

// NewMovingAverage creates a filter averaging the last window samples.
func NewMovingAverage(window int) *MovingAverage {
	if window < 1 {
		window = 1
	}
	return &MovingAverage{window: make([]uint8, window)}
}

func (f *MovingAverage) ProcessSample(sample uint8) {
	if f.count == len(f.window) {
		f.sum -= uint32(f.window[f.pos])
	} else {
		f.count++
	}
	f.window[f.pos] = sample
	f.sum += uint32(sample)
	f.pos++
	if f.pos == len(f.window) {
		f.pos = 0
	}
}

// Value returns the current average, or 0 before any sample has been
// processed.
func (f *MovingAverage) Value() uint8 {
	if f.count == 0 {
		return 0
	}
	return uint8(f.sum / uint32(f.count))
}
