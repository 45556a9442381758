package core

// SampleFunc is invoked when a wind reading completes. mph is the wind
// speed, direction the compass sector (0=N, 4=E and so on up to 15),
// ctx the opaque value supplied to StartSample.
type SampleFunc func(mph float32, direction int, ctx interface{})

// WindMeter is the capability callers program against: an asynchronous
// one-shot wind reading delivered via callback. For continuous
// operation, request the next sample from inside the callback.
type WindMeter interface {
	// StartSample begins a new reading. Returns false if one is already
	// in progress; the callback fires at most once per accepted call.
	StartSample(fn SampleFunc, ctx interface{}) bool

	// AbortSample discards a half-completed reading without invoking
	// the callback.
	AbortSample()

	// WindMPH returns the speed from the last completed reading.
	WindMPH() float32

	// WindDirection returns the compass sector from the last completed
	// reading, in [0,15].
	WindDirection() int
}
