package tap

import (
	"time"

	"k8s.io/utils/clock"
)

const (
	// MaxTaps is how many recent taps feed the average.
	MaxTaps = 4

	// Timeout is the gap after which a new tap starts a fresh session.
	Timeout = 2 * time.Second

	MinBPM = 40.0
	MaxBPM = 240.0
)

// Estimator turns manual taps into a tempo.
type Estimator struct {
	clock clock.PassiveClock
	taps  []time.Time
}

// New returns an Estimator reading time from clk.
func New(clk clock.PassiveClock) *Estimator {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Estimator{
		clock: clk,
		taps:  make([]time.Time, 0, MaxTaps+1),
	}
}

// Tap records a tap at the current time.
func (e *Estimator) Tap() (float64, bool) {
	return e.Record(e.clock.Now())
}

// Record adds a tap at now and returns the estimated bpm once at least two
// taps are in the current session.
func (e *Estimator) Record(now time.Time) (float64, bool) {
	if n := len(e.taps); n > 0 && now.Sub(e.taps[n-1]) > Timeout {
		e.taps = e.taps[:0]
	}

	e.taps = append(e.taps, now)
	if over := len(e.taps) - MaxTaps; over > 0 {
		e.taps = append(e.taps[:0], e.taps[over:]...)
	}

	if len(e.taps) < 2 {
		return 0, false
	}

	var total time.Duration
	for i := 1; i < len(e.taps); i++ {
		total += e.taps[i].Sub(e.taps[i-1])
	}
	avg := total.Seconds() / float64(len(e.taps)-1)

	return clamp(60.0/avg, MinBPM, MaxBPM), true
}

// Reset forgets all taps.
func (e *Estimator) Reset() {
	e.taps = e.taps[:0]
}

// Len returns the number of taps in the current session.
func (e *Estimator) Len() int {
	return len(e.taps)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
