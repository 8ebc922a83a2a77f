package tap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(seconds float64) time.Time {
	return epoch.Add(time.Duration(seconds * float64(time.Second)))
}

func TestRecordSteadyTaps(t *testing.T) {
	t.Parallel()

	e := New(nil)

	_, ok := e.Record(at(0))
	require.False(t, ok)

	var bpm float64
	for _, s := range []float64{0.5, 1.0, 1.5} {
		bpm, ok = e.Record(at(s))
		require.True(t, ok)
	}
	assert.InDelta(t, 120.0, bpm, 1e-9)
}

func TestRecordKeepsLastFourTaps(t *testing.T) {
	t.Parallel()

	e := New(nil)

	// a slow start followed by four taps 0.25s apart
	e.Record(at(0))
	e.Record(at(1.5))
	e.Record(at(1.75))
	e.Record(at(2.0))
	bpm, ok := e.Record(at(2.25))

	require.True(t, ok)
	assert.Equal(t, MaxTaps, e.Len())
	assert.InDelta(t, 240.0, bpm, 1e-9)
}

func TestRecordTimeoutStartsNewSession(t *testing.T) {
	t.Parallel()

	e := New(nil)
	e.Record(at(0))
	e.Record(at(0.5))
	require.Equal(t, 2, e.Len())

	// a single tap after the gap never produces an estimate
	_, ok := e.Record(at(3.0))
	assert.False(t, ok)
	assert.Equal(t, 1, e.Len())

	bpm, ok := e.Record(at(4.0))
	require.True(t, ok)
	assert.InDelta(t, 60.0, bpm, 1e-9)
}

func TestRecordGapOfExactlyTimeoutKeepsHistory(t *testing.T) {
	t.Parallel()

	e := New(nil)
	e.Record(at(0))
	bpm, ok := e.Record(at(2.0))

	require.True(t, ok)
	assert.Equal(t, MinBPM, bpm) // 30 bpm clamped up
}

func TestRecordClampsFastTaps(t *testing.T) {
	t.Parallel()

	e := New(nil)
	e.Record(at(0))
	bpm, ok := e.Record(at(0.1))

	require.True(t, ok)
	assert.Equal(t, MaxBPM, bpm)
}

func TestTapUsesClock(t *testing.T) {
	t.Parallel()

	clk := testingclock.NewFakePassiveClock(epoch)
	e := New(clk)

	e.Tap()
	clk.SetTime(epoch.Add(750 * time.Millisecond))
	bpm, ok := e.Tap()

	require.True(t, ok)
	assert.InDelta(t, 80.0, bpm, 1e-9)

	e.Reset()
	assert.Equal(t, 0, e.Len())
}
