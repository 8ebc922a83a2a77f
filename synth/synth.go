package synth

import (
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/fogleman/ease"
)

const (
	SampleRate = beep.SampleRate(44100)

	ClickDuration   = 30 * time.Millisecond
	AccentFrequency = 1500.0
	NormalFrequency = 800.0

	Attack  = 2 * time.Millisecond
	Release = 8 * time.Millisecond

	// Gain leaves headroom so the click never clips.
	Gain = 0.8
)

// Kind selects one of the two click waveforms.
type Kind int

const (
	KindNormal Kind = iota
	KindAccent
)

func (k Kind) String() string {
	if k == KindAccent {
		return "accent"
	}
	return "normal"
}

// Frequency returns the carrier frequency for the click kind.
func (k Kind) Frequency() float64 {
	if k == KindAccent {
		return AccentFrequency
	}
	return NormalFrequency
}

// samplesFor converts d to a sample count without floating point rounding,
// so 30ms at 44100Hz is exactly 1323 samples.
func samplesFor(d time.Duration, sr beep.SampleRate) int {
	return int(int64(d) * int64(sr) / int64(time.Second))
}

// Envelope is a linear attack / flat sustain / linear release shape.
type Envelope struct {
	AttackFrames int
	ReleaseStart int
	Frames       int

	// Curve maps a 0..1 ramp position to a gain. Clicks use ease.Linear;
	// any ease function reshapes both ramps.
	Curve func(float64) float64
}

// NewEnvelope builds the envelope for a buffer of the given length.
func NewEnvelope(frames int, attack, release time.Duration, sr beep.SampleRate) Envelope {
	releaseStart := frames - samplesFor(release, sr)
	if releaseStart < 0 {
		releaseStart = 0
	}
	return Envelope{
		AttackFrames: samplesFor(attack, sr),
		ReleaseStart: releaseStart,
		Frames:       frames,
		Curve:        ease.Linear,
	}
}

// At returns the envelope gain for sample i.
func (e Envelope) At(i int) float64 {
	curve := e.Curve
	if curve == nil {
		curve = ease.Linear
	}
	switch {
	case i < e.AttackFrames:
		return curve(float64(i) / float64(e.AttackFrames))
	case i > e.ReleaseStart:
		remaining := float64(e.Frames - i)
		length := float64(e.Frames - e.ReleaseStart)
		return curve(remaining / length)
	default:
		return 1.0
	}
}

// Synthesize renders an enveloped sine click as mono float samples.
func Synthesize(frequencyHz float64, duration time.Duration, sampleRate beep.SampleRate) []float64 {
	frames := samplesFor(duration, sampleRate)
	if frames <= 0 {
		return nil
	}

	env := NewEnvelope(frames, Attack, Release, sampleRate)
	out := make([]float64, frames)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		raw := math.Sin(2 * math.Pi * frequencyHz * t)
		out[i] = raw * env.At(i) * Gain
	}
	return out
}

// Click is an immutable, pre-rendered click buffer.
type Click struct {
	Kind    Kind
	Samples []float64
	Format  beep.Format

	buffer *beep.Buffer
}

// NewClick renders the click for kind at the fixed system parameters.
func NewClick(kind Kind) *Click {
	format := beep.Format{SampleRate: SampleRate, NumChannels: 1, Precision: 2}
	c := &Click{
		Kind:    kind,
		Samples: Synthesize(kind.Frequency(), ClickDuration, SampleRate),
		Format:  format,
	}
	c.buffer = beep.NewBuffer(format)
	c.buffer.Append(c.source())
	return c
}

// source streams the samples once, duplicated onto both channels.
func (c *Click) source() beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= len(c.Samples) {
			return 0, false
		}
		for n = 0; n < len(samples) && pos < len(c.Samples); n++ {
			samples[n][0] = c.Samples[pos]
			samples[n][1] = c.Samples[pos]
			pos++
		}
		return n, true
	})
}

// Buffer returns the beep buffer backing the click.
func (c *Click) Buffer() *beep.Buffer {
	return c.buffer
}

// Streamer returns a fresh streamer positioned at the start of the click.
func (c *Click) Streamer() beep.StreamSeeker {
	return c.buffer.Streamer(0, c.buffer.Len())
}

// Len is the click length in samples.
func (c *Click) Len() int {
	return len(c.Samples)
}

var (
	clicksOnce  sync.Once
	accentClick *Click
	normalClick *Click
)

func renderClicks() {
	clicksOnce.Do(func() {
		accentClick = NewClick(KindAccent)
		normalClick = NewClick(KindNormal)
	})
}

// Accent returns the shared 1500Hz accent click.
func Accent() *Click {
	renderClicks()
	return accentClick
}

// Normal returns the shared 800Hz click.
func Normal() *Click {
	renderClicks()
	return normalClick
}

// For returns the shared click for an accented or normal beat.
func For(accent bool) *Click {
	if accent {
		return Accent()
	}
	return Normal()
}
